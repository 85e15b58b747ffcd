package frontmatter

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

const yamlDelim = "---"

type yamlCodec struct{}

func (yamlCodec) Format() Format { return YAML }

func (yamlCodec) CanParse(data []byte) bool {
	return bytes.HasPrefix(data, []byte(yamlDelim+"\n"))
}

func (yamlCodec) Split(data []byte) ([]byte, []byte, error) {
	return splitDelimited(data, yamlDelim)
}

// Decode keeps unquoted timestamps as their source text, so a date without a
// zone is not silently read as UTC.
func (yamlCodec) Decode(front []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(front, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	timestampsAsText(&doc)
	var fm map[string]any
	if err := doc.Decode(&fm); err != nil {
		return nil, err
	}
	return fm, nil
}

func timestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
		return
	}
	for _, c := range n.Content {
		timestampsAsText(c)
	}
}

func (yamlCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(yamlDelim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString(yamlDelim + "\n")
	return buf.Bytes(), nil
}
