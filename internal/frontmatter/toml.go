package frontmatter

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
)

const tomlDelim = "+++"

type tomlCodec struct{}

func (tomlCodec) Format() Format { return TOML }

func (tomlCodec) CanParse(data []byte) bool {
	return bytes.HasPrefix(data, []byte(tomlDelim+"\n"))
}

func (tomlCodec) Split(data []byte) ([]byte, []byte, error) {
	return splitDelimited(data, tomlDelim)
}

func (tomlCodec) Decode(front []byte) (map[string]any, error) {
	var fm map[string]any
	if err := toml.Unmarshal(front, &fm); err != nil {
		return nil, err
	}
	return fm, nil
}

func (tomlCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(tomlDelim + "\n")
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	buf.WriteString(tomlDelim + "\n")
	return buf.Bytes(), nil
}
