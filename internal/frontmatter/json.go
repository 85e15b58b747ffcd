package frontmatter

import (
	"bytes"
	"encoding/json"
)

// hexo fences JSON front matter with ;;; while hugo accepts a bare leading object.
const jsonDelim = ";;;"

type jsonCodec struct{}

func (jsonCodec) Format() Format { return JSON }

func (jsonCodec) CanParse(data []byte) bool {
	return bytes.HasPrefix(data, []byte(jsonDelim+"\n")) || bytes.HasPrefix(data, []byte("{"))
}

func (jsonCodec) Split(data []byte) ([]byte, []byte, error) {
	if bytes.HasPrefix(data, []byte(jsonDelim+"\n")) {
		return splitDelimited(data, jsonDelim)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, ErrUnterminated
	}
	off := dec.InputOffset()
	return data[:off], data[off:], nil
}

func (jsonCodec) Decode(front []byte) (map[string]any, error) {
	front = bytes.TrimSpace(front)
	if len(front) > 0 && front[0] != '{' {
		// hexo allows the braces to be omitted inside ;;; fences.
		front = append(append([]byte("{"), front...), '}')
	}
	var fm map[string]any
	if err := json.Unmarshal(front, &fm); err != nil {
		return nil, err
	}
	return fm, nil
}

func (jsonCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(jsonDelim + "\n")
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteString(jsonDelim + "\n")
	return buf.Bytes(), nil
}
