package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
)

// Format names a front matter encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// Codec decodes and encodes one front matter format.
type Codec interface {
	Format() Format
	// CanParse reports whether data starts with this codec's opening delimiter.
	CanParse(data []byte) bool
	// Split separates the raw front matter block from the body.
	Split(data []byte) (front, body []byte, err error)
	Decode(front []byte) (map[string]any, error)
	// Encode renders v as a complete front matter block, delimiters included.
	Encode(v any) ([]byte, error)
}

var registry []Codec

// Register adds a codec implementation to the registry.
func Register(c Codec) {
	registry = append(registry, c)
}

var (
	// ErrNoFrontMatter indicates the content does not start with a known delimiter.
	ErrNoFrontMatter = errors.New("no front matter block")
	// ErrUnterminated indicates an opening delimiter without its closing one.
	ErrUnterminated = errors.New("front matter block is not terminated")
	// ErrUnknownFormat indicates a format with no registered codec.
	ErrUnknownFormat = errors.New("unknown front matter format")
)

// Lookup returns the codec registered for a format.
func Lookup(f Format) (Codec, error) {
	for _, c := range registry {
		if c.Format() == f {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// Split detects the format and separates front matter from body.
func Split(data []byte) (Format, []byte, []byte, error) {
	data = normalize(data)
	for _, c := range registry {
		if c.CanParse(data) {
			front, body, err := c.Split(data)
			if err != nil {
				return c.Format(), nil, nil, err
			}
			return c.Format(), front, bytes.TrimLeft(body, "\n"), nil
		}
	}
	return "", nil, nil, ErrNoFrontMatter
}

// Decode splits data and decodes the front matter into a map.
func Decode(data []byte) (map[string]any, string, Format, error) {
	f, front, body, err := Split(data)
	if err != nil {
		return nil, "", f, err
	}
	c, err := Lookup(f)
	if err != nil {
		return nil, "", f, err
	}
	fm, err := c.Decode(front)
	if err != nil {
		return nil, "", f, fmt.Errorf("decode %s front matter: %w", f, err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, string(body), f, nil
}

// Encode renders front matter in the given format followed by the body.
func Encode(f Format, v any, body string) ([]byte, error) {
	c, err := Lookup(f)
	if err != nil {
		return nil, err
	}
	head, err := c.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s front matter: %w", f, err)
	}
	var buf bytes.Buffer
	buf.Write(head)
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if body[len(body)-1] != '\n' {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// splitDelimited handles the common "delim line, block, delim line" layout.
func splitDelimited(data []byte, delim string) ([]byte, []byte, error) {
	open := []byte(delim + "\n")
	if !bytes.HasPrefix(data, open) {
		return nil, nil, ErrNoFrontMatter
	}
	rest := data[len(open):]
	// An empty block closes immediately.
	if bytes.HasPrefix(rest, []byte(delim)) && (len(rest) == len(delim) || rest[len(delim)] == '\n') {
		return nil, rest[min(len(rest), len(delim)+1):], nil
	}
	closing := []byte("\n" + delim)
	for off := 0; ; {
		i := bytes.Index(rest[off:], closing)
		if i < 0 {
			return nil, nil, ErrUnterminated
		}
		end := off + i + len(closing)
		if end == len(rest) || rest[end] == '\n' {
			front := rest[:off+i+1]
			body := rest[end:]
			if len(body) > 0 {
				body = body[1:]
			}
			return front, body, nil
		}
		off = end
	}
}

func normalize(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
}

func init() {
	// Register default codecs
	Register(yamlCodec{})
	Register(tomlCodec{})
	Register(jsonCodec{})
}
