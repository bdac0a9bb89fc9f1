package resolve

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultMaxDepth bounds table nesting when Config.MaxDepth is zero.
const DefaultMaxDepth = 64

// Config holds the immutable settings of a Resolver.
type Config struct {
	// MaxDepth is the deepest table nesting a resolution may enter.
	MaxDepth int

	// TextEncoding decodes string-likes into Text. When nil the raw bytes
	// must already be valid UTF-8.
	TextEncoding encoding.Encoding
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &cfg, nil
}

// decodeText returns raw as text, or false when it is not valid in the
// configured encoding.
func (c *Config) decodeText(raw []byte) (string, bool) {
	if c.TextEncoding == nil {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}
	out, err := c.TextEncoding.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}

var encodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// EncodingByName looks up a text encoding. "utf-8" and "" select strict
// UTF-8 and return nil.
func EncodingByName(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "utf-8" || n == "utf8" {
		return nil, nil
	}
	enc, ok := encodings[n]
	if !ok {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return enc, nil
}
