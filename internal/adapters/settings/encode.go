package settings

import (
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Encode renders the effective settings in a config-file friendly format.
func (s Settings) Encode(format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTOML, "":
		data, err := toml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode toml settings: %w", err)
		}
		return data, nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode yaml settings: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported settings format %q", format)
	}
}
