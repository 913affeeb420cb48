package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRequest decodes a YAML or JSON job file into v.
func LoadRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cli: read %s: %w", path, err)
	}
	return ParseRequest(data, path, v)
}

// ParseRequest decodes data into v by the extension of filename. Unknown
// extensions try YAML, then JSON.
func ParseRequest(data []byte, filename string, v any) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("cli: parse YAML %s: %w", filename, err)
		}
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("cli: parse JSON %s: %w", filename, err)
		}
	default:
		if err := yaml.Unmarshal(data, v); err != nil {
			if jerr := json.Unmarshal(data, v); jerr != nil {
				return fmt.Errorf("cli: parse %s: not YAML (%v) or JSON (%v)", filename, err, jerr)
			}
		}
	}
	return nil
}
