package evaluate

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadState reads a system state file. The file is a YAML (or JSON) mapping
// from parameter name to value.
func LoadState(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()
	return DecodeState(f)
}

// DecodeState reads a system state mapping from r. An empty document yields
// an empty state.
func DecodeState(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	state := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return state, nil
}
