package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScenario reads a YAML scenario file and overlays it on DefaultConfig:
// keys the file omits keep their defaults, lists it sets replace the default
// list. Uses strict parsing: unrecognized keys (typos) are rejected.
// The result is not validated; NewSimulator does that.
func LoadScenario(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario is LoadScenario for in-memory YAML.
func ParseScenario(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing scenario: %w", err)
	}
	return cfg, nil
}

// MarshalScenario renders cfg in the scenario file format.
func MarshalScenario(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding scenario: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding scenario: %w", err)
	}
	return buf.Bytes(), nil
}
