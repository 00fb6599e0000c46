package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPlantSeeds reads the initial plant list: a JSON or YAML array of
// names. A missing file yields no seeds and no error.
func LoadPlantSeeds(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plant seeds: %w", err)
	}
	return ParsePlantSeeds(data)
}

// ParsePlantSeeds decodes a seed list. JSON arrays are valid YAML, so one
// decoder serves both formats.
func ParsePlantSeeds(data []byte) ([]string, error) {
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse plant seeds: %w", err)
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
