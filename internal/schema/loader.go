package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML wiring file from the given path.
func LoadFile(path string) (*WiringFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wiring file %s: %w", path, err)
	}

	wf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return wf, nil
}

// LoadGlob discovers wiring files matching a doublestar pattern (e.g.,
// "examples/**/*.capwire.yaml"), parses each, and merges them into one
// WiringFile. Files merge in sorted path order so the result is independent
// of filesystem enumeration order.
func LoadGlob(pattern string) (*WiringFile, []string, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid wiring glob %q: %w", pattern, err)
	}

	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no wiring files match %q", pattern)
	}

	sort.Strings(paths)

	merged := &WiringFile{}

	for _, path := range paths {
		wf, err := LoadFile(path)
		if err != nil {
			return nil, nil, err
		}

		merged.Merge(wf)
	}

	applyDefaults(merged)

	return merged, paths, nil
}

// Parse parses YAML data into a WiringFile.
func Parse(data []byte) (*WiringFile, error) {
	var wf WiringFile

	err := yaml.Unmarshal(data, &wf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wiring YAML: %w", err)
	}

	applyDefaults(&wf)

	return &wf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(wf *WiringFile) {
	if wf.Version == "" {
		wf.Version = "1"
	}

	for i := range wf.Capabilities {
		c := &wf.Capabilities[i]
		if c.ConsumerName == "" {
			c.ConsumerName = "Has" + Exported(c.Name)
		}

		if c.ProviderName == "" {
			c.ProviderName = Exported(c.Name) + "Provider"
		}

		for j := range c.Operations {
			if c.Operations[j].Returns == "" {
				c.Operations[j].Returns = "float64"
			}
		}
	}
}

// Exported converts a component-style name ("scaled_area") to an exported Go
// identifier ("ScaledArea").
func Exported(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	var sb strings.Builder

	for _, part := range parts {
		sb.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}

	return sb.String()
}

// Marshal serializes a WiringFile to YAML.
func Marshal(wf *WiringFile) ([]byte, error) {
	return yaml.Marshal(wf)
}
