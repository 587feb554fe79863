package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML layout of a static cell file.
type Fixtures struct {
	Cells map[string]string `yaml:"cells"`
}

// Static serves fixed cell text per vault. Useful for dry runs and tests.
type Static struct {
	cells map[string]string
}

// NewStatic creates a source from a vault to cell text map.
func NewStatic(cells map[string]string) *Static {
	m := make(map[string]string, len(cells))
	for vault, text := range cells {
		m[vault] = text
	}
	return &Static{cells: m}
}

// LoadFixtures reads a YAML fixtures file into a static source.
func LoadFixtures(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures file %s: %w", path, err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures file %s: %w", path, err)
	}
	if len(f.Cells) == 0 {
		return nil, fmt.Errorf("fixtures file %s: no cells defined", path)
	}

	return NewStatic(f.Cells), nil
}

func (s *Static) Name() string { return "static" }

func (s *Static) Fetch(ctx context.Context, vault string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, ok := s.cells[vault]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRowNotFound, vault)
	}
	return text, nil
}
