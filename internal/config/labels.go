package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelSet is an external label file, kept apart from config.yaml so the
// template list can be updated by whoever owns the auto-responses.
type LabelSet struct {
	Categories []CategoryConfig `yaml:"categories"`
	Terms      []string         `yaml:"terms"`
}

func LoadLabelSet(path string) (*LabelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label set: %w", err)
	}
	var ls LabelSet
	if err := yaml.Unmarshal(data, &ls); err != nil {
		return nil, fmt.Errorf("parse label set yaml: %w", err)
	}
	return &ls, nil
}

// applyLabelSet replaces the inline lists of m with the ones from
// m.LabelsPath. Lists the file leaves empty keep their inline value.
func applyLabelSet(m *MatchConfig) error {
	path := strings.TrimSpace(m.LabelsPath)
	if path == "" {
		return nil
	}
	ls, err := LoadLabelSet(path)
	if err != nil {
		return fmt.Errorf("invalid labels_path '%s': %w", path, err)
	}
	if len(ls.Categories) > 0 {
		m.Categories = ls.Categories
	}
	if len(ls.Terms) > 0 {
		m.Terms = ls.Terms
	}
	return nil
}
