// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRegistry reads a stage registry from a JSON file.
func LoadRegistry(path string) (*StageRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg StageRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Load returns the built-in registry, overlaid with path when path is non-empty.
func Load(path string) (*StageRegistry, error) {
	reg := Default()
	if path == "" {
		return reg, nil
	}

	override, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	if err := reg.Merge(override); err != nil {
		return nil, err
	}
	return reg, nil
}

// Get returns the stage with the given id.
func (r *StageRegistry) Get(id string) (Stage, bool) {
	for _, s := range r.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// Merge overlays non-zero fields of other onto stages with the same id.
// Unknown ids are rejected; the pipeline order is fixed.
func (r *StageRegistry) Merge(other *StageRegistry) error {
	for _, o := range other.Stages {
		idx := -1
		for i, s := range r.Stages {
			if s.ID == o.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown stage %q in registry override", o.ID)
		}

		s := &r.Stages[idx]
		if o.DisplayName != "" {
			s.DisplayName = o.DisplayName
		}
		if o.Description != "" {
			s.Description = o.Description
		}
		if o.SystemPrompt != "" {
			s.SystemPrompt = o.SystemPrompt
		}
		if o.Temperature != 0 {
			s.Temperature = o.Temperature
		}
		if o.MaxTokens != 0 {
			s.MaxTokens = o.MaxTokens
		}
		if o.CorpusChars != 0 {
			s.CorpusChars = o.CorpusChars
		}
		if o.OutputSchema != nil {
			s.OutputSchema = o.OutputSchema
		}
		if len(o.Tags) > 0 {
			s.Tags = o.Tags
		}
	}
	if other.Version != "" {
		r.Version = other.Version
	}
	if other.LastUpdated != "" {
		r.LastUpdated = other.LastUpdated
	}
	return nil
}
