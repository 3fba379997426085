// Package plan loads reviewable migration plan documents. A plan is a YAML
// file carrying the same parameters as the migrate command's flags, so a
// migration can be written down, reviewed, and then executed verbatim.
package plan

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan mirrors the migrate command's flags. Flags given on the command line
// win over plan values.
type Plan struct {
	Account    string `yaml:"account"`
	Profile    string `yaml:"profile"`
	Container  string `yaml:"container"`
	Tier       string `yaml:"tier"`
	TargetTier string `yaml:"target_tier"`
	NewerThan  string `yaml:"newer_than"`
	OlderThan  string `yaml:"older_than"`
	Priority   string `yaml:"priority"`
}

// Load parses the plan file at path. Unknown fields are rejected, so a typo
// in a reviewed plan fails loudly instead of silently migrating the wrong
// thing.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}

	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	return &p, nil
}
