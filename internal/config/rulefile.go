package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/liamcoop/ui5helper/rules"
)

// RuleFile is the on-disk form of a rule set used by the CLI.
// JSON files decode as well since JSON is valid YAML.
type RuleFile struct {
	Name        string             `yaml:"name"`
	Model       string             `yaml:"model"`
	Rules       []string           `yaml:"rules"`
	Constraints []rules.Constraint `yaml:"constraints"`
}

// RuleSet converts the file into an active rule set
func (f RuleFile) RuleSet() *rules.RuleSet {
	return &rules.RuleSet{
		Name:        f.Name,
		Model:       f.Model,
		Rules:       f.Rules,
		Constraints: f.Constraints,
		Active:      true,
	}
}

// LoadRuleFile reads a YAML rule file and checks every rule string parses
func LoadRuleFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidRuleFile, err)
	}
	return ParseRuleFile(data)
}

// ParseRuleFile decodes rule file content. Unknown keys are rejected.
func ParseRuleFile(data []byte) (*RuleFile, error) {
	var f RuleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrInvalidRuleFile, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRuleFile)
	}
	if _, err := rules.ParseAll(f.Rules); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadRecords reads a JSON data file holding one record or an array of records.
// isArray reports whether the file held an array, even one with a single element.
func LoadRecords(path string) (records []rules.Record, isArray bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read data file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, true, fmt.Errorf("invalid data file %s: %w", path, err)
		}
		return records, true, nil
	}

	var rec rules.Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, false, fmt.Errorf("invalid data file %s: %w", path, err)
	}
	return []rules.Record{rec}, false, nil
}
