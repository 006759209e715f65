package rules

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes one YAML rule set. Unknown keys are rejected so a misspelled parameter
// fails loudly instead of silently defaulting to zero. Amounts are in cents.
func Parse(r io.Reader) (*YearRules, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var yr YearRules
	if err := dec.Decode(&yr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedYear, err)
	}
	if yr.Year == 0 {
		return nil, fmt.Errorf("%w: year is required", ErrMalformedYear)
	}
	for code, s := range yr.States {
		if s == nil {
			return nil, fmt.Errorf("%w: jurisdiction %s has no table", ErrMalformedYear, code)
		}
		if s.Code == "" {
			s.Code = code
		}
		if s.Code != code {
			return nil, fmt.Errorf("%w: jurisdiction key %s holds table for %s", ErrMalformedYear, code, s.Code)
		}
		if s.EffectiveYear == 0 {
			s.EffectiveYear = yr.Year
		}
	}
	return &yr, nil
}

// LoadFile reads a rule set from a YAML file.
func LoadFile(path string) (*YearRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	yr, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return yr, nil
}

// LoadDir reads every *.yaml and *.yml file in dir, ordered by file name.
func LoadDir(dir string) ([]*YearRules, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]*YearRules, 0, len(names))
	for _, name := range names {
		yr, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, yr)
	}
	return out, nil
}

// Marshal encodes a rule set in the format Parse reads.
func Marshal(yr *YearRules) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yr); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
