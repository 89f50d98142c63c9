package configuration

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bucketops/bucketops/internal/estimate"
)

//go:embed rules.json
var rulesFile embed.FS

const (
	CategoryPattern = "pattern"
	CategorySize    = "size"
)

// Category describes how files of one kind are counted.
type Category struct {
	Type              string       `json:"type"`
	Baseline          Weights      `json:"baseline"`
	Rules             []RuleConfig `json:"rules,omitempty"`
	BytesPerOperation int64        `json:"bytes_per_operation,omitempty"`
	Description       string       `json:"description,omitempty"`
}

type Weights struct {
	ClassA      int64  `json:"class_a,omitempty"`
	ClassB      int64  `json:"class_b,omitempty"`
	Free        int64  `json:"free,omitempty"`
	Description string `json:"description,omitempty"`
}

type RuleConfig struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Weights
}

/*
LoadRegistry builds the estimator registry from the embedded rules.json.
*/
func LoadRegistry() (*estimate.Registry, error) {
	return LoadRegistryWithOverrides("")
}

/*
LoadRegistryWithOverrides builds the estimator registry from the embedded rules.json, then
replaces every category also present in the JSON file at overridesPath. Categories the
embedded file does not know about are added, which is how a new file kind gets its counter.

An empty overridesPath loads the embedded rules only.
*/
func LoadRegistryWithOverrides(overridesPath string) (*estimate.Registry, error) {
	categories, err := loadEmbeddedRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	if overridesPath != "" {
		overrides, err := loadRulesFile(overridesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules overrides: %w", err)
		}

		for name, category := range overrides {
			categories[name] = category
		}
	}

	return buildRegistry(categories)
}

func loadEmbeddedRules() (map[string]Category, error) {
	file, err := rulesFile.Open("rules.json")
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer file.Close()

	return decodeRules(file)
}

func loadRulesFile(path string) (map[string]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	return decodeRules(bytes.NewReader(data))
}

func decodeRules(r io.Reader) (map[string]Category, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	categories := make(map[string]Category)
	if err := decoder.Decode(&categories); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return categories, nil
}

func buildRegistry(categories map[string]Category) (*estimate.Registry, error) {
	registry := estimate.NewRegistry()

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		counter, err := buildCounter(name, categories[name])
		if err != nil {
			return nil, err
		}
		registry.Register(estimate.Kind(name), counter)
	}

	return registry, nil
}

func buildCounter(name string, category Category) (estimate.Counter, error) {
	switch category.Type {
	case CategoryPattern:
		counter := &estimate.PatternCounter{
			Baseline: estimate.Operations{},
			Rules:    make([]estimate.Rule, 0, len(category.Rules)),
		}
		counter.Baseline.Add(estimate.ClassA, category.Baseline.ClassA)
		counter.Baseline.Add(estimate.ClassB, category.Baseline.ClassB)
		counter.Baseline.Add(estimate.Free, category.Baseline.Free)

		for i, rc := range category.Rules {
			if rc.Name == "" {
				return nil, fmt.Errorf("category %s: rule %d is missing a name", name, i)
			}

			rule, err := estimate.NewRule(rc.Name, rc.Pattern, rc.ClassA, rc.ClassB, rc.Free)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", name, err)
			}
			counter.Rules = append(counter.Rules, rule)
		}

		return counter, nil

	case CategorySize:
		if category.BytesPerOperation < 0 {
			return nil, fmt.Errorf("category %s: bytes_per_operation must not be negative", name)
		}
		return &estimate.BinaryCounter{BytesPerOperation: category.BytesPerOperation}, nil

	default:
		return nil, fmt.Errorf("category %s: unknown type %q", name, category.Type)
	}
}
