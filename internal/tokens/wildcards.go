package tokens

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// WildcardSets maps set names to ordered substitution values. A position
// referencing %name via its token list draws extra variants from sets[name].
type WildcardSets map[string][]string

// LoadWildcardSets reads a YAML wildcard definition file.
//
// Format: a mapping from set name to a list of substitution strings.
//
//	digits: ["0", "1", "2"]
//	years:
//	  - "2019"
//	  - "2020"
func LoadWildcardSets(path string) (WildcardSets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wildcard file: %w", err)
	}

	var sets WildcardSets
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse wildcard file %s: %w", path, err)
	}

	for name, values := range sets {
		if len(values) == 0 {
			return nil, newConfigError(ErrCodeEmptyPosition, 0, NoAnchor,
				"wildcard set %q in %s is empty", name, path)
		}
	}

	return sets, nil
}

// ValidateWildcards checks that every %name reference in specs has a
// definition. Returns a ConfigError naming the first unresolved reference.
func ValidateWildcards(specs []PositionSpec, sets WildcardSets) error {
	for slot, spec := range specs {
		for _, name := range spec.Wildcards {
			if _, ok := sets[name]; !ok {
				return newConfigError(ErrCodeUnknownWildcard, 0, slot,
					"position references wildcard set %q which is not defined", name)
			}
		}
	}
	return nil
}

// Names returns the set names in sorted order. Used when serializing the
// space configuration for fingerprinting, where map iteration order would
// break stability.
func (w WildcardSets) Names() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
