// Package vocabulary holds the keyword sets used by resume extraction and posting
// normalization. A Vocabulary is immutable once built and safe for concurrent use.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFile []byte

// File is the on-disk YAML shape of a vocabulary.
type File struct {
	Version   string    `yaml:"version"`
	Skills    []string  `yaml:"skills"`
	Seniority *Keywords `yaml:"seniority,omitempty"`
	Education []string  `yaml:"education,omitempty"`
}

// Keywords are the three disjoint seniority indicator sets.
type Keywords struct {
	Senior []string `yaml:"senior"`
	Mid    []string `yaml:"mid"`
	Junior []string `yaml:"junior"`
}

type Vocabulary struct {
	version   string
	skills    []string
	skillSet  map[string]struct{}
	seniority Keywords
	education []string
}

// New builds a vocabulary from f. Tokens are lowercase-normalized and deduplicated.
// Omitted seniority or education sections fall back to the built-in defaults.
func New(f File) (*Vocabulary, error) {
	skills := normalizeAll(f.Skills)
	if len(skills) == 0 {
		return nil, fmt.Errorf("vocabulary must contain at least one skill")
	}

	v := &Vocabulary{
		version:  strings.TrimSpace(f.Version),
		skills:   skills,
		skillSet: make(map[string]struct{}, len(skills)),
	}
	if v.version == "" {
		v.version = "custom"
	}
	for _, s := range skills {
		v.skillSet[s] = struct{}{}
	}

	if f.Seniority == nil || f.Education == nil {
		base, err := parseDefault()
		if err != nil {
			return nil, err
		}
		if f.Seniority == nil {
			f.Seniority = base.Seniority
		}
		if f.Education == nil {
			f.Education = base.Education
		}
	}

	v.seniority = Keywords{
		Senior: normalizeAll(f.Seniority.Senior),
		Mid:    normalizeAll(f.Seniority.Mid),
		Junior: normalizeAll(f.Seniority.Junior),
	}
	if err := checkDisjoint(v.seniority); err != nil {
		return nil, err
	}
	v.education = normalizeAll(f.Education)

	return v, nil
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	f, err := parseDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	v, err := New(*f)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

// Parse decodes a YAML vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	return New(f)
}

// Load reads a YAML vocabulary file from path.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}
	return Parse(data)
}

func parseDefault() (*File, error) {
	var f File
	if err := yaml.Unmarshal(defaultFile, &f); err != nil {
		return nil, err
	}
	if f.Seniority == nil {
		return nil, fmt.Errorf("seniority section is missing")
	}
	return &f, nil
}

func (v *Vocabulary) Version() string { return v.version }

// Skills returns the canonical skill tokens in alphabetical order.
func (v *Vocabulary) Skills() []string {
	return append([]string(nil), v.skills...)
}

// HasSkill reports whether token is a canonical skill, ignoring case and spacing.
func (v *Vocabulary) HasSkill(token string) bool {
	_, ok := v.skillSet[Normalize(token)]
	return ok
}

func (v *Vocabulary) Seniority() Keywords {
	return Keywords{
		Senior: append([]string(nil), v.seniority.Senior...),
		Mid:    append([]string(nil), v.seniority.Mid...),
		Junior: append([]string(nil), v.seniority.Junior...),
	}
}

func (v *Vocabulary) Education() []string {
	return append([]string(nil), v.education...)
}

// Normalize lowercases a token and collapses inner whitespace.
func Normalize(token string) string {
	return strings.Join(strings.Fields(strings.ToLower(token)), " ")
}

func normalizeAll(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func checkDisjoint(k Keywords) error {
	owner := make(map[string]string)
	sets := []struct {
		name  string
		words []string
	}{
		{"senior", k.Senior},
		{"mid", k.Mid},
		{"junior", k.Junior},
	}
	for _, set := range sets {
		for _, w := range set.words {
			if prev, ok := owner[w]; ok {
				return fmt.Errorf("seniority keyword %q is listed in both %s and %s", w, prev, set.name)
			}
			owner[w] = set.name
		}
	}
	return nil
}
