package vocabulary

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FindSkills returns the canonical skills occurring as whole tokens in text, in
// vocabulary (alphabetical) order.
func (v *Vocabulary) FindSkills(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range v.skills {
		if ContainsWord(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// SkillsIn is FindSkills with every skill title-cased for display.
func (v *Vocabulary) SkillsIn(text string) []string {
	found := v.FindSkills(text)
	for i, s := range found {
		found[i] = Display(s)
	}
	return found
}

// FindEducation returns the education keywords occurring as whole tokens in text.
func (v *Vocabulary) FindEducation(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range v.education {
		if ContainsWord(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// ContainsWord reports whether token occurs in text with no letter or digit directly
// before or after it. Both arguments are expected in lowercase.
func ContainsWord(text, token string) bool {
	return CountWord(text, token) > 0
}

// CountWord counts the whole-token occurrences of token in text.
func CountWord(text, token string) int {
	if token == "" {
		return 0
	}

	count := 0
	offset := 0
	for offset <= len(text)-len(token) {
		idx := strings.Index(text[offset:], token)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(token)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			offset = end
			continue
		}
		offset = start + 1
	}
	return count
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Display title-cases a canonical token for presentation ("machine learning" ->
// "Machine Learning").
func Display(token string) string {
	return cases.Title(language.English).String(token)
}

// DisplayAll title-cases tokens, drops case-insensitive duplicates and sorts the result.
func DisplayAll(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		key := Normalize(t)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Display(key))
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li == lj {
			return out[i] < out[j]
		}
		return li < lj
	})
	return out
}
