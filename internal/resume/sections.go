package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	skillsBlockLimit    = 500
	educationBlockLimit = 800
	summaryBlockLimit   = 300
)

const headingPrefix = `(?im)^[ \t]*(?:[-*•][ \t]*)?`

var (
	reSkillsHeading    = regexp.MustCompile(headingPrefix + `(?:technical[ \t]+skills?|programming[ \t]+languages?|skills?|technologies|technology)\b[ \t]*[:\-]?`)
	reEducationHeading = regexp.MustCompile(headingPrefix + `(?:education|academic[a-z]*(?:[ \t]+background)?|qualifications?)\b[ \t]*[:\-]?`)
	reSummaryHeading   = regexp.MustCompile(headingPrefix + `(?:(?:professional|career|executive)[ \t]+)?(?:summary|profile|objective|about(?:[ \t]+me)?|overview)\b[ \t]*[:\-]?`)

	// A capitalised word followed by a colon starts a new labelled line.
	reLabelLine = regexp.MustCompile(`^[A-Z][a-z]+:`)

	reKnownHeading = regexp.MustCompile(`(?i)^(?:(?:professional|career|executive)\s+)?(?:summary|profile|objective|about(?:\s+me)?|overview|` +
		`education|academic[a-z]*(?:\s+background)?|qualifications?|` +
		`(?:technical\s+)?skills?|technologies|programming\s+languages?|` +
		`(?:work\s+|professional\s+)?experience|employment(?:\s+history)?|work\s+history|` +
		`projects?|certifications?|languages|interests|awards|publications|references|volunteering)\s*:?$`)
)

// blocks returns the text following every match of heading. A block ends at a blank
// line, another heading, a labelled line or after limit runes.
func blocks(text string, heading *regexp.Regexp, limit int) []string {
	var out []string
	for _, loc := range heading.FindAllStringIndex(text, -1) {
		if b := blockAfter(text[loc[1]:], limit); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func blockAfter(rest string, limit int) string {
	lines := strings.Split(rest, "\n")

	var kept []string
	started := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i == 0 {
			// remainder of the heading line
			if trimmed != "" {
				kept = append(kept, trimmed)
				started = true
			}
			continue
		}
		if trimmed == "" {
			if started {
				break
			}
			continue
		}
		if reKnownHeading.MatchString(trimmed) || (started && reLabelLine.MatchString(trimmed)) {
			break
		}
		kept = append(kept, trimmed)
		started = true
	}

	return truncateRunes(strings.Join(kept, "\n"), limit)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit]))
}
