package resume

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const nameScanLines = 8

var (
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// Tried in order: US-style numbers first, then generic international ones.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+?1[-. \t]?)?\(?[0-9]{3}\)?[-. \t]?[0-9]{3}[-. \t]?[0-9]{4}`),
		regexp.MustCompile(`(?:\+?[0-9]{1,3}[-. \t]?)?[0-9]{3,4}[-. \t]?[0-9]{3,4}[-. \t]?[0-9]{3,4}`),
	}

	reLinkedIn = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9_\-]+`)
	reGitHub   = regexp.MustCompile(`(?i)github\.com/[A-Za-z0-9_\-]+`)

	reLocation = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:[ \t]+[A-Z][a-zA-Z]+)*),[ \t]*([A-Z]{2}\b|[A-Z][a-zA-Z]+(?:[ \t]+[A-Z][a-zA-Z]+)*)`)
)

var (
	nameMarkers    = []string{"email", "phone", "tel:", "mobile:", "linkedin", "github", "@", "+", "http"}
	contactMarkers = []string{"email", "phone", "linkedin", "github", "@"}
)

func findEmail(text string) string {
	return reEmail.FindString(text)
}

func findPhone(text string) string {
	for _, re := range phonePatterns {
		if m := re.FindString(text); m != "" {
			return digitsOnly(m)
		}
	}
	return ""
}

// digitsOnly strips everything but digits, keeping a leading plus sign.
func digitsOnly(s string) string {
	s = strings.TrimSpace(s)
	var sb strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			sb.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func findLinkedIn(text string) string {
	if m := reLinkedIn.FindString(text); m != "" {
		return "https://" + m
	}
	return ""
}

func findGitHub(text string) string {
	if m := reGitHub.FindString(text); m != "" {
		return "https://" + m
	}
	return ""
}

// findName returns the first of the leading lines that looks like a personal name.
func findName(lines []string) string {
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || hasMarker(line, nameMarkers) {
			continue
		}
		if utf8.RuneCountInString(line) >= 50 {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if allCapitalized(words) {
			return strings.Join(words, " ")
		}
	}
	return ""
}

func allCapitalized(words []string) bool {
	for _, w := range words {
		first, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(first) {
			return false
		}
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

func hasMarker(line string, markers []string) bool {
	lower := strings.ToLower(line)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// findLocation returns the first "City, ST" shaped token. Pairs of skills such as
// "Python, React" are not locations.
func findLocation(text string, isSkill func(string) bool) string {
	for _, m := range reLocation.FindAllStringSubmatch(text, -1) {
		city, region := m[1], m[2]
		if isSkill(city) || isSkill(region) {
			continue
		}
		return city + ", " + region
	}
	return ""
}
