package level

import "strings"

// Seniority is a coarse experience tier shared by candidate profiles and job postings.
type Seniority int

const (
	Unspecified Seniority = iota
	Junior
	Mid
	Senior
)

func (s Seniority) String() string {
	switch s {
	case Junior:
		return "Junior"
	case Mid:
		return "Mid"
	case Senior:
		return "Senior"
	default:
		return "Not specified"
	}
}

// Known reports whether s is one of the three real tiers.
func (s Seniority) Known() bool {
	return s >= Junior && s <= Senior
}

func (s Seniority) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Seniority) UnmarshalText(text []byte) error {
	*s = Parse(string(text))
	return nil
}

// Parse maps free-form labels ("Mid-level", "sr", "entry level") onto a tier.
// Unrecognised labels yield Unspecified.
func Parse(label string) Seniority {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return Unspecified
	case strings.Contains(l, "senior"), strings.HasPrefix(l, "sr"), strings.Contains(l, "lead"), strings.Contains(l, "principal"):
		return Senior
	case strings.Contains(l, "mid"), strings.Contains(l, "middle"), strings.Contains(l, "intermediate"):
		return Mid
	case strings.Contains(l, "junior"), strings.HasPrefix(l, "jr"), strings.Contains(l, "entry"), strings.Contains(l, "intern"), strings.Contains(l, "graduate"):
		return Junior
	default:
		return Unspecified
	}
}

// FromTitle guesses a tier from a job title. Titles without a tier marker are Unspecified
// rather than Mid so that scoring never credits an invented level.
func FromTitle(title string) Seniority {
	t := " " + strings.ToLower(title) + " "
	for _, marker := range []string{" senior ", " sr ", " sr. ", " lead ", " principal ", " staff ", " head of "} {
		if strings.Contains(t, marker) {
			return Senior
		}
	}
	for _, marker := range []string{" junior ", " jr ", " jr. ", " intern ", " internship ", " entry level ", " entry-level ", " graduate ", " trainee "} {
		if strings.Contains(t, marker) {
			return Junior
		}
	}
	for _, marker := range []string{" mid ", " mid-level ", " middle ", " intermediate "} {
		if strings.Contains(t, marker) {
			return Mid
		}
	}
	return Unspecified
}

// FromMonths maps a required experience duration onto a tier using the same year
// boundaries as resume extraction (3 and 7 years).
func FromMonths(months int) Seniority {
	switch {
	case months <= 0:
		return Unspecified
	case months >= 7*12:
		return Senior
	case months >= 3*12:
		return Mid
	default:
		return Junior
	}
}
