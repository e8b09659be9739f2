// Package resume extracts structured candidate facts from normalized resume text.
package resume

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/jobscout/internal/level"
)

// DefaultSummary is used when no summary-like text can be found.
const DefaultSummary = "Professional seeking new opportunities"

// Years is a count of years of experience. Negative values mean the resume did not state it.
type Years int

const UnspecifiedYears Years = -1

func (y Years) Specified() bool { return y >= 0 }

func (y Years) String() string {
	if !y.Specified() {
		return "Not specified"
	}
	return fmt.Sprintf("%d+", int(y))
}

func (y Years) MarshalText() ([]byte, error) {
	if !y.Specified() {
		return []byte("unspecified"), nil
	}
	return []byte(strconv.Itoa(int(y))), nil
}

func (y *Years) UnmarshalText(b []byte) error {
	s := strings.TrimSuffix(strings.TrimSpace(string(b)), "+")
	if s == "" || strings.EqualFold(s, "unspecified") {
		*y = UnspecifiedYears
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid years value %q", string(b))
	}
	*y = Years(n)
	return nil
}

// Profile holds the facts extracted from one resume. Fields are never modified after
// extraction; WithPreferredLocation returns a copy.
type Profile struct {
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Location          string          `json:"location"`
	LinkedIn          string          `json:"linkedin"`
	GitHub            string          `json:"github"`
	Skills            []string        `json:"skills"`
	Seniority         level.Seniority `json:"seniority"`
	YearsExperience   Years           `json:"years_experience"`
	Education         []string        `json:"education"`
	Summary           string          `json:"summary"`
	Confidence        float64         `json:"confidence"`
	PreferredLocation string          `json:"preferred_location,omitempty"`
	TextLength        int             `json:"text_length"`
	Vocabulary        string          `json:"vocabulary_version"`
}

// WithPreferredLocation returns a copy of the profile with the caller's location
// preference set. "remote" expresses a preference for remote work.
func (p Profile) WithPreferredLocation(location string) Profile {
	c := p.clone()
	c.PreferredLocation = strings.TrimSpace(location)
	return c
}

// Preferred returns the preferred location, falling back to the resume location.
func (p Profile) Preferred() string {
	if p.PreferredLocation != "" {
		return p.PreferredLocation
	}
	return p.Location
}

// PrefersRemote reports whether the preferred location asks for remote work.
func (p Profile) PrefersRemote() bool {
	return strings.Contains(strings.ToLower(p.Preferred()), "remote")
}

// SearchQuery builds a default search phrase from the strongest skills.
func (p Profile) SearchQuery() string {
	if len(p.Skills) == 0 {
		return "software developer"
	}
	top := p.Skills
	if len(top) > 3 {
		top = top[:3]
	}
	return strings.Join(top, " ") + " developer"
}

func (p Profile) clone() Profile {
	c := p
	c.Skills = append([]string(nil), p.Skills...)
	c.Education = append([]string(nil), p.Education...)
	return c
}
