// Package jobs defines the provider-neutral job posting model.
package jobs

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/jobscout/internal/level"
)

// NotSpecified replaces absent optional text fields so consumers never see empty values.
const NotSpecified = "Not specified"

const (
	// UnknownAge is used for postings without a publication date. It earns no recency credit.
	UnknownAge = 30

	DescriptionLimit = 500
)

// Source identifies the provider a posting came from.
type Source string

const (
	SourceJSearch    Source = "jsearch"
	SourceAdzuna     Source = "adzuna"
	SourceHeadhunter Source = "headhunter"
)

func (s Source) String() string { return string(s) }

type Posting struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Company        string          `json:"company"`
	Location       string          `json:"location"`
	RemoteAllowed  bool            `json:"remote_allowed"`
	RequiredSkills []string        `json:"required_skills"`
	Seniority      level.Seniority `json:"seniority"`
	PostedDaysAgo  int             `json:"posted_days_ago"`
	Salary         Salary          `json:"salary"`
	Source         Source          `json:"source"`
	Description    string          `json:"description"`
	EmploymentType string          `json:"employment_type"`
	ApplyURL       string          `json:"apply_url,omitempty"`
	PostedAt       time.Time       `json:"posted_at,omitempty"`
}

// Normalize fills sentinels for absent fields and bounds the description. Adapters call
// it on every posting they emit.
func (p Posting) Normalize() Posting {
	p.Title = orNotSpecified(p.Title)
	p.Company = orNotSpecified(p.Company)
	p.Location = orNotSpecified(p.Location)
	p.EmploymentType = orNotSpecified(p.EmploymentType)
	p.Description = Truncate(strings.TrimSpace(p.Description), DescriptionLimit)

	skills := make([]string, 0, len(p.RequiredSkills))
	for _, s := range p.RequiredSkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	p.RequiredSkills = skills

	if p.PostedDaysAgo < 0 {
		p.PostedDaysAgo = 0
	}
	if p.ID == "" {
		p.ID = FallbackID(p.Source, p.Title, p.Company, p.Location, p.ApplyURL)
	}
	return p
}

// IsRemote reports whether the posting allows remote work or says so in its location.
func (p Posting) IsRemote() bool {
	return p.RemoteAllowed || strings.Contains(strings.ToLower(p.Location), "remote")
}

// DaysSince returns the whole days between posted and now, or UnknownAge when posted is zero.
func DaysSince(posted, now time.Time) int {
	if posted.IsZero() {
		return UnknownAge
	}
	days := int(now.Sub(posted).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Truncate shortens s to limit runes and marks the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "..."
}

func orNotSpecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return NotSpecified
	}
	return s
}
