package headhunter

import (
	"strings"
	"time"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/level"
	"github.com/spigell/jobscout/internal/vocabulary"
)

const publishedLayout = "2006-01-02T15:04:05-0700"

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary struct {
		From     float64 `json:"from,omitempty"`
		To       float64 `json:"to,omitempty"`
		Currency string  `json:"currency,omitempty"`
	} `json:"salary,omitempty"`
	Experience struct {
		ID string `json:"id,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID string `json:"id,omitempty"`
	} `json:"schedule,omitempty"`
	Employment struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employment,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	KeySkills    []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Snippet struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

var experienceLevels = map[string]level.Seniority{
	"noExperience": level.Junior,
	"between1And3": level.Junior,
	"between3And6": level.Mid,
	"moreThan6":    level.Senior,
}

var employmentTypes = map[string]string{
	"full":      "full_time",
	"part":      "part_time",
	"project":   "contract",
	"volunteer": "volunteer",
	"probation": "internship",
}

func (v *Vacancy) toPosting(vocab *vocabulary.Vocabulary, now time.Time) jobs.Posting {
	requirement, _ := jobs.PlainText(v.Snippet.Requirement)
	responsibility, _ := jobs.PlainText(v.Snippet.Responsibility)
	description := strings.TrimSpace(strings.Join([]string{requirement, responsibility}, " "))

	skills := make([]string, 0, len(v.KeySkills))
	for _, s := range v.KeySkills {
		skills = append(skills, s.Name)
	}
	if len(skills) == 0 {
		skills = vocab.SkillsIn(v.Name + "\n" + description)
	}

	seniority := level.FromTitle(v.Name)
	if !seniority.Known() {
		seniority = experienceLevels[v.Experience.ID]
	}

	posted, _ := time.Parse(publishedLayout, v.PublishedAt)

	location := v.Area.Name
	remote := v.Schedule.ID == "remote"
	if remote {
		location = strings.TrimSpace(location + " (Remote)")
	}

	employment := employmentTypes[v.Employment.ID]
	if employment == "" {
		employment = v.Employment.Name
	}

	return jobs.Posting{
		ID:             v.ID,
		Title:          v.Name,
		Company:        v.Employer.Name,
		Location:       location,
		RemoteAllowed:  remote,
		RequiredSkills: skills,
		Seniority:      seniority,
		PostedDaysAgo:  jobs.DaysSince(posted, now),
		Salary:         jobs.NewSalary(v.Salary.From, v.Salary.To, v.Salary.Currency),
		Source:         jobs.SourceHeadhunter,
		Description:    description,
		EmploymentType: employment,
		ApplyURL:       v.AlternateURL,
		PostedAt:       posted,
	}.Normalize()
}
