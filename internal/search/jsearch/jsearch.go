// Package jsearch adapts the RapidAPI JSearch aggregator.
package jsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/level"
	"github.com/spigell/jobscout/internal/search"
	"github.com/spigell/jobscout/internal/search/apiclient"
	"github.com/spigell/jobscout/internal/vocabulary"
)

const (
	Name = "jsearch"

	DefaultBaseURL         = "https://jsearch.p.rapidapi.com"
	DefaultCountry         = "us"
	DefaultEmploymentTypes = "FULLTIME,PARTTIME,CONTRACTOR,INTERN"

	EnvAPIKey = "RAPIDAPI_KEY"

	searchPath = "/search"
	rapidHost  = "jsearch.p.rapidapi.com"
)

type Config struct {
	APIKey          string `mapstructure:"api-key"`
	BaseURL         string `mapstructure:"base-url"`
	Country         string `mapstructure:"country"`
	EmploymentTypes string `mapstructure:"employment-types"`
}

type Provider struct {
	cfg    Config
	client *apiclient.Client
	vocab  *vocabulary.Vocabulary
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config, client *apiclient.Client, vocab *vocabulary.Vocabulary, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.EmploymentTypes == "" {
		cfg.EmploymentTypes = DefaultEmploymentTypes
	}
	if client == nil {
		client = apiclient.New(logger)
	}
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{cfg: cfg, client: client, vocab: vocab, logger: logger, now: time.Now}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Configured() bool { return strings.TrimSpace(p.cfg.APIKey) != "" }

func (p *Provider) Setup() search.Setup {
	s := search.Setup{
		Title:       "JSearch (RapidAPI)",
		Description: "Aggregates jobs from Google for Jobs, Indeed and LinkedIn",
		SignupURL:   "https://rapidapi.com/letscrape-6bRBa3QguO5/api/jsearch",
		FreeTier:    "150 requests/month",
		Credentials: []string{EnvAPIKey},
	}
	if !p.Configured() {
		s.Missing = []string{EnvAPIKey}
	}
	return s
}

type response struct {
	Status string           `json:"status"`
	Data   []map[string]any `json:"data"`
}

type item struct {
	JobID          string  `json:"job_id"`
	Title          string  `json:"job_title"`
	Employer       string  `json:"employer_name"`
	City           string  `json:"job_city"`
	State          string  `json:"job_state"`
	Country        string  `json:"job_country"`
	IsRemote       bool    `json:"job_is_remote"`
	Description    string  `json:"job_description"`
	MinSalary      float64 `json:"job_min_salary"`
	MaxSalary      float64 `json:"job_max_salary"`
	Currency       string  `json:"job_salary_currency"`
	SalaryText     string  `json:"job_salary"`
	EmploymentType string  `json:"job_employment_type"`
	PostedAtUnix   int64   `json:"job_posted_at_timestamp"`
	PostedAtUTC    string  `json:"job_posted_at_datetime_utc"`
	ApplyLink      string  `json:"job_apply_link"`
	Highlights     struct {
		Qualifications []string `json:"Qualifications"`
	} `json:"job_highlights"`
	RequiredExperience struct {
		NoExperienceRequired bool `json:"no_experience_required"`
		Months               int  `json:"required_experience_in_months"`
	} `json:"job_required_experience"`
}

func (p *Provider) Search(ctx context.Context, q search.Query) ([]jobs.Posting, error) {
	if !p.Configured() {
		return nil, &search.ProviderError{Provider: Name, Kind: search.KindNotConfigured, Err: fmt.Errorf("%s is not set", EnvAPIKey)}
	}

	params := url.Values{}
	params.Set("query", buildQuery(q))
	params.Set("page", strconv.Itoa(max(q.Page, 1)))
	params.Set("num_pages", "1")
	params.Set("country", p.cfg.Country)
	params.Set("employment_types", p.cfg.EmploymentTypes)
	if strings.Contains(strings.ToLower(q.Location), "remote") {
		params.Set("remote_jobs_only", "true")
	}

	headers := http.Header{}
	headers.Set("X-RapidAPI-Key", p.cfg.APIKey)
	headers.Set("X-RapidAPI-Host", rapidHost)

	var resp response
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+searchPath, params, headers, &resp); err != nil {
		return nil, fmt.Errorf("jsearch request: %w", err)
	}

	var items []item
	if err := apiclient.DecodeItems(resp.Data, &items); err != nil {
		return nil, fmt.Errorf("jsearch response: %w", err)
	}

	now := p.now()
	postings := make([]jobs.Posting, 0, len(items))
	for _, it := range items {
		postings = append(postings, p.toPosting(it, now))
	}

	p.logger.Debug("jsearch response mapped", zap.String("status", resp.Status), zap.Int("jobs", len(postings)))
	return postings, nil
}

func buildQuery(q search.Query) string {
	text := strings.TrimSpace(q.Text)
	loc := strings.TrimSpace(q.Location)
	if loc == "" || strings.EqualFold(loc, "remote") {
		return text
	}
	return text + " in " + loc
}

func (p *Provider) toPosting(it item, now time.Time) jobs.Posting {
	description, err := jobs.PlainText(it.Description)
	if err != nil {
		description = it.Description
	}

	var posted time.Time
	switch {
	case it.PostedAtUnix > 0:
		posted = time.Unix(it.PostedAtUnix, 0).UTC()
	case it.PostedAtUTC != "":
		posted, _ = time.Parse(time.RFC3339, it.PostedAtUTC)
	}

	skillText := it.Title + "\n" + strings.Join(it.Highlights.Qualifications, "\n") + "\n" + description

	return jobs.Posting{
		ID:             it.JobID,
		Title:          it.Title,
		Company:        it.Employer,
		Location:       location(it),
		RemoteAllowed:  it.IsRemote,
		RequiredSkills: p.vocab.SkillsIn(skillText),
		Seniority:      seniority(it),
		PostedDaysAgo:  jobs.DaysSince(posted, now),
		Salary:         salary(it),
		Source:         jobs.SourceJSearch,
		Description:    description,
		EmploymentType: it.EmploymentType,
		ApplyURL:       it.ApplyLink,
		PostedAt:       posted,
	}.Normalize()
}

func location(it item) string {
	var parts []string
	for _, s := range []string{it.City, it.State} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 && it.Country != "" {
		parts = append(parts, it.Country)
	}
	loc := strings.Join(parts, ", ")
	if it.IsRemote && !strings.Contains(strings.ToLower(loc), "remote") {
		if loc == "" {
			return "Remote"
		}
		return loc + " (Remote)"
	}
	return loc
}

// salary prefers the numeric bounds and falls back to the free-text field some
// listings carry instead.
func salary(it item) jobs.Salary {
	if s := jobs.NewSalary(it.MinSalary, it.MaxSalary, it.Currency); s.Specified {
		return s
	}
	currency := it.Currency
	if currency == "" {
		currency = jobs.DefaultCurrency
	}
	return jobs.ParseSalaryString(it.SalaryText, currency)
}

func seniority(it item) level.Seniority {
	if s := level.FromTitle(it.Title); s.Known() {
		return s
	}
	if it.RequiredExperience.NoExperienceRequired {
		return level.Junior
	}
	return level.FromMonths(it.RequiredExperience.Months)
}
