// Package adzuna adapts the Adzuna job search API.
package adzuna

import (
	"context"
	"fmt"
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
	Name = "adzuna"

	DefaultBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	DefaultCountry  = "us"
	DefaultPageSize = 20
	maxPageSize     = 50

	EnvAppID  = "ADZUNA_APP_ID"
	EnvAppKey = "ADZUNA_APP_KEY"
)

var countries = map[string]string{
	"united states":  "us",
	"usa":            "us",
	"us":             "us",
	"uk":             "gb",
	"gb":             "gb",
	"united kingdom": "gb",
	"canada":         "ca",
	"ca":             "ca",
	"australia":      "au",
	"au":             "au",
}

var currencies = map[string]string{
	"us": "USD",
	"gb": "GBP",
	"ca": "CAD",
	"au": "AUD",
}

type Config struct {
	AppID   string `mapstructure:"app-id"`
	AppKey  string `mapstructure:"app-key"`
	BaseURL string `mapstructure:"base-url"`
	Country string `mapstructure:"country"`
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

func (p *Provider) Configured() bool {
	return strings.TrimSpace(p.cfg.AppID) != "" && strings.TrimSpace(p.cfg.AppKey) != ""
}

func (p *Provider) Setup() search.Setup {
	s := search.Setup{
		Title:       "Adzuna",
		Description: "Direct API access to Adzuna listings",
		SignupURL:   "https://developer.adzuna.com/",
		FreeTier:    "1,000 requests/month",
		Credentials: []string{EnvAppID, EnvAppKey},
	}
	if strings.TrimSpace(p.cfg.AppID) == "" {
		s.Missing = append(s.Missing, EnvAppID)
	}
	if strings.TrimSpace(p.cfg.AppKey) == "" {
		s.Missing = append(s.Missing, EnvAppKey)
	}
	return s
}

type response struct {
	Count   int              `json:"count"`
	Results []map[string]any `json:"results"`
}

type item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Created     string `json:"created"`
	RedirectURL string `json:"redirect_url"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string   `json:"display_name"`
		Area        []string `json:"area"`
	} `json:"location"`
	SalaryMin       float64 `json:"salary_min"`
	SalaryMax       float64 `json:"salary_max"`
	SalaryPredicted bool    `json:"salary_is_predicted"`
	ContractType    string  `json:"contract_type"`
	ContractTime    string  `json:"contract_time"`
}

// Country resolves a free-text location to an Adzuna country code. The second value is
// false when the location is not a country name and should be sent as "where".
func (p *Provider) Country(location string) (string, bool) {
	if code, ok := countries[strings.ToLower(strings.TrimSpace(location))]; ok {
		return code, true
	}
	return p.cfg.Country, false
}

func (p *Provider) Search(ctx context.Context, q search.Query) ([]jobs.Posting, error) {
	if !p.Configured() {
		return nil, &search.ProviderError{Provider: Name, Kind: search.KindNotConfigured, Err: fmt.Errorf("%s and %s must be set", EnvAppID, EnvAppKey)}
	}

	country, isCountry := p.Country(q.Location)
	page := max(q.Page, 1)
	size := q.Limit
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, maxPageSize)

	params := url.Values{}
	params.Set("app_id", p.cfg.AppID)
	params.Set("app_key", p.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(size))
	params.Set("what", strings.TrimSpace(q.Text))
	params.Set("content-type", "application/json")
	if loc := strings.TrimSpace(q.Location); loc != "" && !isCountry && !strings.EqualFold(loc, "remote") {
		params.Set("where", loc)
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", strings.TrimRight(p.cfg.BaseURL, "/"), country, page)

	var resp response
	if err := p.client.GetJSON(ctx, endpoint, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("adzuna request: %w", err)
	}

	var items []item
	if err := apiclient.DecodeItems(resp.Results, &items); err != nil {
		return nil, fmt.Errorf("adzuna response: %w", err)
	}

	now := p.now()
	postings := make([]jobs.Posting, 0, len(items))
	for _, it := range items {
		postings = append(postings, p.toPosting(it, currencies[country], now))
	}

	p.logger.Debug("adzuna response mapped",
		zap.String("country", country),
		zap.Int("total", resp.Count),
		zap.Int("jobs", len(postings)),
	)
	return postings, nil
}

func (p *Provider) toPosting(it item, currency string, now time.Time) jobs.Posting {
	description, err := jobs.PlainText(it.Description)
	if err != nil {
		description = it.Description
	}

	posted, _ := time.Parse(time.RFC3339, it.Created)

	text := strings.ToLower(it.Title + " " + it.Location.DisplayName + " " + description)
	remote := strings.Contains(text, "remote") || strings.Contains(text, "work from home")

	return jobs.Posting{
		ID:             it.ID,
		Title:          it.Title,
		Company:        it.Company.DisplayName,
		Location:       it.Location.DisplayName,
		RemoteAllowed:  remote,
		RequiredSkills: p.vocab.SkillsIn(it.Title + "\n" + description),
		Seniority:      level.FromTitle(it.Title),
		PostedDaysAgo:  jobs.DaysSince(posted, now),
		Salary:         jobs.NewSalary(it.SalaryMin, it.SalaryMax, currency),
		Source:         jobs.SourceAdzuna,
		Description:    description,
		EmploymentType: employmentType(it),
		ApplyURL:       it.RedirectURL,
		PostedAt:       posted,
	}.Normalize()
}

func employmentType(it item) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{it.ContractTime, it.ContractType} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
