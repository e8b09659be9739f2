package headhunter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/search"
	"github.com/spigell/jobscout/internal/search/apiclient"
	"github.com/spigell/jobscout/internal/vocabulary"
)

const (
	Name = "headhunter"

	EnvToken     = "HH_TOKEN"
	EnvTokenFile = "HH_TOKEN_FILE"
)

type Config struct {
	Token       string        `mapstructure:"token"`
	Areas       []int         `mapstructure:"areas"`
	OrderBy     string        `mapstructure:"order-by"`
	SearchField string        `mapstructure:"search-field"`
	Period      uint          `mapstructure:"period"`
	MaxPages    int           `mapstructure:"max-pages"`
	PageDelay   time.Duration `mapstructure:"page-delay"`
}

type Provider struct {
	cfg    Config
	client *Client
	vocab  *vocabulary.Vocabulary
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config, api *apiclient.Client, vocab *vocabulary.Vocabulary, logger *zap.Logger) *Provider {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := NewClient(logger, cfg.Token, api)
	client.PageDelay = cfg.PageDelay
	return &Provider{cfg: cfg, client: client, vocab: vocab, logger: logger, now: time.Now}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Configured() bool { return strings.TrimSpace(p.cfg.Token) != "" }

func (p *Provider) Setup() search.Setup {
	s := search.Setup{
		Title:       "HeadHunter (hh.ru)",
		Description: "Vacancies from hh.ru and its regional sites",
		SignupURL:   "https://dev.hh.ru/admin",
		FreeTier:    "free for registered applications",
		Credentials: []string{EnvToken, EnvTokenFile},
	}
	if !p.Configured() {
		s.Missing = []string{EnvToken}
	}
	return s
}

// Client exposes the underlying API client, mainly so tests can point it elsewhere.
func (p *Provider) Client() *Client { return p.client }

func (p *Provider) Search(ctx context.Context, q search.Query) ([]jobs.Posting, error) {
	if !p.Configured() {
		return nil, &search.ProviderError{Provider: Name, Kind: search.KindNotConfigured, Err: fmt.Errorf("%s is not set", EnvToken)}
	}

	params := &SearchParams{
		Text:        strings.TrimSpace(q.Text),
		Areas:       p.cfg.Areas,
		OrderBy:     p.cfg.OrderBy,
		SearchField: p.cfg.SearchField,
		Period:      p.cfg.Period,
		PerPage:     perPage,
	}
	if q.Limit > 0 && q.Limit < perPage {
		params.PerPage = q.Limit
	}
	if strings.Contains(strings.ToLower(q.Location), "remote") {
		params.Schedules = []string{"remote"}
	}

	items, err := p.client.GetItems(ctx, SearchPath, buildParams(params), p.cfg.MaxPages, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("headhunter request: %w", err)
	}

	var vacancies []*Vacancy
	if err := apiclient.DecodeItems(items, &vacancies); err != nil {
		return nil, fmt.Errorf("headhunter response: %w", err)
	}

	now := p.now()
	postings := make([]jobs.Posting, 0, len(vacancies))
	for _, v := range vacancies {
		postings = append(postings, v.toPosting(p.vocab, now))
	}

	p.logger.Debug("headhunter response mapped", zap.Int("jobs", len(postings)))
	return postings, nil
}
