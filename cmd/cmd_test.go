package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/matching"
	"github.com/spigell/jobscout/internal/report"
	"github.com/spigell/jobscout/internal/resume"
	"github.com/spigell/jobscout/internal/vocabulary"
)

func intPtr(v int) *int { return &v }

func validConfig() *Config {
	return &Config{
		Search:  &SearchConfig{Providers: []string{"jsearch", "adzuna"}, MaxResults: 10, Timeout: time.Second},
		Scoring: &ScoringConfig{MinScore: intPtr(40)},
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero cutoff is allowed", mutate: func(c *Config) { c.Scoring.MinScore = intPtr(0) }},
		{
			name:    "missing min score",
			mutate:  func(c *Config) { c.Scoring.MinScore = nil },
			wantErr: "scoring.min-score",
		},
		{
			name:    "min score above range",
			mutate:  func(c *Config) { c.Scoring.MinScore = intPtr(101) },
			wantErr: "scoring.min-score",
		},
		{
			name:    "missing scoring section",
			mutate:  func(c *Config) { c.Scoring = nil },
			wantErr: "scoring",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Search.Providers = []string{"indeed"} },
			wantErr: "search.providers[0]",
		},
		{
			name:    "too many results",
			mutate:  func(c *Config) { c.Search.MaxResults = 500 },
			wantErr: "search.max-results",
		},
		{
			name: "weights must add up",
			mutate: func(c *Config) {
				c.Scoring.Weights = &matching.Weights{Skills: 50, Seniority: 20, Location: 20, Recency: 20}
			},
			wantErr: "scoring.weights",
		},
		{
			name: "custom weights",
			mutate: func(c *Config) {
				c.Scoring.Weights = &matching.Weights{Skills: 70, Seniority: 10, Location: 10, Recency: 10}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"RAPIDAPI_KEY", "ADZUNA_APP_ID", "ADZUNA_APP_KEY", "HH_TOKEN"} {
		t.Setenv(env, "")
	}
}

func TestBuildProvidersKeepsConfiguredOrder(t *testing.T) {
	clearProviderEnv(t)

	cfg := validConfig()
	cfg.Search.Providers = []string{"headhunter", "jsearch"}
	cfg.Providers = &ProvidersConfig{}
	cfg.Providers.JSearch.APIKey = "secret"

	providers, err := buildProviders(cfg, vocabulary.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if providers[0].Name() != "headhunter" || providers[1].Name() != "jsearch" {
		t.Fatalf("unexpected order: %s, %s", providers[0].Name(), providers[1].Name())
	}
	if providers[0].Configured() {
		t.Fatalf("headhunter should not be configured without a token")
	}
	if !providers[1].Configured() {
		t.Fatalf("jsearch should be configured with an api key")
	}
}

func TestBuildProvidersReadsEnvironment(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ADZUNA_APP_ID", "id")
	t.Setenv("ADZUNA_APP_KEY", "key")

	cfg := &Config{}
	providers, err := buildProviders(cfg, vocabulary.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(providers) != len(defaultProviders) {
		t.Fatalf("expected default providers, got %d", len(providers))
	}
	for _, p := range providers {
		if want := p.Name() == "adzuna"; p.Configured() != want {
			t.Fatalf("provider %s configured=%t", p.Name(), p.Configured())
		}
	}
}

func TestBuildProvidersErrors(t *testing.T) {
	clearProviderEnv(t)

	cfg := validConfig()
	cfg.Search.Providers = []string{"monster"}
	if _, err := buildProviders(cfg, vocabulary.Default(), zap.NewNop()); err == nil || !strings.Contains(err.Error(), "monster") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}

	cfg = validConfig()
	cfg.Search.Providers = []string{"headhunter"}
	cfg.Providers = &ProvidersConfig{Headhunter: HeadhunterConfig{TokenFile: filepath.Join(t.TempDir(), "missing")}}
	if _, err := buildProviders(cfg, vocabulary.Default(), zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing token file")
	}
}

func TestDescribeProviders(t *testing.T) {
	clearProviderEnv(t)

	cfg := validConfig()
	cfg.Search.Providers = []string{"headhunter", "jsearch"}
	cfg.Providers = &ProvidersConfig{}
	cfg.Providers.JSearch.APIKey = "secret"

	providers, err := buildProviders(cfg, vocabulary.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	describeProviders(&buf, providers)
	out := buf.String()

	for _, want := range []string{
		"1. HeadHunter (hh.ru) (headhunter): not configured, missing HH_TOKEN",
		"Sign up: https://dev.hh.ru/admin",
		"2. JSearch (RapidAPI) (jsearch): configured",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Count(out, "Sign up:") != 1 {
		t.Fatalf("configured providers should not print signup details:\n%s", out)
	}
}

func TestParseResumesReportsPerFileFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	text := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(text, []byte("John Doe\nGo developer"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	missing := filepath.Join(dir, "missing.pdf")

	results, err := parseResumes(context.Background(), []string{text, missing}, "Remote", 2, vocabulary.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].File != text || results[1].File != missing {
		t.Fatalf("results lost path order: %+v", results)
	}

	if results[0].Profile != nil || results[0].Error == "" {
		t.Fatalf("expected format failure, got %+v", results[0])
	}
	if !strings.Contains(results[0].Hint, "not a PDF") {
		t.Fatalf("expected a hint for non-pdf input, got %q", results[0].Hint)
	}

	if !strings.Contains(results[1].Error, "reading resume") || results[1].Hint != "" {
		t.Fatalf("expected read failure without hint, got %+v", results[1])
	}
}

func TestParseResumesCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := parseResumes(ctx, []string{"a.pdf"}, "", 1, vocabulary.Default(), zap.NewNop()); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func sampleRunReport() *report.Report {
	matches := []matching.Match{
		{
			Posting: jobs.Posting{ID: "j1", Title: "Go Engineer", Company: "Acme", Location: "Remote", Source: jobs.SourceJSearch, ApplyURL: "https://example.com/j1"},
			Score:   77,
			Reasons: []string{"Strong skills match: Go"},
		},
		{
			Posting: jobs.Posting{ID: "j2", Title: "SRE", Company: "Globex", Location: "Berlin", Source: jobs.SourceJSearch},
			Score:   51,
		},
	}
	return report.New(resume.Profile{Name: "Jane"}, "jsearch", "go", matches, nil, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func TestExcludeSingleMatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	rep := sampleRunReport()

	if err := exclude(zap.NewNop(), path, rep, []string{"j2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Len() != 1 || rep.Entries[0].Posting.ID != "j1" {
		t.Fatalf("expected j1 to stay in the report, got %+v", rep.Entries)
	}

	excluded, err := jobs.LoadExcluded(path)
	if err != nil {
		t.Fatalf("loading exclude file: %v", err)
	}
	if _, ok := excluded.IDs()["j2"]; !ok || excluded.Len() != 1 {
		t.Fatalf("expected only j2 in exclude file, got %+v", excluded.Items)
	}
}

func TestExcludeAll(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	rep := sampleRunReport()

	if err := exclude(zap.NewNop(), path, rep, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Len() != 0 {
		t.Fatalf("expected empty report, got %d entries", rep.Len())
	}

	excluded, err := jobs.LoadExcluded(path)
	if err != nil {
		t.Fatalf("loading exclude file: %v", err)
	}
	if excluded.Len() != 2 {
		t.Fatalf("expected 2 excluded postings, got %d", excluded.Len())
	}
}

func TestExcludeKeepsReportWhenWriteFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	rep := sampleRunReport()

	if err := exclude(zap.NewNop(), path, rep, nil); err == nil {
		t.Fatalf("expected write error")
	}
	if rep.Len() != 2 || rep.Entries[0].Posting.ID != "j1" || rep.Entries[1].Posting.ID != "j2" {
		t.Fatalf("report changed after failed write: %+v", rep.Entries)
	}
}

func TestPrintMatches(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printMatches(&buf, sampleRunReport())
	out := buf.String()

	for _, want := range []string{
		`2 matches from jsearch for "go"`,
		"1. [77] Go Engineer at Acme",
		"   - Strong skills match: Go",
		"https://example.com/j1",
		"2. [51] SRE at Globex",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRedactedConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Providers = &ProvidersConfig{}
	cfg.Providers.JSearch.APIKey = "rapid"
	cfg.Providers.Headhunter.Token = "hh"
	cfg.AI = &AIConfig{Gemini: &GeminiConfig{APIKey: "gem", Model: "gemini-2.5-flash"}}

	redacted := redactedConfig(cfg)

	if redacted.Providers.JSearch.APIKey != "***" || redacted.Providers.Headhunter.Token != "***" || redacted.AI.Gemini.APIKey != "***" {
		t.Fatalf("credentials were not masked: %+v", redacted.Providers)
	}
	if redacted.Providers.Adzuna.AppKey != "" || redacted.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected redaction result")
	}
	if cfg.Providers.JSearch.APIKey != "rapid" || cfg.AI.Gemini.APIKey != "gem" {
		t.Fatalf("original config must not change")
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	info := buildInfo{Version: "v1.2.3", Revision: "abc123", GoVersion: "go1.24.5", Platform: "linux/amd64"}

	var text bytes.Buffer
	printVersion(&text, info, false)
	if want := "jobscout version: v1.2.3\nrevision: abc123\ngo: go1.24.5 linux/amd64\n"; text.String() != want {
		t.Fatalf("unexpected output %q", text.String())
	}

	var js bytes.Buffer
	printVersion(&js, info, true)
	if !strings.Contains(js.String(), `"revision":"abc123"`) {
		t.Fatalf("unexpected json output %q", js.String())
	}
}
