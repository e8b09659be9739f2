package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/matching"
)

type excludeFileFilter struct {
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes postings listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{path: strings.TrimSpace(path), logger: logger}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return f.path != "" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, matches []matching.Match) ([]matching.Match, Step, error) {
	initial := len(matches)

	excluded, err := jobs.LoadExcluded(f.path)
	if err != nil {
		return matches, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	ids := excluded.IDs()
	kept, dropped := keep(matches, func(m matching.Match) bool {
		_, found := ids[m.Posting.ID]
		return !found
	})
	if len(dropped) > 0 {
		f.logger.Info("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", len(kept)),
		)
	}

	return kept, stepOf(initial, kept), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}

type companiesFilter struct {
	companies []string
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that removes postings by company name, ignoring case.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &companiesFilter{logger: logger}
	for _, c := range companies {
		if c = strings.TrimSpace(c); c != "" {
			f.companies = append(f.companies, c)
		}
	}
	return f
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return len(f.companies) > 0 }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, matches []matching.Match) ([]matching.Match, Step, error) {
	initial := len(matches)

	kept, dropped := keep(matches, func(m matching.Match) bool {
		for _, c := range f.companies {
			if strings.EqualFold(strings.TrimSpace(m.Posting.Company), c) {
				return false
			}
		}
		return true
	})
	if len(dropped) > 0 {
		f.logger.Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", len(kept)),
		)
	}

	return kept, stepOf(initial, kept), nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}
