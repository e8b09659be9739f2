package filtering

import (
	"context"
	"strings"

	"github.com/spigell/jobscout/internal/matching"
)

type remoteOnlyFilter struct {
	enabled bool
	reason  string
}

// NewRemoteOnly keeps only postings that allow remote work.
func NewRemoteOnly(enabled bool) Filter {
	return &remoteOnlyFilter{enabled: enabled}
}

func (f *remoteOnlyFilter) Name() string { return "remote_only" }

func (f *remoteOnlyFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *remoteOnlyFilter) IsEnabled() bool { return f.enabled }

func (f *remoteOnlyFilter) Validate() error { return nil }

func (f *remoteOnlyFilter) Apply(_ context.Context, matches []matching.Match) ([]matching.Match, Step, error) {
	kept, _ := keep(matches, func(m matching.Match) bool { return m.Posting.IsRemote() })
	return kept, stepOf(len(matches), kept), nil
}

func (f *remoteOnlyFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason}
}

type employmentTypeFilter struct {
	types  []string
	reason string
}

// NewEmploymentType keeps postings whose employment type contains one of types, such as
// "full_time" or "contract". Matching ignores case, spaces, dashes and underscores, so
// "full_time" also keeps "FULLTIME" and "Full-time".
func NewEmploymentType(types []string) Filter {
	f := &employmentTypeFilter{}
	for _, t := range types {
		if t = normalizeEmployment(t); t != "" {
			f.types = append(f.types, t)
		}
	}
	return f
}

func (f *employmentTypeFilter) Name() string { return "employment_type" }

func (f *employmentTypeFilter) Disable(reason string) {
	f.types = nil
	f.reason = reason
}

func (f *employmentTypeFilter) IsEnabled() bool { return len(f.types) > 0 }

func (f *employmentTypeFilter) Validate() error { return nil }

func (f *employmentTypeFilter) Apply(_ context.Context, matches []matching.Match) ([]matching.Match, Step, error) {
	kept, _ := keep(matches, func(m matching.Match) bool {
		employment := normalizeEmployment(m.Posting.EmploymentType)
		for _, t := range f.types {
			if strings.Contains(employment, t) {
				return true
			}
		}
		return false
	})
	return kept, stepOf(len(matches), kept), nil
}

func (f *employmentTypeFilter) Status() Status {
	details := map[string]string{}
	if len(f.types) > 0 {
		details["types"] = strings.Join(f.types, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

var employmentReplacer = strings.NewReplacer(" ", "", "-", "", "_", "")

func normalizeEmployment(s string) string {
	return employmentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}
