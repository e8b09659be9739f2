package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/level"
	"github.com/spigell/jobscout/internal/search"
	"github.com/spigell/jobscout/internal/search/apiclient"
)

const pageTemplate = `{
  "found": 3, "pages": 2, "page": %d, "per_page": 2,
  "items": [%s]
}`

const firstPageItems = `
{
  "id": "101",
  "name": "Golang Developer",
  "area": {"id": "1", "name": "Moscow"},
  "salary": {"from": 250000, "to": 350000, "currency": "rur"},
  "experience": {"id": "between3And6"},
  "schedule": {"id": "remote"},
  "employment": {"id": "full", "name": "Full time"},
  "employer": {"id": "7", "name": "Acme"},
  "alternate_url": "https://hh.ru/vacancy/101",
  "snippet": {"requirement": "Experience with <highlighttext>Go</highlighttext> and Kubernetes", "responsibility": "Build services"},
  "published_at": "2024-05-09T10:00:00+0300"
},
{
  "id": "102",
  "name": "Lead Backend Engineer",
  "area": {"name": "Saint Petersburg"},
  "experience": {"id": "moreThan6"},
  "schedule": {"id": "fullDay"},
  "employment": {"id": "project"},
  "employer": {"name": "Globex"},
  "key_skills": [{"name": "PostgreSQL"}, {"name": "Go"}],
  "published_at": "2024-05-01T10:00:00+0300"
}`

const secondPageItems = `
{
  "id": 103,
  "name": "Intern Developer",
  "experience": {"id": "noExperience"},
  "employer": {"name": "Initech"}
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, cfg Config) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := New(cfg, nil, nil, nil)
	p.client.APIURL = server.URL
	p.now = func() time.Time { return time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestSearchPaginatesAndMaps(t *testing.T) {
	var requests int
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != SearchPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		q := r.URL.Query()
		if q.Get("text") != "go developer" || q.Get("schedule") != "remote" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if got := q["area"]; strings.Join(got, ",") != "1,2" {
			t.Errorf("unexpected areas %v", got)
		}

		switch q.Get("page") {
		case "0":
			fmt.Fprintf(w, pageTemplate, 0, firstPageItems)
		case "1":
			fmt.Fprintf(w, pageTemplate, 1, secondPageItems)
		default:
			t.Errorf("unexpected page %s", q.Get("page"))
		}
	}, Config{Token: "secret", Areas: []int{1, 2}, MaxPages: 5})

	got, err := p.Search(context.Background(), search.Query{Text: "go developer", Location: "Remote"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected 2 requests, got %d", requests)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(got))
	}

	first := got[0]
	if first.Location != "Moscow (Remote)" || !first.RemoteAllowed {
		t.Fatalf("unexpected location %+v", first)
	}
	if first.Seniority != level.Mid || first.EmploymentType != "full_time" {
		t.Fatalf("unexpected seniority or employment %+v", first)
	}
	if first.Salary.String() != "250,000 - 350,000 RUR" {
		t.Fatalf("unexpected salary %q", first.Salary)
	}
	if first.PostedDaysAgo != 2 || first.Source != jobs.SourceHeadhunter {
		t.Fatalf("unexpected age or source %+v", first)
	}
	if strings.Contains(first.Description, "<") {
		t.Fatalf("expected markup stripped, got %q", first.Description)
	}
	if strings.Join(first.RequiredSkills, ",") != "Go,Kubernetes" {
		t.Fatalf("unexpected skills %v", first.RequiredSkills)
	}

	second := got[1]
	if second.Seniority != level.Senior || second.EmploymentType != "contract" {
		t.Fatalf("unexpected mapping %+v", second)
	}
	if strings.Join(second.RequiredSkills, ",") != "PostgreSQL,Go" {
		t.Fatalf("expected key skills kept, got %v", second.RequiredSkills)
	}

	third := got[2]
	if third.ID != "103" || third.Seniority != level.Junior {
		t.Fatalf("unexpected mapping %+v", third)
	}
	if third.Location != jobs.NotSpecified || third.PostedDaysAgo != jobs.UnknownAge {
		t.Fatalf("expected sentinels, got %+v", third)
	}
}

func TestSearchStopsAtMaxPages(t *testing.T) {
	var requests int
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		fmt.Fprintf(w, pageTemplate, 0, firstPageItems)
	}, Config{Token: "secret", MaxPages: 1})

	got, err := p.Search(context.Background(), search.Query{Text: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 1 || len(got) != 2 {
		t.Fatalf("expected a single page of 2 postings, got %d requests and %d postings", requests, len(got))
	}
}

func TestSearchUnauthorized(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, Config{Token: "expired"})

	_, err := p.Search(context.Background(), search.Query{Text: "go"})
	if kind := search.Classify(err); kind != search.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %q (%v)", kind, err)
	}
}

func TestNotConfigured(t *testing.T) {
	p := New(Config{}, nil, nil, nil)

	if p.Configured() {
		t.Fatalf("expected provider without token to be unconfigured")
	}
	if s := p.Setup(); len(s.Missing) != 1 || s.Missing[0] != EnvToken {
		t.Fatalf("unexpected setup %+v", s)
	}
}

func TestBuildParams(t *testing.T) {
	q := buildParams(&SearchParams{
		Text:      "golang",
		Areas:     []int{113, 1},
		Schedules: []string{"remote", "flexible"},
		PerPage:   20,
	})

	if q.Get("text") != "golang" || q.Get("per_page") != "20" {
		t.Fatalf("unexpected params %v", q)
	}
	if len(q["area"]) != 2 || len(q["schedule"]) != 2 {
		t.Fatalf("expected repeated params, got %v", q)
	}
	if _, ok := q["period"]; ok {
		t.Fatalf("expected zero values omitted, got %v", q)
	}
}

func TestClientKeepsSharedAPIClientUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Values("User-Agent"); len(got) != 1 || got[0] != userAgent {
			t.Errorf("unexpected user agent %v", got)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		_, _ = w.Write([]byte(`{"found": 0, "pages": 1, "page": 0, "items": []}`))
	}))
	defer server.Close()

	shared := apiclient.New(nil)
	c := NewClient(nil, "secret", shared)
	c.APIURL = server.URL

	if _, err := c.GetItems(context.Background(), SearchPath, nil, 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shared.UserAgent != apiclient.DefaultUserAgent {
		t.Fatalf("shared client user agent changed to %q", shared.UserAgent)
	}
}
