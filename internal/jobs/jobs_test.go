package jobs

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSalaryString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		salary Salary
		expect string
	}{
		{name: "range", salary: NewSalary(90000, 120000, "usd"), expect: "$90,000 - $120,000 USD"},
		{name: "min only", salary: NewSalary(90000, 0, "USD"), expect: "$90,000+ USD"},
		{name: "max only", salary: NewSalary(0, 75000.4, "GBP"), expect: "Up to £75,000 GBP"},
		{name: "unknown symbol", salary: NewSalary(150000, 200000, "RUR"), expect: "150,000 - 200,000 RUR"},
		{name: "absent", salary: NewSalary(0, 0, "USD"), expect: NotSpecified},
		{name: "swapped bounds", salary: NewSalary(5000, 3000, ""), expect: "$3,000 - $5,000 USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.salary.String(); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestParseSalaryString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect Salary
	}{
		{input: "$90,000 - $120,000 USD", expect: Salary{Specified: true, Min: 90000, Max: 120000, Currency: "USD"}},
		{input: "80k+", expect: Salary{Specified: true, Min: 80000, Currency: "EUR"}},
		{input: "Up to £45,000", expect: Salary{Specified: true, Max: 45000, Currency: "GBP"}},
		{input: "60000 Monthly", expect: Salary{Specified: true, Min: 60000, Max: 60000, Currency: "EUR"}},
		{input: "80k DOE", expect: Salary{Specified: true, Min: 80000, Max: 80000, Currency: "EUR"}},
		{input: "TBD $70,000 - $85,000", expect: Salary{Specified: true, Min: 70000, Max: 85000, Currency: "USD"}},
		{input: "from 150,000 RUR", expect: Salary{Specified: true, Min: 150000, Currency: "RUR"}},
		{input: "Competitive", expect: Salary{}},
		{input: "", expect: Salary{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseSalaryString(tt.input, "EUR"); got != tt.expect {
				t.Fatalf("expected %+v, got %+v", tt.expect, got)
			}
		})
	}
}

func TestNormalizeFillsSentinels(t *testing.T) {
	p := Posting{
		Source:         SourceAdzuna,
		Title:          "Go Developer",
		RequiredSkills: []string{" Go ", ""},
		Description:    strings.Repeat("a", DescriptionLimit+10),
		PostedDaysAgo:  -3,
	}.Normalize()

	if p.Company != NotSpecified || p.Location != NotSpecified || p.EmploymentType != NotSpecified {
		t.Fatalf("expected sentinels, got %+v", p)
	}
	if len(p.RequiredSkills) != 1 || p.RequiredSkills[0] != "Go" {
		t.Fatalf("unexpected skills %v", p.RequiredSkills)
	}
	if got := len([]rune(p.Description)); got != DescriptionLimit+3 {
		t.Fatalf("expected truncated description, got %d runes", got)
	}
	if p.PostedDaysAgo != 0 {
		t.Fatalf("expected clamped age, got %d", p.PostedDaysAgo)
	}
	if p.ID == "" || p.ID != (Posting{Source: SourceAdzuna, Title: "Go Developer"}).Normalize().ID {
		t.Fatalf("expected stable fallback id, got %q", p.ID)
	}
}

func TestFallbackIDDependsOnSource(t *testing.T) {
	a := FallbackID(SourceJSearch, "Go Developer", "Acme")
	b := FallbackID(SourceAdzuna, "Go Developer", "Acme")

	if a == b {
		t.Fatalf("expected different ids per source")
	}
	if a != FallbackID(SourceJSearch, "Go Developer", "Acme") {
		t.Fatalf("expected deterministic id")
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	if got := DaysSince(time.Time{}, now); got != UnknownAge {
		t.Fatalf("expected unknown age, got %d", got)
	}
	if got := DaysSince(now.Add(-49*time.Hour), now); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	if got := DaysSince(now.Add(time.Hour), now); got != 0 {
		t.Fatalf("expected future dates to clamp to 0, got %d", got)
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "plain", input: "  Build   services ", expect: "Build services"},
		{name: "markup", input: "<p>Build <b>services</b></p><ul><li>Go</li><li>Kafka</li></ul>", expect: "Build services Go Kafka"},
		{name: "highlight", input: "Experience with <highlighttext>Go</highlighttext> &amp; SQL", expect: "Experience with Go & SQL"},
		{name: "script", input: "<div>Hi<script>alert(1)</script></div>", expect: "Hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := PlainText(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestExcludedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	empty, err := LoadExcluded(path)
	if err != nil {
		t.Fatalf("loading missing file: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("expected empty list")
	}

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	postings := []Posting{
		{ID: "1", Source: SourceJSearch, Company: "Acme"},
		{ID: "2", Source: SourceAdzuna, Company: "Globex"},
	}

	added, err := AppendExcluded(path, ToExcluded(postings, now))
	if err != nil || added != 2 {
		t.Fatalf("expected 2 added, got %d (%v)", added, err)
	}

	added, err = AppendExcluded(path, ToExcluded(postings[:1], now))
	if err != nil || added != 0 {
		t.Fatalf("expected duplicates to be skipped, got %d (%v)", added, err)
	}

	loaded, err := LoadExcluded(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	ids := loaded.IDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	if _, ok := ids["2"]; !ok {
		t.Fatalf("expected id 2 in %v", ids)
	}
	if !loaded.Items[0].ExcludedAt.Equal(now) {
		t.Fatalf("unexpected timestamp %v", loaded.Items[0].ExcludedAt)
	}
}
