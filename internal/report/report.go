// Package report renders ranked matches for people: grouped summaries, JSON dumps and
// Excel workbooks.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/jobscout/internal/ai"
	"github.com/spigell/jobscout/internal/matching"
	"github.com/spigell/jobscout/internal/resume"
)

type Entry struct {
	matching.Match
	AI *ai.FitAssessment `json:"ai,omitempty"`
}

type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Provider    string         `json:"provider"`
	Query       string         `json:"query"`
	Profile     resume.Profile `json:"profile"`
	Entries     []Entry        `json:"matches"`
}

// New joins matches with their optional AI assessments, keeping match order.
func New(profile resume.Profile, provider, query string, matches []matching.Match, assessments map[string]*ai.FitAssessment, now time.Time) *Report {
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, Entry{Match: m, AI: assessments[m.Posting.ID]})
	}
	return &Report{
		GeneratedAt: now.UTC(),
		Provider:    provider,
		Query:       query,
		Profile:     profile,
		Entries:     entries,
	}
}

func (r *Report) Len() int {
	return len(r.Entries)
}

// ByCompany groups entries under "Company (source)" keys.
func (r *Report) ByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, e := range r.Entries {
		p := e.Posting
		key := fmt.Sprintf("%s (%s)", p.Company, p.Source)
		row := map[string]string{
			"title":    p.Title,
			"score":    strconv.Itoa(e.Score),
			"url":      p.ApplyURL,
			"location": p.Location,
			"salary":   p.Salary.String(),
			"reasons":  strings.Join(e.Reasons, "; "),
		}
		if e.AI != nil {
			row["ai_fit"] = strconv.FormatBool(e.AI.Fit)
			row["ai_score"] = strconv.FormatFloat(e.AI.Score, 'f', 2, 64)
			if e.AI.Reason != "" {
				row["ai_reason"] = e.AI.Reason
			}
			if e.AI.Error != "" {
				row["ai_error"] = e.AI.Error
			}
		}
		report[key] = append(report[key], row)
	}
	return report
}

// Companies returns the ByCompany keys in alphabetical order.
func (r *Report) Companies() []string {
	grouped := r.ByCompany()
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DumpToTmpFile writes the report as indented JSON into a new temporary file and
// returns its name.
func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
