// Package matching scores job postings against a candidate profile.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/level"
	"github.com/spigell/jobscout/internal/resume"
)

const (
	recencyWindow = 30
	freshDays     = 3
	reasonSkills  = 3
)

// Weights of the four factors. They must add up to 100.
type Weights struct {
	Skills    float64 `mapstructure:"skills" json:"skills"`
	Seniority float64 `mapstructure:"seniority" json:"seniority"`
	Location  float64 `mapstructure:"location" json:"location"`
	Recency   float64 `mapstructure:"recency" json:"recency"`
}

var DefaultWeights = Weights{Skills: 50, Seniority: 20, Location: 15, Recency: 15}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Skills, w.Seniority, w.Location, w.Recency} {
		if v < 0 {
			return fmt.Errorf("weights must not be negative: %+v", w)
		}
	}
	if sum := w.Skills + w.Seniority + w.Location + w.Recency; math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("weights must add up to 100, got %v", sum)
	}
	return nil
}

// Factors are the per-factor values in [0,1] before weighting.
type Factors struct {
	Skills    float64 `json:"skills"`
	Seniority float64 `json:"seniority"`
	Location  float64 `json:"location"`
	Recency   float64 `json:"recency"`
}

type Match struct {
	Posting        jobs.Posting `json:"posting"`
	Score          int          `json:"score"`
	Reasons        []string     `json:"reasons"`
	MatchingSkills []string     `json:"matching_skills"`
	Factors        Factors      `json:"factors"`
}

// Scorer is a pure function of its inputs and safe for concurrent use.
type Scorer struct {
	weights Weights
}

func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights}
}

func NewScorerWithWeights(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Score computes the weighted compatibility of p and job.
func (s *Scorer) Score(p resume.Profile, job jobs.Posting) Match {
	matching, skills := skillsFactor(p.Skills, job.RequiredSkills)
	f := Factors{
		Skills:    skills,
		Seniority: seniorityFactor(p.Seniority, job.Seniority),
		Location:  locationFactor(p, job),
		Recency:   recencyFactor(job.PostedDaysAgo),
	}

	total := s.weights.Skills*f.Skills +
		s.weights.Seniority*f.Seniority +
		s.weights.Location*f.Location +
		s.weights.Recency*f.Recency

	return Match{
		Posting:        job,
		Score:          clamp(int(math.Round(total)), 0, 100),
		Reasons:        reasons(p, job, f, matching),
		MatchingSkills: matching,
		Factors:        f,
	}
}

// skillsFactor returns the required skills the candidate has, in posting order, and the
// share of distinct required skills covered.
func skillsFactor(candidate, required []string) ([]string, float64) {
	have := make(map[string]struct{}, len(candidate))
	for _, s := range candidate {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(required))
	matching := []string{}
	for _, s := range required {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := have[key]; ok {
			matching = append(matching, s)
		}
	}

	if len(seen) == 0 {
		return matching, 0
	}
	return matching, float64(len(matching)) / float64(len(seen))
}

func seniorityFactor(candidate, job level.Seniority) float64 {
	if !job.Known() || !candidate.Known() {
		return 0
	}
	switch {
	case candidate == job:
		return 1
	case candidate == level.Senior && job == level.Mid:
		return 0.8
	case candidate == level.Mid && job == level.Junior:
		return 0.6
	default:
		return 0
	}
}

// locationFactor uses plain substring checks, so "York" also matches "New York".
func locationFactor(p resume.Profile, job jobs.Posting) float64 {
	preferred := strings.ToLower(strings.TrimSpace(p.Preferred()))
	where := strings.ToLower(job.Location)

	switch {
	case job.RemoteAllowed && strings.Contains(preferred, "remote"):
		return 1
	case preferred != "" && strings.Contains(where, preferred):
		return 1
	case strings.Contains(where, "remote"):
		return 0.7
	default:
		return 0
	}
}

func recencyFactor(days int) float64 {
	if days < 0 {
		days = 0
	}
	return math.Max(0, float64(recencyWindow-days)/recencyWindow)
}

func reasons(p resume.Profile, job jobs.Posting, f Factors, matching []string) []string {
	out := []string{}

	if f.Skills > 0 {
		top := matching
		if len(top) > reasonSkills {
			top = top[:reasonSkills]
		}
		out = append(out, "Strong skills match: "+strings.Join(top, ", "))
	}

	switch {
	case f.Seniority == 1:
		out = append(out, "Perfect experience level match: "+job.Seniority.String())
	case f.Seniority > 0:
		out = append(out, fmt.Sprintf("%s experience exceeds the %s requirement", p.Seniority, job.Seniority))
	}

	switch {
	case f.Location == 1 && job.RemoteAllowed && p.PrefersRemote():
		out = append(out, "Offers remote work flexibility")
	case f.Location == 1:
		out = append(out, "Located in preferred area: "+job.Location)
	case f.Location > 0:
		out = append(out, "Remote-friendly location")
	}

	switch {
	case f.Recency > 0 && job.PostedDaysAgo <= freshDays:
		out = append(out, "Recently posted (fresh opportunity)")
	case f.Recency > 0:
		out = append(out, fmt.Sprintf("Posted %d days ago", job.PostedDaysAgo))
	}

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
