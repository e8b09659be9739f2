package matching

import (
	"fmt"
	"sort"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/resume"
)

// Rank scores every posting, drops matches below cutoff and orders the rest by score.
// Equal scores keep the order the postings were given in.
func (s *Scorer) Rank(p resume.Profile, postings []jobs.Posting, cutoff int) ([]Match, error) {
	if cutoff < 0 || cutoff > 100 {
		return nil, fmt.Errorf("cutoff must be within [0,100], got %d", cutoff)
	}

	matches := make([]Match, 0, len(postings))
	for _, job := range postings {
		m := s.Score(p, job)
		if m.Score < cutoff {
			continue
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// Postings unwraps the postings of matches, preserving order.
func Postings(matches []Match) []jobs.Posting {
	out := make([]jobs.Posting, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Posting)
	}
	return out
}
