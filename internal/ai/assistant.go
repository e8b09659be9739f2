// Package ai defines the optional language-model assessment of a profile against a posting.
package ai

import (
	"context"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/resume"
)

// FitAssessment is advisory. It never changes the computed match score.
type FitAssessment struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Error  string  `json:"error,omitempty"`
	Raw    string  `json:"-"`
}

type Matcher interface {
	Evaluate(ctx context.Context, profile *resume.Profile, posting *jobs.Posting) (*FitAssessment, error)
}
