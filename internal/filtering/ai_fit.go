package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/ai"
	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/matching"
	"github.com/spigell/jobscout/internal/resume"
)

type AIFitFilterConfig struct {
	Enabled         bool
	Provider        string
	Model           string
	MinimumFitScore float64
}

type AIFitFilterDeps struct {
	Logger  *zap.Logger
	Matcher ai.Matcher
	Profile *resume.Profile
	// ExcludeFile, when set, receives postings the model rejected.
	ExcludeFile string
}

type aiFitFilter struct {
	enabled     bool
	reason      string
	config      *AIFitFilterConfig
	deps        *AIFitFilterDeps
	now         func() time.Time
	assessments map[string]*ai.FitAssessment
}

// NewAIFit creates the AI-based filtering step. Postings the model cannot assess are kept.
func NewAIFit(cfg *AIFitFilterConfig, deps *AIFitFilterDeps) Filter {
	if cfg == nil {
		cfg = &AIFitFilterConfig{}
	}
	return &aiFitFilter{
		enabled: cfg.Enabled,
		config:  cfg,
		deps:    deps,
		now:     time.Now,
	}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return f.enabled }

func (f *aiFitFilter) Validate() error {
	if f.deps == nil || f.deps.Matcher == nil {
		return fmt.Errorf("ai matcher is not initialized: filter is not usable")
	}
	if f.deps.Profile == nil {
		return fmt.Errorf("profile is required for AI evaluation")
	}
	provider := strings.ToLower(strings.TrimSpace(f.config.Provider))
	if provider != "" && provider != "gemini" {
		return fmt.Errorf("unsupported ai provider: %s", f.config.Provider)
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, matches []matching.Match) ([]matching.Match, Step, error) {
	logger := f.deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	initial := len(matches)
	approved := make([]matching.Match, 0, initial)
	var rejected []jobs.Posting
	f.assessments = make(map[string]*ai.FitAssessment, initial)

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return matches, Step{}, err
		}

		posting := m.Posting
		assessment, err := f.deps.Matcher.Evaluate(ctx, f.deps.Profile, &posting)
		if err != nil {
			logger.Warn("AI evaluation failed",
				zap.String("job_id", posting.ID),
				zap.Error(err),
			)
			f.assessments[posting.ID] = &ai.FitAssessment{Error: err.Error()}
			approved = append(approved, m)
			continue
		}
		f.assessments[posting.ID] = assessment

		if !assessment.Fit {
			logger.Info("posting rejected by AI provider",
				zap.String("job_id", posting.ID),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			rejected = append(rejected, posting)
			continue
		}

		logger.Info("posting approved by AI",
			zap.String("job_id", posting.ID),
			zap.Float64("ai_score", assessment.Score),
		)
		approved = append(approved, m)
	}

	if path := strings.TrimSpace(f.deps.ExcludeFile); path != "" && len(rejected) > 0 {
		added, err := jobs.AppendExcluded(path, jobs.ToExcluded(rejected, f.now()))
		if err != nil {
			logger.Warn("failed to append rejected postings to exclude file", zap.Error(err))
		} else {
			logger.Info("appended rejected postings to exclude file",
				zap.String("path", path),
				zap.Int("added", added),
			)
		}
	}

	logger.Info("AI filtering completed",
		zap.Int("initial_jobs", initial),
		zap.Int("approved_jobs", len(approved)),
	)

	return approved, stepOf(initial, approved), nil
}

func (f *aiFitFilter) Assessments() map[string]*ai.FitAssessment {
	if f.assessments == nil {
		return map[string]*ai.FitAssessment{}
	}
	return f.assessments
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{
		"minimum_fit_score": strconv.FormatFloat(f.config.MinimumFitScore, 'f', 2, 64),
	}
	if f.config.Model != "" {
		details["model"] = f.config.Model
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
