package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/logger"
)

const DefaultTimeout = 15 * time.Second

// Orchestrator tries providers sequentially in priority order.
type Orchestrator struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewOrchestrator(log *zap.Logger, timeout time.Duration, providers ...Provider) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{providers: providers, timeout: timeout, logger: log}
}

func (o *Orchestrator) Providers() []Provider {
	return append([]Provider(nil), o.providers...)
}

// SearchWithFallback returns the first non-empty provider result, truncated to
// maxResults. When every provider is unconfigured or failed the result is a failure
// carrying setup guidance. When providers answered but found nothing, the last empty
// success is returned.
func (o *Orchestrator) SearchWithFallback(ctx context.Context, query, location string, maxResults int) Result {
	q := Query{Text: query, Location: location, Page: 1, Limit: maxResults}

	var (
		attempts  []Attempt
		lastEmpty *Result
	)

	for _, p := range o.providers {
		log := logger.WithFields(o.logger, logger.ProviderFields(p.Name(), query)...)

		if !p.Configured() {
			log.Info("skipping provider without credentials", zap.Strings("missing", p.Setup().Missing))
			attempts = append(attempts, Attempt{
				Provider: p.Name(),
				Outcome:  KindNotConfigured,
				Message:  "credentials are not configured",
			})
			continue
		}

		attempt, postings := o.attempt(ctx, log, p, q)
		attempts = append(attempts, attempt)

		switch attempt.Outcome {
		case outcomeSuccess:
			if maxResults > 0 && len(postings) > maxResults {
				postings = postings[:maxResults]
			}
			return Result{Jobs: postings, Provider: p.Name(), Attempts: attempts}
		case outcomeEmpty:
			lastEmpty = &Result{Jobs: postings, Provider: p.Name()}
		}

		if ctx.Err() != nil {
			log.Warn("search cancelled, not trying further providers", zap.Error(ctx.Err()))
			break
		}
	}

	if lastEmpty != nil {
		lastEmpty.Attempts = attempts
		return *lastEmpty
	}

	guidance := buildGuidance(o.providers, attempts)
	o.logger.Warn("no job provider returned results", zap.Int("providers", len(o.providers)))
	return Result{
		Failure: &Failure{
			Kind:     KindExhausted,
			Message:  exhaustedMessage(attempts),
			Guidance: guidance,
		},
		Attempts: attempts,
	}
}

func (o *Orchestrator) attempt(ctx context.Context, log *zap.Logger, p Provider, q Query) (Attempt, []jobs.Posting) {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	postings, err := p.Search(cctx, q)
	a := Attempt{Provider: p.Name(), Duration: time.Since(start), Jobs: len(postings)}

	switch {
	case err != nil:
		a.Outcome = Classify(err)
		a.Jobs = 0
		a.Message = err.Error()
		log.Warn("provider failed, falling back", zap.String("kind", string(a.Outcome)), zap.Error(err))
		return a, nil
	case len(postings) == 0:
		a.Outcome = outcomeEmpty
		log.Info("provider returned no jobs", zap.Duration("duration", a.Duration))
	default:
		a.Outcome = outcomeSuccess
		log.Info("provider returned jobs", zap.Int("jobs", len(postings)), zap.Duration("duration", a.Duration))
	}
	return a, postings
}

func exhaustedMessage(attempts []Attempt) string {
	configured := 0
	for _, a := range attempts {
		if a.Outcome != KindNotConfigured {
			configured++
		}
	}
	if configured == 0 {
		return "no job search provider is configured"
	}
	return fmt.Sprintf("all %d configured job search providers failed", configured)
}
