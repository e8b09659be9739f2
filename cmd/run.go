package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/ai"
	"github.com/spigell/jobscout/internal/ai/gemini"
	"github.com/spigell/jobscout/internal/document"
	"github.com/spigell/jobscout/internal/filtering"
	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/logger"
	"github.com/spigell/jobscout/internal/matching"
	"github.com/spigell/jobscout/internal/report"
	"github.com/spigell/jobscout/internal/resume"
	"github.com/spigell/jobscout/internal/search"
	"github.com/spigell/jobscout/internal/secrets"
)

const (
	PromptShow                = "Show matches"
	PromptBrowse              = "Browse matches"
	PromptReportByCompanies   = "Report by companies"
	PromptMatchesToFile       = "Dump matches to file"
	PromptExcel               = "Export matches to Excel"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptExcludeOne          = "Add to exclude file"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Parse the resume, search every configured provider and rank the jobs found",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "resume PDF to match against")
	runCmd.Flags().StringP("location", "l", "", "preferred job location, e.g. \"Remote\" or \"Berlin\"")
	runCmd.Flags().StringP("query", "q", "", "search text. Default is built from the top resume skills")
	runCmd.Flags().BoolP("auto-approve", "y", false, "print the ranked matches and exit without prompting")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	runCmd.Flags().StringP("excel", "x", "", "write the ranked matches to this Excel file")

	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("location", runCmd.Flags().Lookup("location"))
	viper.BindPFlag("query", runCmd.Flags().Lookup("query"))
	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger(cmd)

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err),
			zap.String("hint", "scoring.min-score is required and must be within 0..100"),
		)
	}

	logger.Info("starting the jobscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redactedConfig(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.Resume) == "" {
		logger.Fatal("resume file is required", zap.String("hint", "pass --resume or set 'resume' in the configuration file"))
	}

	vocab, err := loadVocabulary(config.Vocabulary)
	if err != nil {
		logger.Fatal("loading vocabulary", zap.Error(err))
	}

	profile, err := extractProfile(config.Resume, config.Location, document.New(logger), resume.New(vocab, logger))
	if err != nil {
		fields := []zap.Field{zap.String("file", config.Resume), zap.Error(err)}
		var formatErr *document.FormatError
		if errors.As(err, &formatErr) {
			fields = append(fields, zap.String("hint", formatErr.Hint()))
		}
		logger.Fatal("extracting resume profile", fields...)
	}

	query := strings.TrimSpace(config.Query)
	if query == "" {
		query = profile.SearchQuery()
	}

	providers, err := buildProviders(config, vocab, logger)
	if err != nil {
		logger.Fatal("preparing providers", zap.Error(err))
	}

	logger.Info("starting the search", zap.String("query", query), zap.String("location", profile.Preferred()))

	orchestrator := search.NewOrchestrator(logger, config.Search.Timeout, providers...)
	result := orchestrator.SearchWithFallback(ctx, query, profile.Preferred(), config.Search.MaxResults)
	if !result.OK() {
		logger.Error("job search failed",
			zap.String("kind", string(result.Failure.Kind)),
			zap.String("reason", result.Failure.Message),
			zap.String("hint", "configure at least one provider, see below or run 'jobscout providers'"),
		)
		if result.Failure.Guidance != nil {
			fmt.Fprintln(os.Stderr, result.Failure.Guidance.String())
		}
		os.Exit(1)
	}

	logger.Info("getting jobs", zap.String("provider", result.Provider), zap.Int("count", len(result.Jobs)))

	matches, err := rank(config.Scoring, profile, result.Jobs)
	if err != nil {
		logger.Fatal("ranking jobs", zap.Error(err))
	}

	if len(matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs reached the minimum score"), zap.Int("min_score", *config.Scoring.MinScore))
		return
	}

	filters := prepareFilters(ctx, config, &profile, logger)
	matches, assessments, err := filters.RunFilters(ctx, matches)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if len(matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	rep := report.New(profile, result.Provider, query, matches, assessments, time.Now())

	if path, _ := cmd.Flags().GetString("excel"); path != "" {
		if err := handleAction(PromptExcel, logger, config, rep, path); err != nil {
			logger.Fatal("exporting matches", zap.Error(err))
		}
	}

	if auto, _ := cmd.Flags().GetBool("auto-approve"); auto {
		printMatches(os.Stdout, rep)
		return
	}

	for {
		logger.Info("current list of matches", zap.Int("count", rep.Len()))

		_, action, err := actionPrompt(config).Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, rep, ""); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if rep.Len() == 0 {
			logger.Info("exiting", zap.String("reason", "no matches left"))
			return
		}
	}
}

func rank(cfg *ScoringConfig, profile resume.Profile, postings []jobs.Posting) ([]matching.Match, error) {
	scorer := matching.NewScorer()
	if cfg.Weights != nil {
		var err error
		if scorer, err = matching.NewScorerWithWeights(*cfg.Weights); err != nil {
			return nil, err
		}
	}
	return scorer.Rank(profile, postings, *cfg.MinScore)
}

func actionPrompt(config *Config) *promptui.Select {
	items := []string{PromptShow, PromptBrowse, PromptReportByCompanies, PromptMatchesToFile, PromptExcel}
	if config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	items = append(items, PromptExit)

	return &promptui.Select{
		Label: "What next?",
		Items: items,
		Size:  len(items),
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, rep *report.Report, excelPath string) error {
	switch action {
	case PromptShow:
		printMatches(os.Stdout, rep)
		return nil
	case PromptBrowse:
		return browse(logger, config, rep)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(rep.ByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", rep.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := rep.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExcel:
		if excelPath == "" {
			excelPath = fmt.Sprintf("%s-matches-%s.xlsx", app, rep.GeneratedAt.Format("20060102-150405"))
		}
		filename, err := rep.WriteExcel(excelPath)
		if err != nil {
			return fmt.Errorf("export to excel: %w", err)
		}
		logger.Info("exported matches to excel", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return exclude(logger, config.ExcludeFile, rep, nil)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// browse lets the user pick single matches to read in full or to exclude.
func browse(logger *zap.Logger, config *Config, rep *report.Report) error {
	for {
		items := make([]string, 0, rep.Len()+1)
		for _, e := range rep.Entries {
			items = append(items, fmt.Sprintf("%s [%d] %s / %s / %s", e.Posting.ID, e.Score, e.Posting.Title, e.Posting.Company, e.Posting.Location))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		entry := rep.Entries[idx]
		printEntry(os.Stdout, idx+1, entry)

		if config.ExcludeFile == "" {
			continue
		}

		confirm := promptui.Select{Label: "Action", Items: []string{PromptBack, PromptExcludeOne}}
		if _, choice, err := confirm.Run(); err != nil {
			return err
		} else if choice == PromptExcludeOne {
			if err := exclude(logger, config.ExcludeFile, rep, []string{entry.Posting.ID}); err != nil {
				return err
			}
		}

		if rep.Len() == 0 {
			return nil
		}
	}
}

// exclude appends the given posting IDs, or every match when ids is nil, to the
// exclude file and drops them from the report.
func exclude(logger *zap.Logger, path string, rep *report.Report, ids []string) error {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	var postings []jobs.Posting
	kept := make([]report.Entry, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		if ids == nil || selected[e.Posting.ID] {
			postings = append(postings, e.Posting)
			continue
		}
		kept = append(kept, e)
	}

	added, err := jobs.AppendExcluded(path, jobs.ToExcluded(postings, time.Now()))
	if err != nil {
		return err
	}
	rep.Entries = kept

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("added", added))
	return nil
}

func printMatches(w io.Writer, rep *report.Report) {
	fmt.Fprintf(w, "%d matches from %s for %q\n\n", rep.Len(), rep.Provider, rep.Query)
	for i, e := range rep.Entries {
		printEntry(w, i+1, e)
	}
}

func printEntry(w io.Writer, n int, e report.Entry) {
	p := e.Posting
	fmt.Fprintf(w, "%d. [%d] %s at %s\n", n, e.Score, p.Title, p.Company)
	fmt.Fprintf(w, "   %s | %s | %s | posted %d days ago\n", p.Location, p.EmploymentType, p.Salary, p.PostedDaysAgo)
	for _, reason := range e.Reasons {
		fmt.Fprintf(w, "   - %s\n", reason)
	}
	if e.AI != nil {
		if e.AI.Error != "" {
			fmt.Fprintf(w, "   AI: assessment failed: %s\n", e.AI.Error)
		} else {
			fmt.Fprintf(w, "   AI: fit=%t score=%.2f %s\n", e.AI.Fit, e.AI.Score, e.AI.Reason)
		}
	}
	if p.ApplyURL != "" {
		fmt.Fprintf(w, "   %s\n", p.ApplyURL)
	}
	fmt.Fprintln(w)
}

func prepareFilters(ctx context.Context, config *Config, profile *resume.Profile, logger *zap.Logger) *filtering.Filtering {
	fc := config.Filters
	if fc == nil {
		fc = &FiltersConfig{}
	}

	aiFilter, err := prepareAIFilter(ctx, config, profile, logger)
	if err != nil {
		logger.Warn("skipping AI filter", zap.Error(err))
	}

	steps := []filtering.Filter{
		filtering.NewExcludeFile(config.ExcludeFile, logger),
		filtering.NewExcludedCompanies(fc.ExcludeCompanies, logger),
		filtering.NewRemoteOnly(fc.RemoteOnly),
		filtering.NewEmploymentType(fc.EmploymentTypes),
	}
	if aiFilter != nil {
		steps = append(steps, aiFilter)
	}

	f := filtering.New(steps, logger)
	for _, status := range f.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}
	return f
}

func prepareAIFilter(ctx context.Context, config *Config, profile *resume.Profile, logger *zap.Logger) (filtering.Filter, error) {
	cfg := config.AI
	if cfg == nil || !cfg.Enabled {
		return filtering.NewAIFit(&filtering.AIFitFilterConfig{Enabled: false}, nil), nil
	}

	matcher, err := newAIMatcher(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}

	return filtering.NewAIFit(&filtering.AIFitFilterConfig{
		Enabled:         true,
		Provider:        cfg.Provider,
		Model:           cfg.Gemini.Model,
		MinimumFitScore: cfg.MinimumFitScore,
	}, &filtering.AIFitFilterDeps{
		Logger:      logger,
		Matcher:     matcher,
		Profile:     profile,
		ExcludeFile: config.ExcludeFile,
	}), nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithAIFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries,
		aiLogger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)),
	)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcher := gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength,
		aiLogger.With(zap.Float64("minimum_fit_score", minScore)),
	)
	matcher.SetPromptOverrides(cfg.Gemini.Prompt)

	return matcher, nil
}

// redactedConfig hides credentials before the config is logged.
func redactedConfig(config *Config) Config {
	c := *config
	if c.Providers != nil {
		p := *c.Providers
		p.JSearch.APIKey = mask(p.JSearch.APIKey)
		p.Adzuna.AppKey = mask(p.Adzuna.AppKey)
		p.Headhunter.Token = mask(p.Headhunter.Token)
		c.Providers = &p
	}
	if c.AI != nil && c.AI.Gemini != nil {
		a := *c.AI
		g := *a.Gemini
		g.APIKey = mask(g.APIKey)
		a.Gemini = &g
		c.AI = &a
	}
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
