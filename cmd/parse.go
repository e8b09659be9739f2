package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/jobscout/internal/document"
	"github.com/spigell/jobscout/internal/resume"
	"github.com/spigell/jobscout/internal/vocabulary"
)

const defaultParseConcurrency = 4

type parsed struct {
	File    string          `json:"file"`
	Profile *resume.Profile `json:"profile,omitempty"`
	Error   string          `json:"error,omitempty"`
	Hint    string          `json:"hint,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <resume.pdf>...",
	Short: "Extract candidate profiles from resume PDFs and print them as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		vocab, err := loadVocabulary(viper.GetString("vocabulary"))
		if err != nil {
			logger.Fatal("loading vocabulary", zap.Error(err))
		}

		location, _ := cmd.Flags().GetString("location")
		limit, _ := cmd.Flags().GetInt("concurrency")

		results, err := parseResumes(cmd.Context(), args, location, limit, vocab, logger)
		if err != nil {
			logger.Fatal("parsing resumes", zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			logger.Fatal("writing profiles", zap.Error(err))
		}

		failed := 0
		for _, r := range results {
			if r.Error != "" {
				failed++
			}
		}
		if failed == len(results) {
			logger.Fatal("no resume could be parsed", zap.Int("files", len(results)))
		}
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("location", "l", "", "preferred job location recorded in every profile")
	parseCmd.Flags().IntP("concurrency", "c", defaultParseConcurrency, "how many resumes to parse at once")
	parseCmd.Flags().String("vocabulary", "", "a YAML vocabulary file replacing the built-in skills list")

	viper.BindPFlag("vocabulary", parseCmd.Flags().Lookup("vocabulary"))
}

// parseResumes extracts every file concurrently. Per-file failures are reported in the
// results; only cancellation fails the batch. Results keep the order of paths.
func parseResumes(ctx context.Context, paths []string, location string, limit int, vocab *vocabulary.Vocabulary, logger *zap.Logger) ([]parsed, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = defaultParseConcurrency
	}

	normalizer := document.New(logger)
	extractor := resume.New(vocab, logger)
	results := make([]parsed, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = parseResume(path, location, normalizer, extractor, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseResume(path, location string, normalizer *document.Normalizer, extractor *resume.Extractor, logger *zap.Logger) parsed {
	result := parsed{File: path}

	profile, err := extractProfile(path, location, normalizer, extractor)
	if err != nil {
		result.Error = err.Error()
		var formatErr *document.FormatError
		if errors.As(err, &formatErr) {
			result.Hint = formatErr.Hint()
		}
		logger.Warn("resume could not be parsed", zap.String("file", path), zap.Error(err))
		return result
	}

	result.Profile = &profile
	return result
}

func extractProfile(path, location string, normalizer *document.Normalizer, extractor *resume.Extractor) (resume.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return resume.Profile{}, fmt.Errorf("reading resume: %w", err)
	}

	text, err := normalizer.Normalize(raw)
	if err != nil {
		return resume.Profile{}, err
	}

	return extractor.Extract(text).WithPreferredLocation(location), nil
}

func loadVocabulary(path string) (*vocabulary.Vocabulary, error) {
	if path == "" {
		return vocabulary.Default(), nil
	}
	return vocabulary.Load(path)
}
