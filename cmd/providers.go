package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/search"
	"github.com/spigell/jobscout/internal/search/adzuna"
	"github.com/spigell/jobscout/internal/search/headhunter"
	"github.com/spigell/jobscout/internal/search/jsearch"
	"github.com/spigell/jobscout/internal/secrets"
	"github.com/spigell/jobscout/internal/vocabulary"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show job search providers in priority order and how to configure them",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger(cmd)

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		providers, err := buildProviders(config, vocabulary.Default(), logger)
		if err != nil {
			logger.Fatal("preparing providers", zap.Error(err))
		}

		describeProviders(os.Stdout, providers)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

// buildProviders creates the adapters named in search.providers, in that order.
// Credentials come from the config, a token file or the environment.
func buildProviders(config *Config, vocab *vocabulary.Vocabulary, logger *zap.Logger) ([]search.Provider, error) {
	pc := config.Providers
	if pc == nil {
		pc = &ProvidersConfig{}
	}

	names := defaultProviders
	if config.Search != nil && len(config.Search.Providers) > 0 {
		names = config.Search.Providers
	}

	providers := make([]search.Provider, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case jsearch.Name:
			cfg := pc.JSearch
			key, err := secrets.Optional(secrets.Source{Name: "rapidapi key", Value: cfg.APIKey, Env: jsearch.EnvAPIKey})
			if err != nil {
				return nil, err
			}
			cfg.APIKey = key
			providers = append(providers, jsearch.New(cfg, nil, vocab, logger))

		case adzuna.Name:
			cfg := pc.Adzuna
			id, err := secrets.Optional(secrets.Source{Name: "adzuna app id", Value: cfg.AppID, Env: adzuna.EnvAppID})
			if err != nil {
				return nil, err
			}
			key, err := secrets.Optional(secrets.Source{Name: "adzuna app key", Value: cfg.AppKey, Env: adzuna.EnvAppKey})
			if err != nil {
				return nil, err
			}
			cfg.AppID, cfg.AppKey = id, key
			providers = append(providers, adzuna.New(cfg, nil, vocab, logger))

		case headhunter.Name:
			cfg := pc.Headhunter.Config
			token, err := secrets.Optional(secrets.Source{
				Name:  "headhunter token",
				Value: cfg.Token,
				File:  pc.Headhunter.TokenFile,
				Env:   headhunter.EnvToken,
			})
			if err != nil {
				return nil, err
			}
			cfg.Token = token
			providers = append(providers, headhunter.New(cfg, nil, vocab, logger))

		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return providers, nil
}

func describeProviders(w io.Writer, providers []search.Provider) {
	for i, p := range providers {
		setup := p.Setup()
		status := "configured"
		if !p.Configured() {
			status = "not configured, missing " + strings.Join(setup.Missing, ", ")
		}

		fmt.Fprintf(w, "%d. %s (%s): %s\n", i+1, setup.Title, p.Name(), status)
		if setup.Description != "" {
			fmt.Fprintf(w, "   %s\n", setup.Description)
		}
		if !p.Configured() {
			fmt.Fprintf(w, "   Sign up: %s\n", setup.SignupURL)
			if setup.FreeTier != "" {
				fmt.Fprintf(w, "   Free tier: %s\n", setup.FreeTier)
			}
			fmt.Fprintf(w, "   Credentials: %s\n", strings.Join(setup.Credentials, ", "))
		}
	}
}
