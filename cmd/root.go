package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/ai/gemini"
	"github.com/spigell/jobscout/internal/logger"
	"github.com/spigell/jobscout/internal/matching"
	"github.com/spigell/jobscout/internal/search"
	"github.com/spigell/jobscout/internal/search/adzuna"
	"github.com/spigell/jobscout/internal/search/headhunter"
	"github.com/spigell/jobscout/internal/search/jsearch"
)

const (
	app = "jobscout"
)

type Config struct {
	Resume      string           `mapstructure:"resume"`
	Location    string           `mapstructure:"location"`
	Query       string           `mapstructure:"query"`
	Vocabulary  string           `mapstructure:"vocabulary"`
	ExcludeFile string           `mapstructure:"exclude-file"`
	Search      *SearchConfig    `mapstructure:"search" validate:"required"`
	Scoring     *ScoringConfig   `mapstructure:"scoring" validate:"required"`
	Filters     *FiltersConfig   `mapstructure:"filters"`
	Providers   *ProvidersConfig `mapstructure:"providers"`
	AI          *AIConfig        `mapstructure:"ai"`
}

type SearchConfig struct {
	// Providers lists provider names in priority order.
	Providers  []string      `mapstructure:"providers" validate:"omitempty,unique,dive,oneof=jsearch adzuna headhunter"`
	MaxResults int           `mapstructure:"max-results" validate:"min=1,max=100"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type ScoringConfig struct {
	// MinScore has no default. Matches scoring below it are dropped.
	MinScore *int              `mapstructure:"min-score" validate:"required,min=0,max=100"`
	Weights  *matching.Weights `mapstructure:"weights"`
}

type FiltersConfig struct {
	RemoteOnly       bool     `mapstructure:"remote-only"`
	EmploymentTypes  []string `mapstructure:"employment-types"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
}

type ProvidersConfig struct {
	JSearch    jsearch.Config   `mapstructure:"jsearch"`
	Adzuna     adzuna.Config    `mapstructure:"adzuna"`
	Headhunter HeadhunterConfig `mapstructure:"headhunter"`
}

type HeadhunterConfig struct {
	headhunter.Config `mapstructure:",squash"`
	TokenFile         string `mapstructure:"token-file"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score" validate:"gte=0,lte=1"`
	Gemini          *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKey       string                 `mapstructure:"api-key"`
	APIKeyFile   string                 `mapstructure:"api-key-file"`
	Model        string                 `mapstructure:"model"`
	MaxRetries   int                    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int                    `mapstructure:"max-log-length" validate:"gte=0"`
	Prompt       gemini.PromptOverrides `mapstructure:"prompt"`
}

var defaultProviders = []string{jsearch.Name, adzuna.Name, headhunter.Name}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout extracts a profile from a resume and finds matching jobs across several job boards",
	}

	validate = newValidator()
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"providers.headhunter.token-file": headhunter.EnvTokenFile,
		"ai.gemini.api-key-file":          "GEMINI_API_KEY_FILE",
		"exclude-file":                    "JOBSCOUT_EXCLUDE_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("search.providers", defaultProviders)
	viper.SetDefault("search.max-results", 10)
	viper.SetDefault("search.timeout", search.DefaultTimeout)
	viper.SetDefault("providers.headhunter.max-pages", 1)
	viper.SetDefault("providers.headhunter.page-delay", time.Second)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.max-retries", 3)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func newLogger(cmd *cobra.Command) *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		File:   viper.GetString("log-file"),
		Fields: []zap.Field{zap.String("command", cmd.Name())},
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func initConfig() {
	// Credentials may live in a .env file next to the config.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Only run needs a config file. The other commands work from flags and environment.
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && runCmd.CalledAs() == "" {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	return config, validateConfig(config)
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg := fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag())
			if fe.Param() != "" {
				msg += " (" + fe.Param() + ")"
			}
			msgs = append(msgs, msg)
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	if config.Scoring.Weights != nil {
		if err := config.Scoring.Weights.Validate(); err != nil {
			return fmt.Errorf("invalid config: scoring.weights: %w", err)
		}
	}
	return nil
}

// newValidator reports fields by their config keys rather than Go names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}
