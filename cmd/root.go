package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-radar/internal/matching"
)

const (
	app       = "job-radar"
	envPrefix = "JOB_RADAR"
)

type Config struct {
	Inputs      []string           `mapstructure:"inputs" validate:"dive,required"`
	ExcludeFile string             `mapstructure:"exclude-file"`
	Workers     int                `mapstructure:"workers" validate:"gte=0"`
	Exclude     *ExcludeConfig     `mapstructure:"exclude"`
	Matching    *matching.Settings `mapstructure:"matching"`
	Profile     *matching.Profile  `mapstructure:"profile"`
	Candidate   *CandidateConfig   `mapstructure:"candidate"`
	AI          *AIConfig          `mapstructure:"ai"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

// CandidateConfig is the free-form part of what the AI reviewer sees.
// Skills, roles and salary come from the profile.
type CandidateConfig struct {
	Summary      string `mapstructure:"summary"`
	Instructions string `mapstructure:"instructions" validate:"max=2000"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score" validate:"gte=0,lte=1"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	validate = validator.New()

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-radar scores job postings against your profile and keeps the ones worth a look",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-radar.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only run and check read the config.
	if runCmd.CalledAs() == "" && checkCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Built-in defaults are enough when no config file exists at the default location.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}

// matchingSettings returns the configured settings or the built-in tuning
// when the matching section is absent.
func (c *Config) matchingSettings() matching.Settings {
	if c.Matching == nil {
		return matching.DefaultSettings()
	}
	return *c.Matching
}

func (c *Config) profile() (*matching.Profile, error) {
	p := matching.DefaultProfile()
	if c.Profile != nil {
		p = c.Profile.WithDefaults()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Config) excludedCompanies() []string {
	if c.Exclude == nil {
		return nil
	}
	return c.Exclude.Companies
}
