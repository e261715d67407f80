package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-radar/internal/ai"
	"github.com/spigell/job-radar/internal/ai/gemini"
	"github.com/spigell/job-radar/internal/filtering"
	"github.com/spigell/job-radar/internal/jobs"
	"github.com/spigell/job-radar/internal/logger"
	"github.com/spigell/job-radar/internal/matching"
	"github.com/spigell/job-radar/internal/secrets"
)

const (
	PromptShowMatches         = "Show ranked matches"
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptReportByCompanies   = "Report by companies"
	PromptManualReview        = "Review records in manual mode"
	PromptAppendToExcludeFile = "Append all records to exclude file"
	PromptRecordsToFile       = "Dump records to file"
	PromptExcludeRecord       = "Exclude this record"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptShowMatches, PromptReportByCompanies, PromptManualReview, PromptRecordsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score job records and review the matches",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceP("input", "i", nil, "files with raw job records (JSON array or JSON Lines)")
	runCmd.Flags().BoolP("keep-filtered", "k", false, "keep records below the minimum match score in the results")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation, print the ranked matches and exit")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with records to exclude. Default is unset.")
	runCmd.Flags().Int("workers", 0, "number of scoring workers (default is the number of CPUs)")

	viper.BindPFlag("inputs", runCmd.Flags().Lookup("input"))
	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("workers", runCmd.Flags().Lookup("workers"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-radar", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if len(config.Inputs) == 0 {
		logger.Fatal("at least one input file is required",
			zap.String("hint", "pass --input or set inputs in the configuration file"),
		)
	}

	engine, profile := newEngine(config, logger)

	records, err := loadRecords(config.Inputs, logger)
	if err != nil {
		logger.Fatal("loading records", zap.Error(err))
	}

	if records.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no records found"))
		return
	}

	keepFiltered, _ := cmd.Flags().GetBool("keep-filtered")
	filters := prepareFilters(ctx, config, engine, profile, keepFiltered, logger)

	filtered, err := filters.RunFilters(ctx, records)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	records = filtered

	if records.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no records left after filters"))
		return
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		showMatches(logger, records)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of records", zap.Int("count", records.Len()))

		if err := handleAction(action, logger, config, records); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, records *jobs.Records) error {
	switch action {
	case PromptShowMatches:
		showMatches(logger, records)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptManualReview:
		return manualReview(logger, config, records)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(records.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("records count", records.Len()))
		return nil
	case PromptRecordsToFile:
		filename, err := records.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showMatches(logger *zap.Logger, records *jobs.Records) {
	for i, rec := range records.Items {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String("record", rec.Label()),
			zap.String("url", rec.URL),
		}
		if a := rec.Assessment; a != nil {
			fields = append(fields,
				zap.Float64("final_score", a.FinalScore),
				zap.Bool("passed", a.Passed),
				zap.Strings("penalties", a.Penalties),
				zap.Strings("reasons", a.Reasons),
			)
		}
		if r := rec.Review; r != nil {
			if r.Error != "" {
				fields = append(fields, zap.String("ai_error", r.Error))
			} else {
				fields = append(fields, zap.Float64("ai_score", r.Score), zap.String("ai_reason", r.Reason))
			}
		}
		logger.Info("match", fields...)
	}
	logger.Info("ranked matches", zap.Int("count", records.Len()))
}

func manualReview(logger *zap.Logger, config *Config, records *jobs.Records) error {
	for {
		items := make([]string, 0, records.Len()+2)
		for _, rec := range records.Items {
			score := "-"
			if rec.Assessment != nil {
				score = fmt.Sprintf("%.2f", rec.Assessment.FinalScore)
			}
			items = append(items, fmt.Sprintf("%s %s / %s / %s", rec.ID, score, rec.Label(), rec.URL))
		}

		excludeFile := strings.TrimSpace(config.ExcludeFile)
		if excludeFile != "" && records.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		recordPrompt := promptui.Select{
			Label: "Choose a record and press ENTER",
			Items: append(items, PromptBack),
			Size:  15,
		}

		index, selected, err := recordPrompt.Run()
		if err != nil {
			return err
		}

		if rec, ok := recordAt(records, index); ok {
			excluded, err := reviewRecord(logger, excludeFile, rec)
			if err != nil {
				return err
			}
			if excluded {
				removeAt(records, index)
			}
			continue
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			if err := appendToExcludeFile(excludeFile, records, "excluded in manual review"); err != nil {
				return err
			}
			logger.Info("appended to exclude file", zap.String("filename", excludeFile))
			records.Items = nil
		default:
			return fmt.Errorf("invalid choice: %s", selected)
		}
	}
}

// recordAt maps a selection index back to the record it was rendered from.
// Indexes past the records belong to the trailing menu entries.
func recordAt(records *jobs.Records, index int) (*jobs.Record, bool) {
	if index < 0 || index >= records.Len() {
		return nil, false
	}
	return records.Items[index], true
}

func removeAt(records *jobs.Records, index int) {
	records.Items = append(records.Items[:index], records.Items[index+1:]...)
}

// reviewRecord prints a record and reports whether the user excluded it.
func reviewRecord(logger *zap.Logger, excludeFile string, rec *jobs.Record) (bool, error) {
	pretty, _ := json.MarshalIndent(rec, "", "  ")
	logger.Info(string(pretty))

	if excludeFile == "" {
		return false, nil
	}

	actionPrompt := promptui.Select{
		Label: rec.Label(),
		Items: []string{PromptExcludeRecord, PromptBack},
	}
	_, action, err := actionPrompt.Run()
	if err != nil {
		return false, err
	}
	if action != PromptExcludeRecord {
		return false, nil
	}

	if err := appendToExcludeFile(excludeFile, &jobs.Records{Items: []*jobs.Record{rec}}, "excluded in manual review"); err != nil {
		return false, err
	}
	logger.Info("record appended to exclude file",
		zap.String("record", rec.Label()),
		zap.String("filename", excludeFile),
	)
	return true, nil
}

func appendToExcludeFile(path string, records *jobs.Records, reason string) error {
	excluded, err := jobs.GetExcludedFromFile(path)
	if err != nil {
		return fmt.Errorf("load excluded records: %w", err)
	}

	excluded.Append(records.ToExcluded(jobs.ExcludeActorUser, reason))

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded records: %w", err)
	}
	return nil
}

// loadRecords reads and normalizes every input file. Malformed records are
// skipped with a warning. Records without an ID get their dedup key as ID.
func loadRecords(paths []string, logger *zap.Logger) (*jobs.Records, error) {
	records := &jobs.Records{}
	skipped := 0

	for _, path := range paths {
		raw, err := jobs.LoadRaw(path)
		if err != nil {
			return nil, err
		}

		for i, item := range raw {
			rec, err := jobs.Normalize(item)
			if err != nil {
				if !errors.Is(err, jobs.ErrMalformedRecord) {
					return nil, fmt.Errorf("normalizing record %d of %q: %w", i, path, err)
				}
				logger.Warn("skipping malformed record",
					zap.String("file", path),
					zap.Int("index", i),
					zap.Error(err),
				)
				skipped++
				continue
			}

			if rec.Source == "" {
				rec.Source = filepath.Base(path)
			}
			if rec.ID == "" {
				rec.ID = jobs.DedupKey(&rec)
			}
			records.Items = append(records.Items, &rec)
		}
	}

	logger.Info("records loaded",
		zap.Int("files", len(paths)),
		zap.Int("count", records.Len()),
		zap.Int("skipped", skipped),
	)
	return records, nil
}

// newEngine compiles the matching configuration. Configuration errors stop the run.
func newEngine(config *Config, logger *zap.Logger) (*matching.Engine, *matching.Profile) {
	if config.Matching == nil {
		logger.Info("no matching section in config, using built-in tuning")
	}

	cfg, warnings, err := matching.Load(config.matchingSettings())
	if err != nil {
		logger.Fatal("invalid matching configuration", zap.Error(err))
	}
	for _, warning := range warnings {
		logger.Warn("matching configuration", zap.String("warning", warning))
	}

	profile, err := config.profile()
	if err != nil {
		logger.Fatal("invalid profile", zap.Error(err))
	}

	engine, err := matching.NewEngine(cfg, profile)
	if err != nil {
		logger.Fatal("creating matching engine", zap.Error(err))
	}

	logger.Info("matching engine ready",
		zap.Float64("minimum_match_score", cfg.MinimumMatchScore()),
		zap.Strings("rules", cfg.RuleNames()),
		zap.String("profile", profile.Name),
	)
	return engine, profile
}

func newAIReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	reviewerLogger := logger.With(zap.Float64("minimum_fit_score", cfg.MinimumFitScore))

	return gemini.NewReviewer(generator, cfg.MinimumFitScore, cfg.Gemini.MaxLogLength, reviewerLogger), nil
}

func prepareFilters(ctx context.Context, config *Config, engine *matching.Engine, profile *matching.Profile, keepFiltered bool, logger *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewExcludeFile(config.ExcludeFile, logger),
		filtering.NewExcludedCompanies(config.excludedCompanies(), logger),
		filtering.NewDedup(logger),
		filtering.NewMatch(
			&filtering.MatchFilterConfig{KeepFiltered: keepFiltered, Workers: config.Workers},
			&filtering.MatchFilterDeps{Engine: engine, Logger: logger},
		),
		prepareAIFilter(ctx, config, profile, logger),
	}

	return filtering.New(steps, logger)
}

// prepareAIFilter always returns the AI step. It is disabled when AI review is
// off or the reviewer cannot be built.
func prepareAIFilter(ctx context.Context, config *Config, profile *matching.Profile, logger *zap.Logger) filtering.Filter {
	aiCfg := config.AI
	if aiCfg == nil || !aiCfg.Enabled {
		return filtering.NewAIReview(&filtering.AIReviewFilterConfig{Enabled: false}, nil)
	}

	if aiCfg.Provider == "" {
		aiCfg.Provider = "gemini"
	}
	if aiCfg.Gemini == nil {
		aiCfg.Gemini = &GeminiConfig{}
	}
	if aiCfg.Gemini.Model == "" {
		aiCfg.Gemini.Model = "gemini-2.5-flash"
	}

	filterCfg := &filtering.AIReviewFilterConfig{
		Enabled:         true,
		Provider:        aiCfg.Provider,
		MinimumFitScore: aiCfg.MinimumFitScore,
		Gemini: &filtering.AIGeminiConfig{
			Model:        aiCfg.Gemini.Model,
			MaxRetries:   aiCfg.Gemini.MaxRetries,
			MaxLogLength: aiCfg.Gemini.MaxLogLength,
		},
	}

	summary, instructions := "", ""
	if config.Candidate != nil {
		summary, instructions = config.Candidate.Summary, config.Candidate.Instructions
	}

	deps := &filtering.AIReviewFilterDeps{
		Logger:      logger,
		Candidate:   ai.CandidateFromProfile(profile, summary, instructions),
		ExcludeFile: config.ExcludeFile,
	}

	f := filtering.NewAIReview(filterCfg, deps)

	reviewer, err := newAIReviewer(ctx, aiCfg, logger)
	if err != nil {
		logger.Warn("skipping AI review", zap.Error(err))
		f.Disable(err.Error())
		return f
	}
	deps.Reviewer = reviewer

	return f
}
