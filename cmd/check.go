package cmd

import (
	"context"
	"log"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-radar/internal/logger"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and print the filter and rule status",
	Run: func(_ *cobra.Command, _ []string) {
		check()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	engine, profile := newEngine(config, logger)

	for _, f := range engine.Config().FactorWeights() {
		logger.Info("factor", zap.String("name", f.Name), zap.Float64("weight", f.Weight))
	}

	filters := prepareFilters(ctx, config, engine, profile, false, logger)
	if err := filters.Validate(); err != nil {
		logger.Fatal("invalid filter configuration", zap.Error(err))
	}

	for _, status := range filters.Describe() {
		fields := []zap.Field{
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
		}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}

		keys := make([]string, 0, len(status.Details))
		for k := range status.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, zap.String(k, status.Details[k]))
		}

		logger.Info("filter", fields...)
	}

	logger.Info("configuration is valid", zap.Int("inputs", len(config.Inputs)))
}
