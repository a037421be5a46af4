package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/config"
	hskgLogger "github.com/soundprediction/hskg/pkg/logger"
	"github.com/soundprediction/hskg/pkg/storage"
	"github.com/soundprediction/hskg/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// set up by PersistentPreRunE for every subcommand
	appConfig      *config.Config
	appLogger      *slog.Logger
	closeTelemetry func() error

	rootCmd = &cobra.Command{
		Use:   "hskg",
		Short: "hskg: Hybrid Semantic Knowledge Graph builder",
		Long: `hskg links user experience feedback to design reference material in a
hybrid knowledge graph. Items that share a category are joined by symbolic
edges and items with similar embeddings by similarity edges.

Graphs can be built from CSV feedback, design text and YAML item files,
stored in memory, sqlite, postgres, badger or neo4j, and served over HTTP.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hskg.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "color", "log format (color, text, json)")
	rootCmd.PersistentFlags().String("storage-type", "", "storage backend (memory, sqlite, postgres, badger, neo4j)")
	rootCmd.PersistentFlags().String("storage-dsn", "", "postgres connection string or sqlite path")
	rootCmd.PersistentFlags().String("embedding-provider", "", "embedding provider (openai, embedeverything, hashing)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hskg")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	base := hskgLogger.New(cfg.Log.Level, cfg.Log.Format)
	handler, closer, err := telemetry.NewHandler(base.Handler(), cfg.Telemetry)
	if err != nil {
		base.Warn("Error tracking disabled", "error", err)
		handler, closer = base.Handler(), func() error { return nil }
	}

	appConfig = cfg
	appLogger = slog.New(handler)
	closeTelemetry = closer
	slog.SetDefault(appLogger)

	cmd.SetContext(telemetry.WithRequestSource(cmd.Context(), "cli"))
	return nil
}

func teardown(*cobra.Command, []string) error {
	if closeTelemetry == nil {
		return nil
	}
	err := closeTelemetry()
	closeTelemetry = nil
	return err
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage-type") {
		v, _ := flags.GetString("storage-type")
		cfg.Storage.Type = storage.StorageType(v)
	}
	if flags.Changed("storage-dsn") {
		cfg.Storage.DSN, _ = flags.GetString("storage-dsn")
	}
	if flags.Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = flags.GetString("embedding-provider")
	}
}

// newClient opens the configured client. Callers must Close it.
func newClient(ctx context.Context) (*hskg.Client, error) {
	client, err := hskg.NewClientFromConfig(ctx, appConfig, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	return client, nil
}
