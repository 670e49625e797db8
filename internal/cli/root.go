package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/athorburn/concordia/internal/model"
	"github.com/athorburn/concordia/internal/pipeline"
)

var (
	cfgFile string
	verbose bool

	dataDir     string
	llmProvider string
	llmModel    string
	noCache     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "concordia",
	Short: "Concordia - Historical consistency analysis of Lincoln-era accounts",
	Long: `Concordia measures how consistently different historical sources describe
the same events.

It runs a three-stage pipeline over primary sources (Library of Congress
documents in Lincoln's own words) and secondary sources (Project Gutenberg
books by other authors):

1. acquire  - download and normalize the corpus
2. extract  - LLM extraction of per-event claims from every document
3. judge    - pairwise LLM consistency scoring of Lincoln vs. other authors

A fourth stage, validate, runs statistical experiments (prompt robustness,
self-consistency, human alignment) to establish how much the judge's
scores can be trusted. Every stage persists its output, so interrupted
runs resume where they left off.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("concordia v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.concordia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "stage artifact directory (default: ./data)")
	rootCmd.PersistentFlags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, mock)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the fetch cache (force fresh downloads)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("llm-model"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.concordia")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CONCORDIA_*
	viper.SetEnvPrefix("CONCORDIA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration: defaults, then config
// file, then environment, then flags
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration ignored: %v\n", err)
		cfg = model.DefaultConfig()
	}

	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.Verbose = verbose

	// The API key never lives in config files
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	return cfg
}

// newLogger builds the CLI logger. Verbose switches to development output
// with debug level.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Encoding = "console"
	logCfg.EncoderConfig.TimeKey = ""
	return logCfg.Build()
}

// newPipeline wires the full pipeline for a command invocation
func newPipeline() (*pipeline.Pipeline, *zap.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	p, err := pipeline.New(buildConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}
