// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the femcite CLI: ask the femininities
// library a research question and get a citation-grounded answer with a
// formatted reference list.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/femcite/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the femcite CLI.
var rootCmd = &cobra.Command{
	Use:   "femcite",
	Short: "Femininities citation assistant",
	Long: `femcite answers research questions from a curated library of femininities
scholarship. Each answer cites only the retrieved sources, using (Author, Year)
in-text citations, and comes with a reference list in APA, MLA, or Chicago
style. The transcript and a BibTeX file are written after every answer.

Use ask for a single question, chat for an interactive session, search to
inspect what the library returns, and serve to run the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return secrets.LoadDotEnv(envFile)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./femcite.yaml or ~/.config/femcite/femcite.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of API key files")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file with API keys")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose development logging")
}

func initConfig() {
	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("femcite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "femcite"))
		}
	}

	viper.SetEnvPrefix("FEMCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a development logger under --verbose, otherwise a
// production logger at level.
func newLogger(cmd *cobra.Command, level zapcore.Level) (*zap.Logger, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
