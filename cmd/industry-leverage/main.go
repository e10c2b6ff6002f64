// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the industry-leverage CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/industry-leverage/internal/logging"
	"github.com/pdiddy/industry-leverage/internal/secrets"
	"github.com/pdiddy/industry-leverage/internal/xbrl"
)

// version is set at build time via ldflags.
var version = "dev"

// exitRateLimited is the exit status when the API throttles a run.
const exitRateLimited = 2

var (
	// loadedSecrets holds credentials from .env and .secrets/.
	loadedSecrets secrets.Secrets

	logger = logrus.New()
)

// rootCmd is the base command for the industry-leverage CLI.
var rootCmd = &cobra.Command{
	Use:   "industry-leverage",
	Short: "Industry leverage ratios from XBRL filings",
	Long: `industry-leverage builds industry-level leverage ratios for the peers of
corporate spin-offs. Each stage is a subcommand:

  classify    map spin-off tickers to SIC codes
  discover    find the 10-Q/10-K filings of each industry and quarter
  ingest      extract balance-sheet concepts from every filing (resumable)
  ratios      aggregate debt-to-assets and debt-to-equity medians
  export-sic  write the ticker/SIC reference spreadsheet

pipeline runs them all in order and resumes after the last completed step.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		envFile, _ := cmd.Flags().GetString("env-file")
		s, err := secrets.Load(secretsDir, envFile)
		if err != nil {
			return err
		}
		loadedSecrets = s

		l, err := logging.New(viper.GetString(keyLogLevel), viper.GetString(keyLogFile), os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		if keys := s.Keys(); len(keys) > 0 {
			logger.WithField("keys", keys).Debug("loaded secrets")
		}
		return bindFlags(cmd)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./industry-leverage.yaml or ~/.config/industry-leverage/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of one-value secret files")
	pf.String("env-file", ".env", "dotenv file with credentials")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-file", "", "also append logs to this file")

	viper.BindPFlag(keyLogLevel, pf.Lookup("log-level"))
	viper.BindPFlag(keyLogFile, pf.Lookup("log-file"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("industry-leverage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "industry-leverage"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("INDUSTRY_LEVERAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, xbrl.ErrRateLimited) {
			stop()
			os.Exit(exitRateLimited)
		}
		os.Exit(1)
	}
}
