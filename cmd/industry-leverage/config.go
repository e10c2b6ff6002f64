// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/industry-leverage/internal/discovery"
	"github.com/pdiddy/industry-leverage/internal/httputil"
	"github.com/pdiddy/industry-leverage/internal/ingest"
	"github.com/pdiddy/industry-leverage/internal/xbrl"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

// Config keys. Environment variables use the INDUSTRY_LEVERAGE_ prefix
// with dots replaced by underscores.
const (
	keyLogLevel = "log.level"
	keyLogFile  = "log.file"

	keyVocabulary = "vocabulary_file"

	keyXBRLBaseURL   = "xbrl.base_url"
	keyXBRLRate      = "xbrl.requests_per_minute"
	keyXBRLTimeout   = "xbrl.timeout"
	keyXBRLPlatform  = "xbrl.platform"
	keyXBRLUserAgent = "xbrl.user_agent"

	keyPipelineProgress = "pipeline.progress_file"
)

// sectionAnnotation names the config section a command's flags bind to.
const sectionAnnotation = "config-section"

// sharedFlagKeys maps flags that several commands define onto one key.
var sharedFlagKeys = map[string]string{
	"api-base-url":        keyXBRLBaseURL,
	"requests-per-minute": keyXBRLRate,
	"timeout":             keyXBRLTimeout,
	"platform":            keyXBRLPlatform,
	"user-agent":          keyXBRLUserAgent,
	"vocabulary":          keyVocabulary,
}

func setDefaults() {
	viper.SetDefault(keyLogLevel, "info")

	viper.SetDefault(keyXBRLBaseURL, "https://api.xbrl.us")
	viper.SetDefault(keyXBRLRate, 60)
	viper.SetDefault(keyXBRLTimeout, 30*time.Second)
	viper.SetDefault(keyXBRLPlatform, "go")
	viper.SetDefault(keyXBRLUserAgent, "industry-leverage/"+version)

	viper.SetDefault("classify.tickers_file", "data/input/tickers.csv")
	viper.SetDefault("classify.output_file", "data/output/sic_codes.json")

	viper.SetDefault("discovery.host", discovery.DefaultHost)
	viper.SetDefault("discovery.port", discovery.DefaultPort)
	viper.SetDefault("discovery.name", discovery.DefaultName)
	viper.SetDefault("discovery.tickers_file", "data/input/tickers.csv")
	viper.SetDefault("discovery.sic_file", "data/output/sic_codes.json")
	viper.SetDefault("discovery.output_file", "data/output/report_groups.json")

	viper.SetDefault("ingest.groups_file", "data/output/report_groups.json")
	viper.SetDefault("ingest.database_path", "data/output/reports.db")
	viper.SetDefault("ingest.checkpoint_path", "progress/ingest.json")
	viper.SetDefault("ingest.progress_every", ingest.DefaultProgressEvery)
	viper.SetDefault("ingest.token_refresh_after", ingest.DefaultRefreshAfter)

	viper.SetDefault("ratios.database_path", "data/output/reports.db")
	viper.SetDefault("ratios.groups_file", "data/output/report_groups.json")
	viper.SetDefault("ratios.output_file", "data/output/industry_ratios.xlsx")

	viper.SetDefault("sic_export.sic_file", "data/output/sic_codes.json")
	viper.SetDefault("sic_export.output_file", "data/output/ticker_sic.xlsx")

	viper.SetDefault(keyPipelineProgress, "progress/pipeline.json")
}

// bindFlags binds the local flags of cmd to its config section, so a flag
// set on the command line beats the config file and environment.
func bindFlags(cmd *cobra.Command) error {
	section := cmd.Annotations[sectionAnnotation]
	var bindErr error
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		key, ok := sharedFlagKeys[f.Name]
		if !ok {
			if section == "" {
				return
			}
			key = section + "." + strings.ReplaceAll(f.Name, "-", "_")
		}
		if err := viper.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("binding flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// addXBRLFlags registers the API flags shared by classify and ingest.
func addXBRLFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-base-url", "https://api.xbrl.us", "XBRL US API root")
	cmd.Flags().Int("requests-per-minute", 60, "API request budget (0 = unpaced)")
	cmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().String("platform", "go", "platform value sent with the password grant")
	cmd.Flags().String("user-agent", "", "User-Agent header")
}

func xbrlConfig() types.XBRLConfig {
	return types.XBRLConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration(keyXBRLTimeout),
			UserAgent: viper.GetString(keyXBRLUserAgent),
		},
		BaseURL:           viper.GetString(keyXBRLBaseURL),
		RequestsPerMinute: viper.GetInt(keyXBRLRate),
		Platform:          viper.GetString(keyXBRLPlatform),
	}
}

func classifyConfig() types.ClassifyConfig {
	return types.ClassifyConfig{
		XBRL:        xbrlConfig(),
		TickersFile: viper.GetString("classify.tickers_file"),
		OutputFile:  viper.GetString("classify.output_file"),
	}
}

func discoveryConfig() types.DiscoveryConfig {
	return types.DiscoveryConfig{
		DatabaseURL: viper.GetString("discovery.database_url"),
		Host:        viper.GetString("discovery.host"),
		Port:        viper.GetInt("discovery.port"),
		Name:        viper.GetString("discovery.name"),
		TickersFile: viper.GetString("discovery.tickers_file"),
		SICFile:     viper.GetString("discovery.sic_file"),
		OutputFile:  viper.GetString("discovery.output_file"),
	}
}

func ingestConfig() types.IngestConfig {
	return types.IngestConfig{
		XBRL:              xbrlConfig(),
		GroupsFile:        viper.GetString("ingest.groups_file"),
		DatabasePath:      viper.GetString("ingest.database_path"),
		CheckpointPath:    viper.GetString("ingest.checkpoint_path"),
		VocabularyFile:    viper.GetString(keyVocabulary),
		ProgressEvery:     viper.GetInt("ingest.progress_every"),
		TokenRefreshAfter: viper.GetDuration("ingest.token_refresh_after"),
		MetricsFile:       viper.GetString("ingest.metrics_file"),
	}
}

func ratioConfig() types.RatioConfig {
	return types.RatioConfig{
		DatabasePath:   viper.GetString("ratios.database_path"),
		GroupsFile:     viper.GetString("ratios.groups_file"),
		VocabularyFile: viper.GetString(keyVocabulary),
		OutputFile:     viper.GetString("ratios.output_file"),
	}
}

func sicExportConfig() types.SICExportConfig {
	return types.SICExportConfig{
		SICFile:    viper.GetString("sic_export.sic_file"),
		OutputFile: viper.GetString("sic_export.output_file"),
	}
}

func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Classify:  classifyConfig(),
		Discovery: discoveryConfig(),
		Ingest:    ingestConfig(),
		Ratios:    ratioConfig(),
		SICExport: sicExportConfig(),
		Log: types.LogConfig{
			Level: viper.GetString(keyLogLevel),
			File:  viper.GetString(keyLogFile),
		},
		ProgressFile: viper.GetString(keyPipelineProgress),
	}
}

// apiClient builds the paced HTTP client and points the xbrl package at
// the configured API root.
func apiClient(cfg types.XBRLConfig) *httputil.Client {
	xbrl.SetBaseURL(cfg.BaseURL)
	c := httputil.NewClient(cfg.Timeout, cfg.RequestsPerMinute)
	c.UserAgent = cfg.UserAgent
	return c
}

func authenticator(client *httputil.Client, cfg types.XBRLConfig) *xbrl.Authenticator {
	return &xbrl.Authenticator{
		Client: client,
		Credentials: xbrl.Credentials{
			Email:        loadedSecrets.Get("XBRL_EMAIL"),
			Password:     loadedSecrets.Get("XBRL_PASSWORD"),
			ClientID:     loadedSecrets.Get("XBRL_CLIENT_ID"),
			ClientSecret: loadedSecrets.Get("XBRL_SECRET"),
		},
		Platform: cfg.Platform,
	}
}
