// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// XBRLConfig holds settings for the XBRL US API.
type XBRLConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root (default https://api.xbrl.us).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// RequestsPerMinute paces outbound API calls. Zero disables pacing.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`

	// Platform is sent with the password grant (default "go").
	Platform string `json:"platform" yaml:"platform"`
}

// ClassifyConfig holds settings for the ticker -> SIC stage.
type ClassifyConfig struct {
	XBRL XBRLConfig `json:"xbrl" yaml:"xbrl"`

	// TickersFile is the input CSV with Spinoff and Date columns.
	TickersFile string `json:"tickers_file" yaml:"tickers_file"`

	// OutputFile receives the ticker -> SIC JSON mapping.
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// DiscoveryConfig holds settings for the report discovery stage.
type DiscoveryConfig struct {
	// DatabaseURL is a Postgres connection string for the XBRL US public
	// database. When empty it is assembled from Host, Port, Name and the
	// DB_USER / DB_PASSWORD secrets.
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	Name string `json:"name" yaml:"name"`

	// TickersFile is the input CSV with Spinoff and Date columns.
	TickersFile string `json:"tickers_file" yaml:"tickers_file"`

	// SICFile is the ticker -> SIC mapping produced by classify.
	SICFile string `json:"sic_file" yaml:"sic_file"`

	// OutputFile receives the ordered report group mapping.
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// IngestConfig holds settings for the ingestion stage.
type IngestConfig struct {
	XBRL XBRLConfig `json:"xbrl" yaml:"xbrl"`

	// GroupsFile is the ordered report group mapping.
	GroupsFile string `json:"groups_file" yaml:"groups_file"`

	// DatabasePath is the SQLite result store.
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// CheckpointPath is the resumable progress file.
	CheckpointPath string `json:"checkpoint_path" yaml:"checkpoint_path"`

	// VocabularyFile optionally overrides the tracked concepts.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty"`

	// ProgressEvery prints a progress line after this many reports (default 100).
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`

	// TokenRefreshAfter is the token age that forces re-authentication (default 55m).
	TokenRefreshAfter time.Duration `json:"token_refresh_after" yaml:"token_refresh_after"`

	// MetricsFile, when set, receives Prometheus text-format run metrics.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// RatioConfig holds settings for the ratio aggregation stage.
type RatioConfig struct {
	DatabasePath   string `json:"database_path" yaml:"database_path"`
	GroupsFile     string `json:"groups_file" yaml:"groups_file"`
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty"`
	OutputFile     string `json:"output_file" yaml:"output_file"`
}

// SICExportConfig holds settings for the ticker/SIC spreadsheet export.
type SICExportConfig struct {
	SICFile    string `json:"sic_file" yaml:"sic_file"`
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Classify  ClassifyConfig  `json:"classify" yaml:"classify"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Ratios    RatioConfig     `json:"ratios" yaml:"ratios"`
	SICExport SICExportConfig `json:"sic_export" yaml:"sic_export"`
	Log       LogConfig       `json:"log" yaml:"log"`

	// ProgressFile records the last completed pipeline step.
	ProgressFile string `json:"progress_file" yaml:"progress_file"`
}
