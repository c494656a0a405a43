package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/config"
)

// envPrefix marks the environment variables read by tex2pdf.
const envPrefix = "TEX2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // TEX2PDF_CONFIG: config file name or path
	Engine     string // TEX2PDF_ENGINE: engine binary
	Timeout    string // TEX2PDF_TIMEOUT: engine timeout, validated with the config
	PageSize   string // TEX2PDF_PAGE_SIZE: preset key
	Template   string // TEX2PDF_TEMPLATE: template name or path
	OutputDir  string // TEX2PDF_OUTPUT_DIR: default output directory
	AssetPath  string // TEX2PDF_ASSET_PATH: custom template directory
	LogFormat  string // TEX2PDF_LOG_FORMAT: console or json
}

// knownEnvVars lists valid TEX2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEX2PDF_CONFIG":     true,
	"TEX2PDF_ENGINE":     true,
	"TEX2PDF_TIMEOUT":    true,
	"TEX2PDF_PAGE_SIZE":  true,
	"TEX2PDF_TEMPLATE":   true,
	"TEX2PDF_OUTPUT_DIR": true,
	"TEX2PDF_ASSET_PATH": true,
	"TEX2PDF_LOG_FORMAT": true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: getenv("TEX2PDF_CONFIG"),
		Engine:     getenv("TEX2PDF_ENGINE"),
		Timeout:    getenv("TEX2PDF_TIMEOUT"),
		PageSize:   getenv("TEX2PDF_PAGE_SIZE"),
		Template:   getenv("TEX2PDF_TEMPLATE"),
		OutputDir:  getenv("TEX2PDF_OUTPUT_DIR"),
		AssetPath:  getenv("TEX2PDF_ASSET_PATH"),
		LogFormat:  getenv("TEX2PDF_LOG_FORMAT"),
	}
}

// unknownEnvVars returns unrecognized TEX2PDF_* variable names.
// Helps catch typos like TEX2PDF_PAGESIZE instead of TEX2PDF_PAGE_SIZE.
func unknownEnvVars(environ []string) []string {
	var unknown []string
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// warnUnknownEnvVars prints a warning per unrecognized TEX2PDF_* variable.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, name := range unknownEnvVars(environ) {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overrides config file values with set environment variables.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIfSet(&cfg.Engine.Binary, env.Engine)
	setIfSet(&cfg.Engine.Timeout, env.Timeout)
	setIfSet(&cfg.Page.Size, env.PageSize)
	setIfSet(&cfg.Document.Template, env.Template)
	setIfSet(&cfg.Output.DefaultDir, env.OutputDir)
	setIfSet(&cfg.Assets.BasePath, env.AssetPath)
	setIfSet(&cfg.Log.Format, env.LogFormat)
}

// setIfSet assigns value to field when value is non-empty.
func setIfSet(field *string, value string) {
	if value != "" {
		*field = value
	}
}
