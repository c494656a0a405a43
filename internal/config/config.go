package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/texutil"
	"github.com/alnah/go-tex2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxArgLength      = 256  // single engine flag
	MaxArgs           = 32   // engine flags
	MaxPageSizeLength = 32   // "remarkable2"
	MaxMarginLength   = 16   // "2.54cm"
	MaxTitleLength    = 200  // section title
	MaxTimeoutLength  = 16   // "2m30s"
)

// configDirName is the directory under os.UserConfigDir searched for configs.
const configDirName = "go-tex2pdf"

// Allowed values for enumerated fields. Empty means "use the default".
var (
	validFormats    = []string{"latex", "markdown"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// Config holds all configuration for document generation.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Page     PageConfig     `yaml:"page"`
	Document DocumentConfig `yaml:"document"`
	Output   OutputConfig   `yaml:"output"`
	Assets   AssetsConfig   `yaml:"assets"`
	Log      LogConfig      `yaml:"log"`
}

// EngineConfig defines how the typesetting engine is invoked.
type EngineConfig struct {
	Binary  string   `yaml:"binary"`  // "pdflatex", "xelatex", ... (empty = pdflatex)
	Args    []string `yaml:"args"`    // replaces the default flags when set
	Timeout string   `yaml:"timeout"` // Go duration, e.g. "90s" (empty = 2m)
}

// PageConfig defines page geometry.
type PageConfig struct {
	Size   string `yaml:"size"`   // preset key: "a4", "letter", ...
	Margin string `yaml:"margin"` // TeX dimension: "2cm", "1in"
}

// DocumentConfig defines document content options.
type DocumentConfig struct {
	Title    string `yaml:"title"`    // section title (empty = input file name)
	Template string `yaml:"template"` // template name or .tex path
	Format   string `yaml:"format"`   // "latex" or "markdown" (empty = by extension)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded templates
}

// LogConfig defines CLI log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	// Engine
	if err := validateFieldLength("engine.binary", c.Engine.Binary, MaxPathLength); err != nil {
		return err
	}
	if len(c.Engine.Args) > MaxArgs {
		return fmt.Errorf("%w: engine.args (%d entries, max %d)", ErrFieldTooLong, len(c.Engine.Args), MaxArgs)
	}
	for i, arg := range c.Engine.Args {
		if err := validateFieldLength(fmt.Sprintf("engine.args[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("engine.timeout", c.Engine.Timeout, MaxTimeoutLength); err != nil {
		return err
	}
	if _, err := c.Engine.TimeoutDuration(); err != nil {
		return err
	}

	// Page
	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.margin", c.Page.Margin, MaxMarginLength); err != nil {
		return err
	}
	if c.Page.Margin != "" && !texutil.IsDimension(c.Page.Margin) {
		return fmt.Errorf("%w: page.margin %q (want a TeX dimension such as 2cm or 1in)", ErrInvalidValue, c.Page.Margin)
	}

	// Document
	if err := validateFieldLength("document.title", c.Document.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.template", c.Document.Template, MaxPathLength); err != nil {
		return err
	}
	if err := validateEnum("document.format", c.Document.Format, validFormats); err != nil {
		return err
	}

	// Paths
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	// Log
	if err := validateEnum("log.level", c.Log.Level, validLogLevels); err != nil {
		return err
	}
	return validateEnum("log.format", c.Log.Format, validLogFormats)
}

// TimeoutDuration parses Timeout. An empty Timeout yields 0, meaning the
// library default.
func (e EngineConfig) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: engine.timeout %q: %v", ErrInvalidValue, e.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: engine.timeout must be positive, got %s", ErrInvalidValue, e.Timeout)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts an empty value or one of allowed, case-insensitively.
func validateEnum(fieldName, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns the configuration used when no file is given.
// Engine fields are left empty so the library defaults apply.
func DefaultConfig() *Config {
	return &Config{
		Page:     PageConfig{Size: "a4", Margin: "2cm"},
		Document: DocumentConfig{Template: "article"},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// fillDefaults sets empty fields that have a DefaultConfig value.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	setIfEmpty(&c.Page.Size, def.Page.Size)
	setIfEmpty(&c.Page.Margin, def.Page.Margin)
	setIfEmpty(&c.Document.Template, def.Document.Template)
	setIfEmpty(&c.Log.Level, def.Log.Level)
	setIfEmpty(&c.Log.Format, def.Log.Format)
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-tex2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, configDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
