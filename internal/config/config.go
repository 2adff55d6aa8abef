package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrFieldInvalid    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxSiteNameLength  = 100
	MaxURLLength       = 2048 // Browser limit
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxExtensionLength = 16
	MaxExtensions      = 16
)

// Numeric limits.
const (
	MaxWorkers        = 16
	MaxImageDimension = 20000
	MaxQuality        = 100
)

// Media processor names.
const (
	ProcessorNative  = "native"
	ProcessorMogrify = "mogrify"
	ProcessorNone    = "none"
)

// Defaults applied by DefaultConfig.
const (
	DefaultOutputDir = "output"
	DefaultMediaDir  = "media"
	DefaultMaxSize   = 1920
	DefaultQuality   = 82
)

// DefaultExtensions are the content file extensions recognized when none are configured.
var DefaultExtensions = []string{".md", ".markdown"}

// Config holds all configuration for one site build.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Site      SiteConfig      `yaml:"site"`
	Build     BuildConfig     `yaml:"build"`
	Media     MediaConfig     `yaml:"media"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// InputConfig defines the source tree and page template.
type InputConfig struct {
	Dir        string   `yaml:"dir"`        // Notes directory (empty = must specify)
	Template   string   `yaml:"template"`   // Page template path or embedded name (empty = "default")
	Static     string   `yaml:"static"`     // Copied into the output root (empty = none)
	Extensions []string `yaml:"extensions"` // Content extensions
}

// OutputConfig defines the output destination.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// SiteConfig defines site-wide template values.
type SiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// BuildConfig defines page generation options.
type BuildConfig struct {
	Strict    bool `yaml:"strict"`    // Unresolved local links fail the build
	AllowHTML bool `yaml:"allowHTML"` // Keep raw HTML from notes (sanitized)
	Workers   int  `yaml:"workers"`   // 0 = auto
}

// MediaConfig defines the media post-processing pass.
type MediaConfig struct {
	Dir       string `yaml:"dir"`       // Relative to the output root; "." = whole tree
	Processor string `yaml:"processor"` // "native", "mogrify" or "none"
	MaxWidth  int    `yaml:"maxWidth"`
	MaxHeight int    `yaml:"maxHeight"`
	Quality   int    `yaml:"quality"` // JPEG quality 1-100
}

// WorkspaceConfig defines where the mirrored source lives.
type WorkspaceConfig struct {
	Dir string `yaml:"dir"` // Empty = ephemeral temp dir
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., the CLI after applying flags).
func (c *Config) Validate() error {
	paths := []struct{ name, value string }{
		{"input.dir", c.Input.Dir},
		{"input.template", c.Input.Template},
		{"input.static", c.Input.Static},
		{"output.dir", c.Output.Dir},
		{"media.dir", c.Media.Dir},
		{"workspace.dir", c.Workspace.Dir},
		{"assets.basePath", c.Assets.BasePath},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}

	if len(c.Input.Extensions) > MaxExtensions {
		return fmt.Errorf("%w: input.extensions: %d entries (max %d)", ErrFieldInvalid, len(c.Input.Extensions), MaxExtensions)
	}
	for i, ext := range c.Input.Extensions {
		field := fmt.Sprintf("input.extensions[%d]", i)
		if err := validateFieldLength(field, ext, MaxExtensionLength); err != nil {
			return err
		}
		if err := fileutil.ValidateExtension(ext); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFieldInvalid, field, err)
		}
	}

	if err := validateFieldLength("site.name", c.Site.Name, MaxSiteNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.url", c.Site.URL, MaxURLLength); err != nil {
		return err
	}
	if c.Site.URL != "" && !fileutil.IsURL(c.Site.URL) {
		return fmt.Errorf("%w: site.url: %q must start with http:// or https://", ErrFieldInvalid, c.Site.URL)
	}

	if err := validateRange("build.workers", c.Build.Workers, 0, MaxWorkers); err != nil {
		return err
	}

	if c.Media.Dir != "" {
		clean := path.Clean(filepath.ToSlash(c.Media.Dir))
		if path.IsAbs(clean) || filepath.IsAbs(c.Media.Dir) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("%w: media.dir: %q must stay inside the output directory", ErrFieldInvalid, c.Media.Dir)
		}
	}
	switch c.Media.Processor {
	case "", ProcessorNative, ProcessorMogrify, ProcessorNone:
	default:
		return fmt.Errorf("%w: media.processor: %q (must be %s, %s or %s)",
			ErrFieldInvalid, c.Media.Processor, ProcessorNative, ProcessorMogrify, ProcessorNone)
	}
	if err := validateRange("media.maxWidth", c.Media.MaxWidth, 0, MaxImageDimension); err != nil {
		return err
	}
	if err := validateRange("media.maxHeight", c.Media.MaxHeight, 0, MaxImageDimension); err != nil {
		return err
	}
	if err := validateRange("media.quality", c.Media.Quality, 0, MaxQuality); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateRange(fieldName string, value, lo, hi int) error {
	if value < lo || value > hi {
		return fmt.Errorf("%w: %s: must be between %d and %d, got %d", ErrFieldInvalid, fieldName, lo, hi, value)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{Extensions: append([]string(nil), DefaultExtensions...)},
		Output: OutputConfig{Dir: DefaultOutputDir},
		Media: MediaConfig{
			Dir:       DefaultMediaDir,
			Processor: ProcessorNative,
			MaxWidth:  DefaultMaxSize,
			MaxHeight: DefaultMaxSize,
			Quality:   DefaultQuality,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
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

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order:
// name.yaml and name.yml in the current directory, then in ~/.config/md2site/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "md2site", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
