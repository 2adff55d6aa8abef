package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/logging"
)

// envPrefix is the prefix of every recognized environment variable.
const envPrefix = "MD2SITE_"

// dotEnvFile is loaded from the working directory when present.
const dotEnvFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // MD2SITE_CONFIG: config file name or path

	// I/O
	InputDir     string // MD2SITE_INPUT_DIR: notes directory
	OutputDir    string // MD2SITE_OUTPUT_DIR: output directory
	Template     string // MD2SITE_TEMPLATE: page template path or set name
	StaticDir    string // MD2SITE_STATIC_DIR: static files directory
	WorkspaceDir string // MD2SITE_WORKSPACE_DIR: persistent mirror directory
	AssetPath    string // MD2SITE_ASSET_PATH: custom template sets

	// Site
	SiteName string // MD2SITE_SITE_NAME
	SiteURL  string // MD2SITE_SITE_URL

	// Build
	Workers int // MD2SITE_WORKERS: parallel workers

	// Media
	MediaDir       string // MD2SITE_MEDIA_DIR: media subdirectory of the output
	MediaProcessor string // MD2SITE_MEDIA_PROCESSOR: native, mogrify, none

	LogLevel string // MD2SITE_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid MD2SITE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2SITE_CONFIG":          true,
	"MD2SITE_INPUT_DIR":       true,
	"MD2SITE_OUTPUT_DIR":      true,
	"MD2SITE_TEMPLATE":        true,
	"MD2SITE_STATIC_DIR":      true,
	"MD2SITE_WORKSPACE_DIR":   true,
	"MD2SITE_ASSET_PATH":      true,
	"MD2SITE_SITE_NAME":       true,
	"MD2SITE_SITE_URL":        true,
	"MD2SITE_WORKERS":         true,
	"MD2SITE_MEDIA_DIR":       true,
	"MD2SITE_MEDIA_PROCESSOR": true,
	logging.EnvLogLevel:       true,
}

// loadDotEnv loads dir/.env into the process environment. Variables already
// set keep their value. A missing file is not an error.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, dotEnvFile)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MD2SITE_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("MD2SITE_CONFIG"),
		InputDir:       os.Getenv("MD2SITE_INPUT_DIR"),
		OutputDir:      os.Getenv("MD2SITE_OUTPUT_DIR"),
		Template:       os.Getenv("MD2SITE_TEMPLATE"),
		StaticDir:      os.Getenv("MD2SITE_STATIC_DIR"),
		WorkspaceDir:   os.Getenv("MD2SITE_WORKSPACE_DIR"),
		AssetPath:      os.Getenv("MD2SITE_ASSET_PATH"),
		SiteName:       os.Getenv("MD2SITE_SITE_NAME"),
		SiteURL:        os.Getenv("MD2SITE_SITE_URL"),
		MediaDir:       os.Getenv("MD2SITE_MEDIA_DIR"),
		MediaProcessor: os.Getenv("MD2SITE_MEDIA_PROCESSOR"),
		LogLevel:       os.Getenv(logging.EnvLogLevel),
	}

	// Parse int for workers
	if workers := os.Getenv("MD2SITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2SITE_* variables.
// Helps catch typos like MD2SITE_OUTPUT instead of MD2SITE_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overlays set environment variables onto cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Input.Dir, env.InputDir)
	setString(&cfg.Output.Dir, env.OutputDir)
	setString(&cfg.Input.Template, env.Template)
	setString(&cfg.Input.Static, env.StaticDir)
	setString(&cfg.Workspace.Dir, env.WorkspaceDir)
	setString(&cfg.Assets.BasePath, env.AssetPath)
	setString(&cfg.Site.Name, env.SiteName)
	setString(&cfg.Site.URL, env.SiteURL)
	setString(&cfg.Media.Dir, env.MediaDir)
	setString(&cfg.Media.Processor, env.MediaProcessor)
	if env.Workers > 0 {
		cfg.Build.Workers = env.Workers
	}
}

// setString overwrites *dst with value when value is non-empty.
func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
