package main

// Notes:
// - Tests in this file use t.Setenv and therefore cannot run in parallel.
// - loadDotEnv never overrides variables already set, so tests that load a
//   .env file unset the variable first; t.Setenv restores it afterwards.

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2site/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("MD2SITE_CONFIG", "work")
	t.Setenv("MD2SITE_INPUT_DIR", "notes")
	t.Setenv("MD2SITE_OUTPUT_DIR", "public")
	t.Setenv("MD2SITE_TEMPLATE", "page.html")
	t.Setenv("MD2SITE_SITE_NAME", "Notes")
	t.Setenv("MD2SITE_SITE_URL", "https://example.org")
	t.Setenv("MD2SITE_WORKERS", "3")
	t.Setenv("MD2SITE_MEDIA_PROCESSOR", "none")
	t.Setenv("MD2SITE_LOG_LEVEL", "debug")

	cfg := loadEnvConfig()

	if cfg.ConfigPath != "work" || cfg.InputDir != "notes" || cfg.OutputDir != "public" {
		t.Errorf("paths = %+v", cfg)
	}
	if cfg.Template != "page.html" {
		t.Errorf("Template = %q, want %q", cfg.Template, "page.html")
	}
	if cfg.SiteName != "Notes" || cfg.SiteURL != "https://example.org" {
		t.Errorf("site = %q %q", cfg.SiteName, cfg.SiteURL)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.MediaProcessor != "none" || cfg.LogLevel != "debug" {
		t.Errorf("MediaProcessor = %q, LogLevel = %q", cfg.MediaProcessor, cfg.LogLevel)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	for _, value := range []string{"abc", "0", "-2"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("MD2SITE_WORKERS", value)
			if got := loadEnvConfig().Workers; got != 0 {
				t.Errorf("Workers = %d, want 0 for %q", got, value)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("MD2SITE_OUTPUT", "public")
	t.Setenv("MD2SITE_OUTPUT_DIR", "public")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	if !strings.Contains(buf.String(), "MD2SITE_OUTPUT ") {
		t.Errorf("expected warning for MD2SITE_OUTPUT, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "MD2SITE_OUTPUT_DIR") {
		t.Errorf("known variable reported: %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestLoadDotEnv - .env file loading
// ---------------------------------------------------------------------------

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("MD2SITE_SITE_URL", "")
	t.Setenv("MD2SITE_SITE_NAME", "From Shell")
	if err := os.Unsetenv("MD2SITE_SITE_URL"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	dir := t.TempDir()
	content := "MD2SITE_SITE_URL=https://notes.example.org\nMD2SITE_SITE_NAME=From File\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := loadDotEnv(dir); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("MD2SITE_SITE_URL"); got != "https://notes.example.org" {
		t.Errorf("MD2SITE_SITE_URL = %q, want value from .env", got)
	}
	if got := os.Getenv("MD2SITE_SITE_NAME"); got != "From Shell" {
		t.Errorf("MD2SITE_SITE_NAME = %q, shell value should win", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Parallel()

	if err := loadDotEnv(t.TempDir()); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MD2SITE_SITE_NAME='unterminated\n"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := loadDotEnv(dir); err == nil {
		t.Error("expected an error for a malformed .env file")
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overlay on the config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Input.Dir = "from-file"
	cfg.Site.Name = "File Name"
	cfg.Build.Workers = 2

	applyEnvConfig(&envConfig{OutputDir: "public", SiteName: "Env Name", MediaDir: "img"}, cfg)

	if cfg.Input.Dir != "from-file" {
		t.Errorf("Input.Dir = %q, unset env must not override", cfg.Input.Dir)
	}
	if cfg.Output.Dir != "public" || cfg.Site.Name != "Env Name" || cfg.Media.Dir != "img" {
		t.Errorf("env values not applied: %+v", cfg)
	}
	if cfg.Build.Workers != 2 {
		t.Errorf("Build.Workers = %d, zero env value must not override", cfg.Build.Workers)
	}
}
