package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-md2site/internal/media"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	Runner    media.CommandRunner // used by the mogrify processor
	DotEnvDir string              // directory searched for .env; empty = working directory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Runner: &media.ExecRunner{},
	}
}
