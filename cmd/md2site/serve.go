package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/preview"
)

// runServe implements the serve command: build, serve the output and
// rebuild on changes until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, envCfg, err := resolveConfig(&flags.build, positional, env)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.build.common, envCfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	builder, err := newSiteBuilder(cfg, env, logger)
	if err != nil {
		return err
	}

	opts := []preview.Option{preview.WithLogger(logger)}
	if flags.addr != "" {
		opts = append(opts, preview.WithAddr(flags.addr))
	}
	if !flags.noWatch {
		opts = append(opts, preview.WithWatch(watchPaths(cfg)...))
	}

	quiet := flags.build.common.quiet
	server := preview.New(cfg.Output.Dir, func(ctx context.Context) error {
		report, err := builder.Build(ctx)
		if err != nil {
			return err
		}
		if !quiet {
			printReport(env.Stdout, report)
		}
		return nil
	}, opts...)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchPaths lists what a rebuild depends on: the notes, the template file,
// the static directory and custom template sets.
func watchPaths(cfg *config.Config) []string {
	paths := []string{cfg.Input.Dir}
	if tmpl := cfg.Input.Template; tmpl != "" && isTemplateFile(tmpl) && fileutil.FileExists(tmpl) {
		paths = append(paths, filepath.Clean(tmpl))
	}
	for _, dir := range []string{cfg.Input.Static, cfg.Assets.BasePath} {
		if dir != "" && fileutil.DirExists(dir) {
			paths = append(paths, dir)
		}
	}
	return paths
}
