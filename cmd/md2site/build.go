package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/logging"
	"github.com/alnah/go-md2site/internal/media"
	"github.com/alnah/go-md2site/internal/workspace"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage   = errors.New("invalid usage")
	ErrNoInput = errors.New("no notes directory specified")
	ErrEnvFile = errors.New("invalid .env file")
)

// defaultConfigName is loaded when no config is given and one of
// config.SearchPaths(defaultConfigName) exists.
const defaultConfigName = "site"

// Build stages, in order.
const (
	stagePrepare  = "prepare"
	stageGenerate = "generate"
	stageMedia    = "media"
	stageCommit   = "commit"
)

// buildReport summarizes one successful build.
type buildReport struct {
	Output   string
	Pages    int
	Assets   int
	Static   int
	Images   int
	Warnings int // unresolved links dropped from pages
	Duration time.Duration
}

// siteBuilder runs the prepare, generate, media and commit stages.
// Each Build uses a fresh workspace and reloads the template, so a builder
// can be reused by serve.
type siteBuilder struct {
	cfg       *config.Config
	genOpts   []md2site.Option
	processor media.Processor // nil skips the media stage
	logger    *zap.Logger
	now       func() time.Time
}

// newSiteBuilder checks the template and creates the media processor for cfg.
func newSiteBuilder(cfg *config.Config, env *Environment, logger *zap.Logger) (*siteBuilder, error) {
	opts := generatorOptions(cfg, logger)
	if _, err := md2site.NewGenerator(opts...); err != nil {
		return nil, err
	}
	proc, err := newProcessor(cfg.Media, env.Runner)
	if err != nil {
		return nil, err
	}
	return &siteBuilder{cfg: cfg, genOpts: opts, processor: proc, logger: logger, now: env.Now}, nil
}

// generatorOptions maps the configuration onto generator options.
func generatorOptions(cfg *config.Config, logger *zap.Logger) []md2site.Option {
	opts := []md2site.Option{
		md2site.WithSite(cfg.Site.Name, cfg.Site.URL),
		md2site.WithStrict(cfg.Build.Strict),
		md2site.WithAllowHTML(cfg.Build.AllowHTML),
		md2site.WithWorkers(cfg.Build.Workers),
		md2site.WithContentExtensions(cfg.Input.Extensions...),
		md2site.WithAssetPath(cfg.Assets.BasePath),
		md2site.WithLogger(logger),
	}
	if tmpl := cfg.Input.Template; tmpl != "" {
		if isTemplateFile(tmpl) {
			opts = append(opts, md2site.WithTemplateFile(tmpl))
		} else {
			opts = append(opts, md2site.WithTemplateSet(tmpl))
		}
	}
	return opts
}

// isTemplateFile reports whether the template setting names a file rather
// than a template set.
func isTemplateFile(tmpl string) bool {
	return fileutil.IsFilePath(tmpl) || strings.HasSuffix(strings.ToLower(tmpl), ".html")
}

// newProcessor returns the configured media processor, nil for "none".
func newProcessor(cfg config.MediaConfig, runner media.CommandRunner) (media.Processor, error) {
	switch cfg.Processor {
	case config.ProcessorNone:
		return nil, nil
	case config.ProcessorMogrify:
		p := media.NewCommandProcessor(cfg.MaxWidth, cfg.MaxHeight, cfg.Quality)
		if runner != nil {
			p.Runner = runner
		}
		if err := p.Available(); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return media.NewNativeProcessor(cfg.MaxWidth, cfg.MaxHeight, cfg.Quality), nil
	}
}

// Build runs every stage. The output directory is replaced only when all
// stages succeeded.
func (b *siteBuilder) Build(ctx context.Context) (*buildReport, error) {
	start := b.now()

	gen, err := md2site.NewGenerator(b.genOpts...)
	if err != nil {
		return nil, err
	}

	ws := workspace.New(b.cfg.Input.Dir, b.cfg.Output.Dir,
		workspace.WithMirrorDir(b.cfg.Workspace.Dir),
		workspace.WithLogger(b.logger))
	defer func() {
		if err := ws.Cleanup(); err != nil {
			b.logger.Warn("workspace cleanup failed", zap.Error(err))
		}
	}()

	b.logger.Debug("preparing workspace", logging.Stage(stagePrepare))
	if err := ws.Prepare(ctx); err != nil {
		return nil, &md2site.StageError{Stage: stagePrepare, Err: err}
	}

	b.logger.Debug("generating pages", logging.Stage(stageGenerate))
	result, err := gen.Generate(ctx, md2site.Workspace{
		SourceDir: ws.MirrorDir(),
		OutputDir: ws.StagingDir(),
		StaticDir: b.cfg.Input.Static,
	})
	if err != nil {
		return nil, &md2site.StageError{Stage: stageGenerate, Err: err}
	}

	images := 0
	if b.processor != nil {
		mediaDir := b.cfg.Media.Dir
		if mediaDir == "" {
			mediaDir = config.DefaultMediaDir
		}
		dir := filepath.Join(ws.StagingDir(), filepath.FromSlash(mediaDir))
		b.logger.Debug("processing media", logging.Stage(stageMedia), logging.Path(mediaDir))
		images, err = media.ProcessDir(ctx, dir, b.processor, md2site.ResolvePoolSize(b.cfg.Build.Workers))
		if err != nil {
			return nil, &md2site.StageError{Stage: stageMedia, Err: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ws.Commit(); err != nil {
		return nil, &md2site.StageError{Stage: stageCommit, Err: err}
	}

	report := &buildReport{
		Output:   b.cfg.Output.Dir,
		Pages:    len(result.Pages),
		Assets:   len(result.Assets),
		Static:   len(result.Static),
		Images:   images,
		Duration: b.now().Sub(start),
	}
	for _, p := range result.Pages {
		report.Warnings += len(p.UnresolvedLinks)
	}
	return report, nil
}

// printReport writes the one-line build summary.
func printReport(w io.Writer, r *buildReport) {
	fmt.Fprintf(w, "Built %d pages, %d assets, %d static files into %s (%d images processed) in %s\n",
		r.Pages, r.Assets, r.Static, r.Output, r.Images, r.Duration.Round(time.Millisecond))
	if r.Warnings > 0 {
		fmt.Fprintf(w, "%d unresolved links removed (use --strict to fail instead)\n", r.Warnings)
	}
}

// runBuild implements the build command.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, envCfg, err := resolveConfig(flags, positional, env)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common, envCfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	builder, err := newSiteBuilder(cfg, env, logger)
	if err != nil {
		return err
	}
	report, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	if !flags.common.quiet {
		printReport(env.Stdout, report)
	}
	return nil
}

// resolveConfig loads the configuration with precedence
// CLI flags > env vars > config file > defaults, then validates it.
func resolveConfig(flags *buildFlags, positional []string, env *Environment) (*config.Config, *envConfig, error) {
	if len(positional) > 1 {
		return nil, nil, fmt.Errorf("%w: expected at most one notes directory, got %d", ErrUsage, len(positional))
	}

	if err := loadDotEnv(env.DotEnvDir); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEnvFile, err)
	}
	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg := config.DefaultConfig()
	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" && defaultConfigExists() {
		name = defaultConfigName
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if len(positional) == 1 {
		cfg.Input.Dir = positional[0]
	}

	if cfg.Input.Dir == "" {
		return nil, nil, ErrNoInput
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, envCfg, nil
}

func defaultConfigExists() bool {
	for _, p := range config.SearchPaths(defaultConfigName) {
		if fileutil.FileExists(p) {
			return true
		}
	}
	return false
}

// mergeFlags applies CLI flags to cfg. Strings override when non-empty;
// booleans and numbers override when given explicitly.
func mergeFlags(flags *buildFlags, cfg *config.Config) {
	setString(&cfg.Output.Dir, flags.output)
	setString(&cfg.Input.Template, flags.template)
	setString(&cfg.Assets.BasePath, flags.assetPath)
	setString(&cfg.Input.Static, flags.static)
	setString(&cfg.Workspace.Dir, flags.workspace)
	setString(&cfg.Site.Name, flags.site.name)
	setString(&cfg.Site.URL, flags.site.url)
	setString(&cfg.Media.Dir, flags.media.dir)
	setString(&cfg.Media.Processor, flags.media.processor)

	if flags.set["strict"] {
		cfg.Build.Strict = flags.strict
	}
	if flags.set["allow-html"] {
		cfg.Build.AllowHTML = flags.allowHTML
	}
	if flags.set["workers"] {
		cfg.Build.Workers = flags.workers
	}
	if flags.media.disabled {
		cfg.Media.Processor = config.ProcessorNone
	}
}

// newLogger builds the stderr logger: -v means debug, -q means warn,
// otherwise MD2SITE_LOG_LEVEL or info.
func newLogger(w io.Writer, f commonFlags, envLevel string) *zap.Logger {
	level := logging.ParseLevel(envLevel)
	switch {
	case f.verbose:
		level = zapcore.DebugLevel
	case f.quiet:
		level = zapcore.WarnLevel
	}
	return logging.New(w, level)
}
