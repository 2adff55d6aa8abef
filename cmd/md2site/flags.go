package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags holds site-wide template values.
type siteFlags struct {
	name string
	url  string
}

// mediaFlags holds media post-processing flags.
type mediaFlags struct {
	dir       string
	processor string
	disabled  bool
}

// buildFlags holds all flags for the build command.
// serve accepts the same flags plus serveFlags.
type buildFlags struct {
	common    commonFlags
	output    string
	template  string
	assetPath string
	static    string
	workspace string
	strict    bool
	allowHTML bool
	workers   int
	site      siteFlags
	media     mediaFlags

	// set records which flags were given explicitly, so false and zero
	// values can still override the config file.
	set map[string]bool
}

// serveFlags holds the flags only the serve command has.
type serveFlags struct {
	build   buildFlags
	addr    string
	noWatch bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSiteFlags adds site flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.name, "site-name", "", "site name shown in pages")
	fs.StringVar(&f.url, "site-url", "", "site base URL")
}

// addMediaFlags adds media flags to a FlagSet.
func addMediaFlags(fs *flag.FlagSet, f *mediaFlags) {
	fs.StringVar(&f.dir, "media-dir", "", "media directory inside the output (\".\" = whole output)")
	fs.StringVar(&f.processor, "media-processor", "", "image processor: native, mogrify, none")
	fs.BoolVar(&f.disabled, "no-media", false, "skip media processing")
}

// addBuildFlags registers every build flag on fs.
func addBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.template, "template", "t", "", "page template file or template set name")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory of custom template sets")
	fs.StringVar(&f.static, "static", "", "directory copied into the output root")
	fs.StringVar(&f.workspace, "workspace", "", "persistent mirror directory (default: temporary)")
	fs.BoolVar(&f.strict, "strict", false, "fail on unresolved local links")
	fs.BoolVar(&f.allowHTML, "allow-html", false, "keep raw HTML from notes (sanitized)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	addMediaFlags(fs, &f.media)
}

// collectSet records the flags given on the command line.
func collectSet(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &buildFlags{}
	addBuildFlags(fs, f)
	fs.Usage = func() { printBuildUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.set = collectSet(fs)
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}
	addBuildFlags(fs, &f.build)
	fs.StringVar(&f.addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not rebuild on changes")
	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.build.set = collectSet(fs)
	return f, fs.Args(), nil
}
