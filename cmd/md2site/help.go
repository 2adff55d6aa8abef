package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Generate the site from a notes directory")
	fmt.Fprintln(w, "  serve      Build, serve locally and rebuild on changes")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2site help <command>' for details on a specific command.")
}

// printBuildFlags prints the flags shared by build and serve.
func printBuildFlags(w io.Writer) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>          Output directory (default \"output\")")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "      --static <dir>          Directory copied into the output root")
	fmt.Fprintln(w, "      --workspace <dir>       Persistent mirror directory (default: temporary)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pages:")
	fmt.Fprintln(w, "  -t, --template <s>          Page template file or template set name")
	fmt.Fprintln(w, "      --asset-path <dir>      Directory of custom template sets")
	fmt.Fprintln(w, "      --site-name <s>         Site name ({{ site_name }})")
	fmt.Fprintln(w, "      --site-url <url>        Site URL ({{ site_url }})")
	fmt.Fprintln(w, "      --strict                Fail on unresolved local links")
	fmt.Fprintln(w, "      --allow-html            Keep raw HTML from notes (sanitized)")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Media:")
	fmt.Fprintln(w, "      --media-dir <dir>       Media directory inside the output (\".\" = whole output)")
	fmt.Fprintln(w, "      --media-processor <s>   Image processor: native, mogrify, none")
	fmt.Fprintln(w, "      --no-media              Skip media processing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site build [notes-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a static site: every note becomes an HTML page at the same")
	fmt.Fprintln(w, "relative path, other files are copied, then images are resized.")
	fmt.Fprintln(w, "The output directory is replaced only when the whole build succeeds.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  notes-dir    Notes directory (optional if config has input.dir)")
	fmt.Fprintln(w)
	printBuildFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site serve [notes-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site, serve the output over HTTP without caching and")
	fmt.Fprintln(w, "rebuild whenever the notes, template or static files change.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>      Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w, "      --no-watch              Do not rebuild on changes")
	fmt.Fprintln(w)
	printBuildFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2site version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2site help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
