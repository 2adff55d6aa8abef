package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/alnah/go-md2site/internal/process"
)

// ErrMogrifyNotFound indicates the ImageMagick mogrify binary is not installed.
var ErrMogrifyNotFound = errors.New("mogrify not found")

// DefaultMogrifyBinary is the command CommandProcessor runs.
const DefaultMogrifyBinary = "mogrify"

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group, killed as a whole when ctx is cancelled.
type ExecRunner struct{}

// Run starts the command and waits for it or for ctx.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...) // #nosec G204 -- binary is fixed, args are built here
	process.SetProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		process.KillProcessGroup(cmd.Process.Pid)
		<-done
		return stdout.String(), stderr.String(), ctx.Err()
	case err := <-done:
		return stdout.String(), stderr.String(), err
	}
}

// CommandProcessor resizes images with ImageMagick's mogrify:
//
//	mogrify -resize WxH> -quality Q -strip <file>
//
// The ">" flag only shrinks. It is safe for concurrent use if Runner is.
type CommandProcessor struct {
	Runner    CommandRunner
	Binary    string
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewCommandProcessor creates a CommandProcessor with a real command runner.
func NewCommandProcessor(maxWidth, maxHeight, quality int) *CommandProcessor {
	return &CommandProcessor{
		Runner:    &ExecRunner{},
		Binary:    DefaultMogrifyBinary,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
		Quality:   quality,
	}
}

// Available reports whether the binary can be found in PATH.
func (p *CommandProcessor) Available() error {
	if _, err := exec.LookPath(p.Binary); err != nil {
		return fmt.Errorf("%w: %v", ErrMogrifyNotFound, err)
	}
	return nil
}

// Args returns the mogrify arguments for path.
func (p *CommandProcessor) Args(path string) []string {
	var args []string
	if p.MaxWidth > 0 || p.MaxHeight > 0 {
		args = append(args, "-resize", dimension(p.MaxWidth)+"x"+dimension(p.MaxHeight)+">")
	}
	if p.Quality > 0 {
		args = append(args, "-quality", strconv.Itoa(p.Quality))
	}
	return append(args, "-strip", path)
}

// Process runs mogrify on path.
func (p *CommandProcessor) Process(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, stderr, err := p.Runner.Run(ctx, p.Binary, p.Args(path)...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrMogrifyNotFound, err)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%s: %s: %w", p.Binary, strings.TrimSpace(stderr), err)
	}
}

func dimension(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
