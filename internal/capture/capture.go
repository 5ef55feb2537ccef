// Package capture launches an external capture program and reports its
// outcome asynchronously.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

// ErrNoCaptureApp is returned by Launch when nothing can take a picture
var ErrNoCaptureApp = errors.New("no capture application available")

// DefaultCommand is used when no capture command is configured
const DefaultCommand = "libcamera-still --nopreview -o {path}"

// Outcome is how a capture attempt ended
type Outcome int

const (
	Succeeded Outcome = iota
	Canceled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Request is one capture attempt targeting a destination file
type Request struct {
	ID   string
	Path string
	URI  string
}

// NewRequest creates a request with a fresh ID
func NewRequest(path, uri string) Request {
	return Request{
		ID:   uuid.NewString(),
		Path: path,
		URI:  uri,
	}
}

// Result answers a Request
type Result struct {
	Request Request
	Outcome Outcome
	Err     error
}

// Capturer launches a capture for a request. The returned channel receives
// exactly one Result and is then closed.
type Capturer interface {
	Launch(ctx context.Context, req Request) (<-chan Result, error)
}

// CommandCapturer runs an external program that writes a picture to the
// request path. Arguments may contain {path} and {uri} placeholders.
type CommandCapturer struct {
	Command []string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewCommandCapturer builds a capturer from a whitespace separated command line
func NewCommandCapturer(commandLine string) *CommandCapturer {
	if strings.TrimSpace(commandLine) == "" {
		commandLine = DefaultCommand
	}
	return &CommandCapturer{
		Command: strings.Fields(commandLine),
		Stdin:   os.Stdin,
		Stdout:  os.Stderr,
		Stderr:  os.Stderr,
	}
}

func (c *CommandCapturer) Launch(ctx context.Context, req Request) (<-chan Result, error) {
	if len(c.Command) == 0 {
		return nil, ErrNoCaptureApp
	}

	bin, err := exec.LookPath(c.Command[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCaptureApp, c.Command[0])
	}

	args := make([]string, 0, len(c.Command)-1)
	replacer := strings.NewReplacer("{path}", req.Path, "{uri}", req.URI)
	for _, arg := range c.Command[1:] {
		args = append(args, replacer.Replace(arg))
	}

	// a leftover picture must not pass for a fresh one
	if err := os.Remove(req.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to clear previous picture: %w", err)
	}

	results := make(chan Result, 1)
	go func() {
		defer close(results)
		results <- c.run(ctx, req, bin, args)
	}()

	slog.Debug("Capture launched", "request_id", req.ID, "command", bin, "path", req.Path)
	return results, nil
}

func (c *CommandCapturer) run(ctx context.Context, req Request, bin string, args []string) Result {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return Result{Request: req, Outcome: Canceled, Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{Request: req, Outcome: Canceled, Err: err}
	}
	if err != nil {
		return Result{Request: req, Outcome: Failed, Err: fmt.Errorf("failed to run capture command: %w", err)}
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return Result{Request: req, Outcome: Canceled, Err: fmt.Errorf("capture produced no picture: %w", err)}
	}
	if info.Size() == 0 {
		return Result{Request: req, Outcome: Canceled, Err: fmt.Errorf("capture produced an empty picture")}
	}

	return Result{Request: req, Outcome: Succeeded}
}
