// Package streamlink builds and runs the external playback pipeline: the
// streamlink launcher handing the stream to a media player.
package streamlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	// CacheOptions is handed to the player through the launcher's -a flag.
	CacheOptions = "--cache=yes --cache-secs=600"
	// Quality selects the best stream the launcher can find.
	Quality = "best"

	DefaultLauncher = "streamlink"
	DefaultPlayer   = "mpv"

	probeTimeout = 5 * time.Second
)

// Command names the launcher and player binaries.
type Command struct {
	Launcher string
	Player   string
}

// DefaultCommand returns streamlink driving mpv.
func DefaultCommand() Command {
	return Command{Launcher: DefaultLauncher, Player: DefaultPlayer}
}

func (c Command) launcher() string {
	if strings.TrimSpace(c.Launcher) == "" {
		return DefaultLauncher
	}
	return c.Launcher
}

func (c Command) player() string {
	if strings.TrimSpace(c.Player) == "" {
		return DefaultPlayer
	}
	return c.Player
}

// Binaries lists the executables that must be runnable before launching.
func (c Command) Binaries() []string {
	return []string{c.launcher(), c.player()}
}

// Args returns the launcher argument list for url. The url is the only
// variable part of the template.
func (c Command) Args(url string) []string {
	return []string{
		"--twitch-disable-ads",
		"--player", c.player(),
		"-a", CacheOptions,
		url,
		Quality,
	}
}

// String renders the command line for display.
func (c Command) String(url string) string {
	parts := []string{c.launcher()}
	for _, arg := range c.Args(url) {
		if strings.ContainsAny(arg, " \t") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// DependencyMissingError reports a binary that could not be executed.
type DependencyMissingError struct {
	Name string
	Err  error
}

func (e *DependencyMissingError) Error() string {
	if e == nil {
		return "dependency missing"
	}
	if e.Err == nil {
		return fmt.Sprintf("required dependency %q is not available", e.Name)
	}
	return fmt.Sprintf("required dependency %q is not available: %v", e.Name, e.Err)
}

func (e *DependencyMissingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitError reports a child that ran and exited with a non-zero status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Prober checks that a binary is actually executable by running it with
// --version.
type Prober struct {
	Timeout time.Duration
}

// Probe runs bin --version and returns the first line of its output.
func (p *Prober) Probe(ctx context.Context, bin string) (string, error) {
	timeout := probeTimeout
	if p != nil && p.Timeout > 0 {
		timeout = p.Timeout
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return "", &DependencyMissingError{Name: bin, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	line = strings.TrimSpace(line)
	if err != nil {
		// Output from a failed run is usually a loader or interpreter error.
		if line != "" {
			err = fmt.Errorf("%w: %s", err, line)
		}
		return "", &DependencyMissingError{Name: bin, Err: err}
	}
	return line, nil
}

// Process is a started launcher child.
type Process interface {
	// Wait blocks until the child exits. A non-zero exit is reported as
	// *ExitError.
	Wait() error
}

// Launcher starts one launcher process per stream URL.
type Launcher struct {
	command Command
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithOutput redirects child stdout and stderr. Children inherit the
// terminal by default.
func WithOutput(stdout, stderr io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithLogger sets the logger used for process lifecycle messages.
func WithLogger(logger *slog.Logger) LauncherOption {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLauncher returns a launcher for command. Children write to the process's
// own stdout and stderr unless WithOutput says otherwise.
func NewLauncher(command Command, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		command: command,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start spawns the launcher for url without waiting for it.
func (l *Launcher) Start(ctx context.Context, url string) (Process, error) {
	cmd := exec.CommandContext(ctx, l.command.launcher(), l.command.Args(url)...)
	cmd.Stdin = nil
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", l.command.launcher(), err)
	}
	l.logger.Debug("launcher started", "command", l.command.String(url), "pid", cmd.Process.Pid)
	return &process{cmd: cmd}, nil
}

type process struct {
	cmd *exec.Cmd
}

func (p *process) Wait() error {
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Err: err}
	}
	return err
}
