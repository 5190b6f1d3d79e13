// Package watch launches one playback process per channel and supervises
// them until every one has exited.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/ttv/internal/streamlink"
)

// Launcher starts a playback process for a channel URL.
type Launcher interface {
	Start(ctx context.Context, url string) (streamlink.Process, error)
}

// Prober verifies that a binary can actually be executed.
type Prober interface {
	Probe(ctx context.Context, bin string) (string, error)
}

// Recorder receives every outcome once all processes have exited.
type Recorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

// State is the terminal state of one launch.
type State string

const (
	StateSucceeded   State = "succeeded"
	StateNonZeroExit State = "nonzero_exit"
	StateLaunchError State = "launch_error"
)

// Outcome is the result of one target's process.
type Outcome struct {
	Target    Target
	State     State
	ExitCode  int
	Message   string
	StartedAt time.Time
	Duration  time.Duration
}

// Failed reports whether the target did not exit cleanly.
func (o Outcome) Failed() bool {
	return o.State != StateSucceeded
}

// Describe renders the outcome for humans.
func (o Outcome) Describe() string {
	switch o.State {
	case StateSucceeded:
		return "exited normally"
	case StateNonZeroExit:
		return fmt.Sprintf("exited with status %d", o.ExitCode)
	default:
		return "failed to launch: " + o.Message
	}
}

// Result holds one outcome per target, in target order.
type Result struct {
	Outcomes []Outcome
}

// Succeeded counts outcomes that exited cleanly.
func (r *Result) Succeeded() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if !o.Failed() {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes in target order.
func (r *Result) Failures() []Outcome {
	if r == nil {
		return nil
	}
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// PartialFailureError is returned when at least one target failed.
type PartialFailureError struct {
	Failures  []Outcome
	Succeeded int
}

func (e *PartialFailureError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Target.Login, f.Describe()))
	}
	return fmt.Sprintf("%d of %d streams failed (%d succeeded): %s",
		len(e.Failures), len(e.Failures)+e.Succeeded, e.Succeeded, strings.Join(parts, "; "))
}

// Orchestrator runs a batch of playback targets side by side and waits for
// all of them.
type Orchestrator struct {
	launcher Launcher
	prober   Prober
	deps     []string
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder reports every outcome to r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithLogger sets the logger used for launch progress and recorder failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now for outcome timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator. deps are the binaries probed before any
// launch, in order.
func New(launcher Launcher, prober Prober, deps []string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		launcher: launcher,
		prober:   prober,
		deps:     deps,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run normalizes inputs, checks dependencies, launches every target and
// waits for all of them. On partial failure both the result and a
// *PartialFailureError are returned.
func (o *Orchestrator) Run(ctx context.Context, inputs []string) (*Result, error) {
	targets, err := Normalize(inputs)
	if err != nil {
		return nil, err
	}
	return o.Launch(ctx, targets)
}

// Launch checks dependencies, then starts and supervises the given targets
// without normalizing them.
func (o *Orchestrator) Launch(ctx context.Context, targets []Target) (*Result, error) {
	if len(targets) == 0 {
		return nil, ErrNoValidTargets
	}
	if err := o.preflight(ctx); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(targets))
	var g errgroup.Group

	for i, target := range targets {
		started := o.now()
		proc, err := o.launcher.Start(ctx, target.URL)
		if err != nil {
			o.logger.Warn("launch failed", "login", target.Login, "error", err)
			outcomes[i] = Outcome{
				Target:    target,
				State:     StateLaunchError,
				Message:   err.Error(),
				StartedAt: started,
			}
			continue
		}
		o.logger.Info("watching", "login", target.Login, "url", target.URL)

		g.Go(func() error {
			outcomes[i] = o.await(target, proc, started)
			return nil
		})
	}

	_ = g.Wait()

	result := &Result{Outcomes: outcomes}
	o.record(ctx, result)

	if failures := result.Failures(); len(failures) > 0 {
		return result, &PartialFailureError{Failures: failures, Succeeded: result.Succeeded()}
	}
	return result, nil
}

func (o *Orchestrator) preflight(ctx context.Context) error {
	for _, bin := range o.deps {
		version, err := o.prober.Probe(ctx, bin)
		if err != nil {
			var depErr *streamlink.DependencyMissingError
			if errors.As(err, &depErr) {
				return err
			}
			return &streamlink.DependencyMissingError{Name: bin, Err: err}
		}
		o.logger.Debug("dependency ok", "bin", bin, "version", version)
	}
	return nil
}

func (o *Orchestrator) await(target Target, proc streamlink.Process, started time.Time) Outcome {
	err := proc.Wait()
	out := Outcome{
		Target:    target,
		StartedAt: started,
		Duration:  o.now().Sub(started),
	}

	var exitErr *streamlink.ExitError
	switch {
	case err == nil:
		out.State = StateSucceeded
		o.logger.Info("stream ended", "login", target.Login, "duration", out.Duration)
	case errors.As(err, &exitErr):
		out.State = StateNonZeroExit
		out.ExitCode = exitErr.Code
		out.Message = err.Error()
		o.logger.Warn("stream exited with error", "login", target.Login, "code", exitErr.Code)
	default:
		out.State = StateLaunchError
		out.Message = err.Error()
		o.logger.Warn("stream wait failed", "login", target.Login, "error", err)
	}
	return out
}

func (o *Orchestrator) record(ctx context.Context, result *Result) {
	if o.recorder == nil {
		return
	}
	for _, outcome := range result.Outcomes {
		if err := o.recorder.RecordOutcome(ctx, outcome); err != nil {
			o.logger.Warn("failed to record outcome", "login", outcome.Target.Login, "error", err)
		}
	}
}
