// Package invoker runs the external model CLI for a single prompt.
//
// Each call spawns one short-lived process through the shell:
//
//	/bin/sh -c "'gemini' -m 'gemini-2.5-pro' -p '<prompt>'"
//
// The prompt is single-quoted (see Quote) so no part of it is ever
// interpreted as shell syntax. The process runs in its own process group
// under a context deadline; when the deadline fires the whole group is
// killed. There is no retry: one call, one attempt.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/HendryAvila/gemini-advisor/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Tier selects between the cheaper and the deeper model variant.
type Tier string

const (
	TierFast Tier = "fast"
	TierDeep Tier = "deep"
)

const (
	// DefaultTimeout bounds ad hoc invocations.
	DefaultTimeout = 5 * time.Minute

	// SharedTimeout bounds invocations made by the long-lived server client.
	SharedTimeout = 10 * time.Minute

	// DefaultBinary is the model CLI looked up on PATH by the shell.
	DefaultBinary = "gemini"

	// DefaultShell interprets the constructed command line.
	DefaultShell = "/bin/sh"

	DefaultFastModel = "gemini-2.5-flash"
	DefaultDeepModel = "gemini-2.5-pro"

	// waitDelay caps how long Wait blocks on I/O after the process group
	// was killed, in case an orphan still holds the pipes.
	waitDelay = 2 * time.Second
)

// Options configures an Invoker.
type Options struct {
	Binary string
	Shell  string
	Models map[Tier]string

	// Timeout is the wall-clock budget of one invocation.
	Timeout time.Duration

	// MaxConcurrent bounds the number of live model processes.
	// Zero means unlimited.
	MaxConcurrent int

	Logger *zap.Logger
}

// DefaultOptions returns options for the stock gemini CLI with the ad hoc
// timeout.
func DefaultOptions() Options {
	return Options{
		Binary: DefaultBinary,
		Shell:  DefaultShell,
		Models: map[Tier]string{
			TierFast: DefaultFastModel,
			TierDeep: DefaultDeepModel,
		},
		Timeout: DefaultTimeout,
	}
}

// Invoker executes model invocations. It holds no per-call state and is
// safe for concurrent use.
type Invoker struct {
	opts   Options
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// New creates an Invoker. Zero-valued fields of opts fall back to
// DefaultOptions.
func New(opts Options) *Invoker {
	def := DefaultOptions()
	if opts.Binary == "" {
		opts.Binary = def.Binary
	}
	if opts.Shell == "" {
		opts.Shell = def.Shell
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	models := make(map[Tier]string, len(def.Models))
	for tier, model := range def.Models {
		models[tier] = model
	}
	for tier, model := range opts.Models {
		if model != "" {
			models[tier] = model
		}
	}
	opts.Models = models

	inv := &Invoker{opts: opts, logger: opts.Logger}
	if inv.logger == nil {
		inv.logger = zap.NewNop()
	}
	if opts.MaxConcurrent > 0 {
		inv.sem = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}
	return inv
}

// Timeout returns the per-invocation budget.
func (inv *Invoker) Timeout() time.Duration { return inv.opts.Timeout }

// Model returns the model identifier used for tier, or "" if unknown.
func (inv *Invoker) Model(tier Tier) string { return inv.opts.Models[tier] }

// Run invokes the model CLI with the model mapped to tier and returns its
// standard output unmodified. Output on standard error is logged as a
// warning and otherwise ignored; only the exit status and the deadline
// decide failure.
func (inv *Invoker) Run(ctx context.Context, tier Tier, prompt string) (string, error) {
	model := inv.opts.Models[tier]
	if model == "" {
		return "", fmt.Errorf("%w: unknown model tier %q", ErrExecutionFailed, tier)
	}

	log := logging.FromContext(ctx, inv.logger).Named("invoker").With(
		zap.String("tier", string(tier)),
		zap.String("model", model),
	)

	// The budget covers the wait for a process slot as well as the run.
	ctx, cancel := context.WithTimeoutCause(ctx, inv.opts.Timeout, errBudgetExceeded)
	defer cancel()

	if inv.sem != nil {
		if err := inv.sem.Acquire(ctx, 1); err != nil {
			if inv.budgetExceeded(ctx) {
				log.Warn("model process timed out waiting for a slot", zap.Duration("timeout", inv.opts.Timeout))
				return "", fmt.Errorf("%w after %s", ErrTimeout, inv.opts.Timeout)
			}
			return "", fmt.Errorf("%w: waiting for a process slot: %v", ErrExecutionFailed, context.Cause(ctx))
		}
		defer inv.sem.Release(1)
	}

	cmd := exec.CommandContext(ctx, inv.opts.Shell, "-c", CommandLine(inv.opts.Binary, model, prompt))
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("spawning model process", zap.Int("prompt_bytes", len(prompt)))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if inv.budgetExceeded(ctx) {
			log.Warn("model process timed out", zap.Duration("timeout", inv.opts.Timeout))
			return "", fmt.Errorf("%w after %s", ErrTimeout, inv.opts.Timeout)
		}
		if cause := context.Cause(ctx); cause != nil {
			log.Warn("model process cancelled", zap.Error(cause))
			return "", fmt.Errorf("%w: %v", ErrExecutionFailed, cause)
		}
		msg := strings.TrimSpace(stderr.String())
		log.Warn("model process failed",
			zap.Error(err),
			zap.String("stderr", msg),
			zap.Duration("elapsed", elapsed),
		)
		if msg != "" {
			return "", fmt.Errorf("%w: %v: %s", ErrExecutionFailed, err, msg)
		}
		return "", fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	if stderr.Len() > 0 {
		log.Warn("model wrote to stderr", zap.String("stderr", stderr.String()))
	}
	log.Debug("model process finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", stdout.Len()),
	)

	return stdout.String(), nil
}

// errBudgetExceeded marks a context cancelled by this invoker's own
// deadline, as opposed to a deadline or cancellation of the caller.
var errBudgetExceeded = errors.New("invocation budget exceeded")

func (inv *Invoker) budgetExceeded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), errBudgetExceeded)
}
