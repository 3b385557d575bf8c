package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/vanderheijden86/procmap/pkg/debug"
)

// maxSummaryStderr caps how much stderr a summary line repeats.
const maxSummaryStderr = 200

// Result records one hook run.
type Result struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of a Config with one export context.
type Executor struct {
	config  *Config
	ctx     ExportContext
	results []Result
}

// NewExecutor creates an executor. A nil config runs nothing.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, ctx: ctx}
}

// RunPreExport runs every pre-export hook in order and stops at the first
// failing hook whose on_error is "fail".
func (e *Executor) RunPreExport(ctx context.Context) error {
	return e.runPhase(ctx, PreExport, e.config.Hooks.PreExport)
}

// RunPostExport runs every post-export hook. All hooks run even when one
// fails; the first "fail" error is returned afterwards.
func (e *Executor) RunPostExport(ctx context.Context) error {
	return e.runPhase(ctx, PostExport, e.config.Hooks.PostExport)
}

func (e *Executor) runPhase(ctx context.Context, phase HookPhase, hooks []Hook) error {
	var firstErr error
	for _, h := range hooks {
		r := e.run(ctx, phase, h)
		e.results = append(e.results, r)
		if r.Success {
			continue
		}
		debug.Warnf("hooks: %s %q failed: %v", phase, h.Name, r.Error)
		if h.OnError == "continue" {
			continue
		}
		err := fmt.Errorf("%s hook %q: %w", phase, h.Name, r.Error)
		if phase == PreExport {
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Executor) run(ctx context.Context, phase HookPhase, h Hook) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", h.Command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", h.Command)
	}
	cmd.Env = append(os.Environ(), e.ctx.ToEnv()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of the shell may keep the pipes open past a timeout.
	cmd.WaitDelay = 500 * time.Millisecond

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.Error = fmt.Errorf("timed out after %s", timeout)
	case err != nil:
		r.Error = err
	default:
		r.Success = true
	}
	debug.Log("hooks: %s %q done in %s (ok=%v)", phase, h.Name, r.Duration, r.Success)
	return r
}

// Results returns every hook run so far, in order.
func (e *Executor) Results() []Result {
	return e.results
}

// Failed counts the hook runs that did not succeed.
func (e *Executor) Failed() int {
	n := 0
	for _, r := range e.results {
		if !r.Success {
			n++
		}
	}
	return n
}

// Summary describes the runs in a few lines, or "" when nothing ran.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	ok, failed := 0, 0
	var sb strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&sb, "  %s %q: %v\n", r.Phase, r.Hook.Name, r.Error)
		if r.Stderr != "" {
			stderr := strings.Join(strings.Fields(r.Stderr), " ")
			if len(stderr) > maxSummaryStderr {
				stderr = stderr[:maxSummaryStderr] + "..."
			}
			fmt.Fprintf(&sb, "    stderr: %s\n", stderr)
		}
	}
	return fmt.Sprintf("hooks: %d succeeded, %d failed\n", ok, failed) + sb.String()
}

// RunHooks loads the hooks of projectDir. It returns a nil executor when
// noHooks is set or nothing is configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	loader := NewLoader(WithProjectDir(projectDir))
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, w := range loader.Warnings() {
		debug.Warnf("hooks: %s", w)
	}
	if !loader.HasHooks() {
		return nil, nil
	}
	return NewExecutor(loader.Config(), ctx), nil
}

// SetContext replaces the export context, e.g. once output paths are known.
func (e *Executor) SetContext(ctx ExportContext) {
	e.ctx = ctx
}
