package ghclib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// runner is the seam between the pipeline and the real process spawner.
type runner interface {
	Run(cmd *exec.Cmd) error
}

// Executor provides a consistent interface for executing external
// commands. Commands are always spawned from structured argument
// lists, never through a shell.
type Executor struct {
	Context context.Context // The context to use for cancellation
}

func NewExecutor(ctx context.Context) *Executor {
	return &Executor{Context: ctx}
}

// Run executes cmd, wiring up stdio and isolating the child in its own
// process group so the whole tree can be killed on cancellation.
func (e *Executor) Run(cmd *exec.Cmd) error {
	// Phase 0: wire up stdio
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	// Phase 1: rebuild the invocation on our context
	finalCmd := exec.CommandContext(e.Context, cmd.Path, cmd.Args[1:]...)

	// inherit or copy environment
	if len(cmd.Env) > 0 {
		finalCmd.Env = cmd.Env
	} else {
		finalCmd.Env = os.Environ()
	}

	// carry over working dir and stdio
	finalCmd.Dir = cmd.Dir
	finalCmd.Stdin = cmd.Stdin
	finalCmd.Stdout = cmd.Stdout
	finalCmd.Stderr = cmd.Stderr

	// Phase 2: isolate process-group so we can clean up on cancel
	setProcessGroup(finalCmd)

	// Phase 3: start, cancel watcher, wait
	if err := finalCmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-e.Context.Done():
			killProcessGroup(finalCmd)
		case <-done:
		}
	}()

	if waitErr := finalCmd.Wait(); waitErr != nil {
		if e.Context.Err() != nil {
			time.Sleep(100 * time.Millisecond)
			return fmt.Errorf("command aborted: %v", e.Context.Err())
		}
		return waitErr
	}
	return nil
}
