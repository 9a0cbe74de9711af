package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// defaultTimeout is the maximum time one turn may run before the subprocess
// is killed. Prevents a hung pipeline from holding a conversation busy
// forever.
const defaultTimeout = 5 * time.Minute

// CLIRunner implements Runner by launching the agent runtime binary once per
// turn. The Request is written to stdin as JSON, the process exits after
// writing a Result as JSON on stdout.
type CLIRunner struct {
	Command string        // agent runtime binary
	Args    []string      // extra arguments
	WorkDir string        // working directory for the subprocess
	Timeout time.Duration // per-turn limit; defaults to defaultTimeout
}

// Run executes one turn. The subprocess runs in its own process group so a
// timeout SIGTERM reaches the whole tree.
func (r *CLIRunner) Run(ctx context.Context, req Request) (*Result, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("agent: command is required")
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("agent: encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second

	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("agent: turn timed out after %s", timeout)
		}
		return nil, fmt.Errorf("agent: run %s: %w (stderr: %s)", r.Command, err, truncate(stderr.String(), 512))
	}

	var res Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("agent: decode result: %w", err)
	}
	return &res, nil
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
