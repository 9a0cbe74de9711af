package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/switchboard/internal/history"
)

func TestCLIRunner_RoundTrip(t *testing.T) {
	// The fake pipeline reads the request from stdin (discarded) and writes
	// a fixed result.
	r := &CLIRunner{
		Command: "sh",
		Args:    []string{"-c", `cat >/dev/null; printf '{"output":"hello","history":[{"role":"user","content":"hi"}],"stage":"documents"}'`},
	}
	res, err := r.Run(context.Background(), Request{
		ChatID:  "chat-1",
		Stage:   "hub",
		History: history.Items{{"role": "user", "content": "hi"}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Output != "hello" {
		t.Errorf("Output = %q, want hello", res.Output)
	}
	if res.Stage != "documents" {
		t.Errorf("Stage = %q, want documents", res.Stage)
	}
	if len(res.History) != 1 {
		t.Errorf("History len = %d, want 1", len(res.History))
	}
}

func TestCLIRunner_RequestOnStdin(t *testing.T) {
	// Echo the stage field back as the output to prove the request reached
	// the subprocess intact.
	r := &CLIRunner{
		Command: "sh",
		Args:    []string{"-c", `stage=$(sed 's/.*"stage":"\([a-z]*\)".*/\1/'); printf '{"output":"%s","history":[],"stage":"hub"}' "$stage"`},
	}
	res, err := r.Run(context.Background(), Request{ChatID: "c", Stage: "pricing"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Output != "pricing" {
		t.Errorf("Output = %q, want pricing (request stage echoed back)", res.Output)
	}
}

func TestCLIRunner_ExitFailure(t *testing.T) {
	r := &CLIRunner{
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
	}
	_, err := r.Run(context.Background(), Request{ChatID: "c", Stage: "hub"})
	if err == nil {
		t.Fatal("Run() error = nil, want exit failure")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Run() error = %v, want stderr included", err)
	}
}

func TestCLIRunner_BadOutput(t *testing.T) {
	r := &CLIRunner{
		Command: "sh",
		Args:    []string{"-c", "cat >/dev/null; echo not-json"},
	}
	if _, err := r.Run(context.Background(), Request{ChatID: "c", Stage: "hub"}); err == nil {
		t.Error("Run() error = nil, want decode error")
	}
}

func TestCLIRunner_Timeout(t *testing.T) {
	r := &CLIRunner{
		Command: "sh",
		Args:    []string{"-c", "sleep 30"},
		Timeout: 50 * time.Millisecond,
	}
	start := time.Now()
	_, err := r.Run(context.Background(), Request{ChatID: "c", Stage: "hub"})
	if err == nil {
		t.Fatal("Run() error = nil, want timeout")
	}
	if time.Since(start) > 15*time.Second {
		t.Errorf("Run() took %v, timeout did not bite", time.Since(start))
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Run() error = %v, want timeout error", err)
	}
}

func TestCLIRunner_MissingCommand(t *testing.T) {
	r := &CLIRunner{}
	if _, err := r.Run(context.Background(), Request{}); err == nil {
		t.Error("Run() error = nil, want missing command error")
	}
}
