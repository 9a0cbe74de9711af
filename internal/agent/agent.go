// Package agent defines the contract with the external agent-pipeline
// runtime and provides the subprocess-based runner that ships with sb.
package agent

import (
	"context"

	"github.com/zulandar/switchboard/internal/history"
)

// Request is one turn handed to the agent pipeline. History already
// includes the new user turn (trimmed to the configured bound) and Stage
// names the pipeline stage that should resume the conversation.
type Request struct {
	ChatID   string        `json:"chat_id"`
	UserName string        `json:"user_name"`
	Stage    string        `json:"stage"`
	History  history.Items `json:"history"`
}

// Result is what the pipeline returns for one turn. An empty Output means
// the conversation concluded; the dispatcher deletes the stored state
// instead of saving History/Stage.
type Result struct {
	Output  string        `json:"output"`
	History history.Items `json:"history"`
	Stage   string        `json:"stage"`
}

// Runner abstracts the agent pipeline for testability. Implementations may
// be slow (network/model calls) and must honor ctx cancellation. The core
// treats the pipeline as opaque: it never inspects reasoning, only the
// returned Result.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}
