package api

import (
	"github.com/starford/ansuz/internal/command"
	"github.com/starford/ansuz/internal/models"
)

// InvokeResponse wraps a successful command result. Result is null for
// commands that only report success.
type InvokeResponse struct {
	Result any `json:"result"`
}

// ErrorResponse is the error channel of an invoke response.
type ErrorResponse struct {
	Error string `json:"error" example:"open /data/x: no such file or directory"`
	Kind  string `json:"kind" example:"not_found"`
}

// CommandListResponse lists the registered commands.
type CommandListResponse struct {
	Commands []command.Command `json:"commands"`
}

// JournalResponse wraps recent invocations.
type JournalResponse struct {
	Invocations []models.Invocation `json:"invocations"`
}
