// Package models defines the domain types shared across transports.
package models

import "time"

// Invocation records one dispatched command.
type Invocation struct {
	ID        int64         `json:"id,omitempty"`
	Command   string        `json:"command"`
	Path      string        `json:"path,omitempty"`
	Checksum  string        `json:"checksum,omitempty"` // SHA-256 of written content
	OK        bool          `json:"ok"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	InvokedAt time.Time     `json:"invoked_at"`
}

// Change kinds published for successful mutating commands.
const (
	ChangeWritten    = "written"
	ChangeDeleted    = "deleted"
	ChangeDirEnsured = "dir_ensured"
)

// ChangeKind maps a successful mutating command to its change kind.
// ok is false for commands that do not mutate the filesystem.
func ChangeKind(command string) (kind string, ok bool) {
	switch command {
	case "write_file":
		return ChangeWritten, true
	case "delete_file":
		return ChangeDeleted, true
	case "ensure_dir":
		return ChangeDirEnsured, true
	}
	return "", false
}
