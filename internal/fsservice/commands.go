package fsservice

import (
	"context"

	"github.com/starford/ansuz/internal/command"
)

var (
	pathParam    = command.Param{Name: "path", Description: "Filesystem path, absolute or relative to the process working directory"}
	contentParam = command.Param{Name: "content", Description: "Full UTF-8 text to store in the file"}
)

// Commands returns the command table backed by s.
func (s *Service) Commands() []command.Command {
	return []command.Command{
		{
			Name:        "get_data_dir",
			Description: "Return the per-application data directory.",
			Handler: func(ctx context.Context, _ command.Args) (any, error) {
				return s.DataDir(ctx)
			},
		},
		{
			Name:        "read_file",
			Description: "Read a whole file as UTF-8 text.",
			Params:      []command.Param{pathParam},
			Handler: func(ctx context.Context, a command.Args) (any, error) {
				return s.ReadFile(ctx, a.String("path"))
			},
		},
		{
			Name:        "write_file",
			Description: "Replace a file's contents, creating missing parent directories.",
			Params:      []command.Param{pathParam, contentParam},
			Mutating:    true,
			Handler: func(ctx context.Context, a command.Args) (any, error) {
				return nil, s.WriteFile(ctx, a.String("path"), a.String("content"))
			},
		},
		{
			Name:        "delete_file",
			Description: "Delete a file. Succeeds if nothing exists at path.",
			Params:      []command.Param{pathParam},
			Mutating:    true,
			Handler: func(ctx context.Context, a command.Args) (any, error) {
				return nil, s.DeleteFile(ctx, a.String("path"))
			},
		},
		{
			Name:        "list_dir",
			Description: "List entry names of a directory. A missing directory lists as empty.",
			Params:      []command.Param{pathParam},
			Handler: func(ctx context.Context, a command.Args) (any, error) {
				return s.ListDir(ctx, a.String("path"))
			},
		},
		{
			Name:        "ensure_dir",
			Description: "Create a directory and any missing ancestors.",
			Params:      []command.Param{pathParam},
			Mutating:    true,
			Handler: func(ctx context.Context, a command.Args) (any, error) {
				return nil, s.EnsureDir(ctx, a.String("path"))
			},
		},
		{
			Name:        "file_exists",
			Description: "Report whether anything exists at path.",
			Params:      []command.Param{pathParam},
			Handler: func(ctx context.Context, a command.Args) (any, error) {
				return s.FileExists(ctx, a.String("path")), nil
			},
		},
	}
}

// Register adds all filesystem commands to reg.
func (s *Service) Register(reg *command.Registry) error {
	for _, c := range s.Commands() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
