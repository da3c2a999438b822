package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/starford/ansuz/internal"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var overrides internal.Overrides
	if cmd.IsSet("data-dir") {
		overrides.DataDir = cmd.String("data-dir")
	}
	if cmd.IsSet("mcp") {
		mcp := cmd.Bool("mcp")
		overrides.MCP = &mcp
	}

	cfg, found, err := internal.LoadConfig(configPath, overrides)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithOverrides(overrides),
		internal.WithVersion(version),
	}
	if found {
		opts = append(opts, internal.WithConfigPath(configPath))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "ansuz",
		Usage:   "Filesystem command backend for a desktop webview front-end",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Override the application data directory",
				Sources: cli.EnvVars("APP_DATA_DIR"),
			},
			&cli.BoolFlag{
				Name:    "mcp",
				Usage:   "Serve the commands as MCP tools over stdin/stdout",
				Sources: cli.EnvVars("APP_MCP"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
