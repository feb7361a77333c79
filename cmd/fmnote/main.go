package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/starford/fmnote/internal"
	"github.com/starford/fmnote/internal/config"
	"github.com/starford/fmnote/internal/workflow"
	pkgconfig "github.com/starford/fmnote/pkg/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file; a missing file means built-in defaults",
		DefaultText: "$XDG_CONFIG_HOME/fmnote/config.yaml",
		Value:       defaultConfigPath(),
		Sources:     cli.EnvVars("FMNOTE_CONFIG_FILE"),
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fmnote", "config.yaml")
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
		if err := cfg.App.Validate(); err != nil {
			return fmt.Errorf("invalid port: %w", err)
		}
	}

	in := workflow.Inputs{NoFilenameSync: cmd.Bool("no-filename-sync")}
	format := cfg.Content.Format()
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		if in.Stdin, err = workflow.ReadStdin(format, os.Stdin); err != nil {
			return err
		}
	}
	if !cmd.Bool("batch") {
		clip, err := workflow.ReadClipboard(format)
		if err != nil {
			slog.Debug("clipboard ignored", slog.String("error", err.Error()))
		} else {
			in.Clipboard = clip
		}
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithPath(cmd.Args().First()),
		internal.WithInputs(in),
	}
	if cmd.IsSet("export") {
		opts = append(opts, internal.WithExport(cmd.String("export")))
	}
	if cmd.Bool("view") {
		opts = append(opts, internal.WithView())
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func dumpConfig(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := pkgconfig.Dump(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.Root().Writer.Write(out)
	return err
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithPath(cmd.Args().First()),
	)
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{Name: "debug", Usage: "Log at debug level"}
}

func main() {
	cmd := &cli.Command{
		Name:      "fmnote",
		Usage:     "Create notes with a YAML header and keep their file names in sync with it",
		ArgsUsage: "[DIR|FILE]",
		Action:    run,
		Flags: []cli.Flag{
			configFlag(),
			debugFlag(),
			&cli.BoolFlag{
				Name:    "view",
				Aliases: []string{"v"},
				Usage:   "Serve a live preview of the note in the browser",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Preview port (0 picks a free one)",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"x"},
				Usage:   "Write the note as HTML into `DIR` (empty: next to the note)",
			},
			&cli.BoolFlag{
				Name:    "batch",
				Aliases: []string{"b"},
				Usage:   "Do not read the clipboard",
			},
			&cli.BoolFlag{
				Name:    "no-filename-sync",
				Aliases: []string{"n"},
				Usage:   "Never rename existing notes",
				Sources: cli.EnvVars("FMNOTE_NO_FILENAME_SYNC"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Print the effective configuration as YAML",
				Flags:  []cli.Flag{configFlag(), debugFlag()},
				Action: dumpConfig,
			},
			{
				Name:      "mcp",
				Usage:     "Serve note tools over MCP on stdin/stdout",
				ArgsUsage: "[ROOT]",
				Flags:     []cli.Flag{configFlag(), debugFlag()},
				Action:    serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
