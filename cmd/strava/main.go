package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/urfave/cli/v3"
)

const (
	configFlag   = "config"
	databaseFlag = "database"
	verboseFlag  = "verbose"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "strava",
		Usage: "Sync, filter and inspect your activities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Sources: cli.EnvVars("STRAVA_CONFIG"),
			},
			&cli.StringFlag{
				Name:    databaseFlag,
				Aliases: []string{"d"},
				Usage:   "SQLite database path (overrides the config file)",
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			newAuthCommand(),
			newSyncCommand(),
			newListCommand(),
			newEvalCommand(),
			newFiltersCommand(),
			newExportCommand(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
