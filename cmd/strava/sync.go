package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/client"
)

func newSyncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Download new activities into the local database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "full",
				Usage: "download every activity instead of only newer ones",
			},
		},
		Action: syncAction,
	}
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	api, err := e.apiClient(ctx, st)
	if err != nil {
		return err
	}

	opts := client.ListOptions{PerPage: e.cfg.PageSize}
	if !cmd.Bool("full") {
		if opts.After, err = st.LatestStart(ctx); err != nil {
			return err
		}
	}
	e.logger.Debug("syncing", "after", opts.After, "full", cmd.Bool("full"))

	n, err := st.Import(ctx, api.ListActivities(ctx, opts), e.cfg.PageSize)
	if err != nil {
		return fmt.Errorf("sync stopped after %d activities: %w", n, err)
	}
	total, err := st.CountActivities(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Synced %d activities (%d stored).\n", n, total)
	return nil
}
