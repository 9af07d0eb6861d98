package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/export"
)

func newExportCommand() *cli.Command {
	flags := append(selectionFlags(),
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "S3-compatible endpoint URL for s3:// destinations",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "AWS region for s3:// destinations",
		},
	)
	return &cli.Command{
		Name:      "export",
		Usage:     "Write selected activities as JSON to a file or s3://bucket/key (.zst compresses)",
		ArgsUsage: "<destination>",
		Flags:     flags,
		Action:    exportAction,
	}
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: destination")
	}
	dest := cmd.Args().Get(0)

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	list, err := selectActivities(ctx, cmd, e)
	if err != nil {
		return err
	}

	var opts []export.Option
	if endpoint := cmd.String("endpoint"); endpoint != "" {
		opts = append(opts, export.WithEndpoint(endpoint))
	}
	if region := cmd.String("region"); region != "" {
		opts = append(opts, export.WithRegion(region))
	}
	if err := export.Write(ctx, dest, list, opts...); err != nil {
		return err
	}
	e.logger.Debug("exported activities", "destination", dest, "count", len(list))
	fmt.Fprintf(e.out, "Exported %d activities to %s.\n", len(list), dest)
	return nil
}
