package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/filter"
	"github.com/robert-malhotra/go-strava-client/pkg/store"
)

// selectionFlags pick and order activities; list and export share them.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   `filter expression, e.g. 'distance > 10km and type = "Run"'`,
		},
		&cli.StringFlag{
			Name:    "saved",
			Aliases: []string{"s"},
			Usage:   "name of a saved filter",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "sort key: date, name, type, distance, time, pace, heartrate, elevation, kudos",
			Value: "date",
		},
		&cli.BoolFlag{
			Name:  "desc",
			Usage: "sort descending (the default for date)",
		},
	}
}

func newListCommand() *cli.Command {
	flags := append(selectionFlags(),
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "show at most N activities (0 for all)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print activities as a JSON array",
		},
	)
	return &cli.Command{
		Name:   "list",
		Usage:  "List stored activities, optionally filtered",
		Flags:  flags,
		Action: listAction,
	}
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	list, err := selectActivities(ctx, cmd, e)
	if err != nil {
		return err
	}
	if limit := cmd.Int("limit"); limit > 0 && limit < len(list) {
		list = list[:limit]
	}

	if cmd.Bool("json") {
		entries := make([][]byte, 0, len(list))
		for _, a := range list {
			data, err := json.Marshal(a)
			if err != nil {
				return err
			}
			entries = append(entries, data)
		}
		return printJSONArray(e.out, entries)
	}
	return printActivityTable(e.out, list, e.cfg.Units)
}

// selectActivities loads the stored activities, applies the selected
// filter and sorts them.
func selectActivities(ctx context.Context, cmd *cli.Command, e *env) ([]activity.Activity, error) {
	if cmd.IsSet("filter") && cmd.IsSet("saved") {
		return nil, errors.New("--filter and --saved are mutually exclusive")
	}

	key, err := activity.ParseSortKey(cmd.String("sort"))
	if err != nil {
		return nil, err
	}
	desc := cmd.Bool("desc") || (key == activity.SortDate && !cmd.IsSet("sort"))

	st, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	source, err := resolveFilter(ctx, cmd, st, e.cfg.DefaultFilter)
	if err != nil {
		return nil, err
	}

	list, err := st.Activities(ctx)
	if err != nil {
		return nil, err
	}

	if source != "" {
		f, err := filter.Compile(source)
		if err != nil {
			return nil, filterError(source, err)
		}
		e.logger.Debug("applying filter", "source", source, "ast", f.String())
		if list, err = activity.Apply(ctx, list, f); err != nil {
			return nil, filterError(source, err)
		}
	}

	activity.Sort(list, key, desc)
	return list, nil
}

// resolveFilter picks --filter, then --saved, then the configured default.
func resolveFilter(ctx context.Context, cmd *cli.Command, st *store.Store, fallback string) (string, error) {
	switch {
	case cmd.IsSet("filter"):
		return cmd.String("filter"), nil
	case cmd.IsSet("saved"):
		name := cmd.String("saved")
		saved, err := st.Filter(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("no saved filter named %q", name)
		}
		if err != nil {
			return "", err
		}
		return saved.Expr, nil
	default:
		return fallback, nil
	}
}
