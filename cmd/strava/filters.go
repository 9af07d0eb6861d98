package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/store"
)

func newFiltersCommand() *cli.Command {
	return &cli.Command{
		Name:  "filters",
		Usage: "Manage saved filter expressions",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save an expression under a name",
				ArgsUsage: "<name> <expression>",
				Action:    saveFilterAction,
			},
			{
				Name:   "list",
				Usage:  "List saved filters",
				Action: listFiltersAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved filter",
				ArgsUsage: "<name>",
				Action:    deleteFilterAction,
			},
		},
	}
}

func saveFilterAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected 2 arguments: name and expression")
	}
	name, source := cmd.Args().Get(0), cmd.Args().Get(1)

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveFilter(ctx, name, source); err != nil {
		return filterError(source, err)
	}
	fmt.Fprintf(e.out, "Saved filter %q.\n", name)
	return nil
}

func listFiltersAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filters, err := st.Filters(ctx)
	if err != nil {
		return err
	}
	if len(filters) == 0 {
		fmt.Fprintln(e.out, "No saved filters.")
		return nil
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXPRESSION\tUPDATED")
	for _, f := range filters {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Expr, humanize.Time(f.UpdatedAt))
	}
	return tw.Flush()
}

func deleteFilterAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: name")
	}
	name := cmd.Args().Get(0)

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteFilter(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no saved filter named %q", name)
		}
		return err
	}
	fmt.Fprintf(e.out, "Deleted filter %q.\n", name)
	return nil
}
