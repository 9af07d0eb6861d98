package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/filter"
)

func newEvalCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Parse and evaluate a filter expression",
		ArgsUsage: "<expression>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "bind a variable, e.g. --var distance=12000 --var type=Run",
			},
			&cli.Int64Flag{
				Name:  "activity",
				Usage: "bind the fields of a stored activity",
			},
			&cli.BoolFlag{
				Name:  "tokens",
				Usage: "print the token stream",
			},
		},
		Action: evalAction,
	}
}

func evalAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: expression")
	}
	source := cmd.Args().Get(0)

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("tokens") {
		lex := filter.NewLexer(source)
		for _, tok := range filter.Lex(source) {
			fmt.Fprintf(e.out, "%4d  %-20s %q\n", tok.Start, tok.Kind, lex.Value(tok))
		}
	}

	expr, err := filter.Parse(source)
	if err != nil {
		return filterError(source, err)
	}
	fmt.Fprintf(e.out, "ast:   %s\n", expr)

	vars := filter.Vars{}
	if id := cmd.Int64("activity"); id != 0 {
		st, err := e.openStore()
		if err != nil {
			return err
		}
		a, err := st.Activity(ctx, id)
		st.Close()
		if err != nil {
			return fmt.Errorf("activity %d: %w", id, err)
		}
		vars = activity.Vars(a)
	}
	for _, raw := range cmd.StringSlice("var") {
		name, value, err := parseVar(raw)
		if err != nil {
			return err
		}
		vars[name] = value
	}

	v, err := filter.Evaluate(expr, vars)
	if err != nil {
		return filterError(source, err)
	}
	fmt.Fprintf(e.out, "value: %s (%s)\n", v, v.Kind())
	return nil
}

// parseVar reads name=value. Values that look like booleans or numbers get
// that kind; quotes force a string.
func parseVar(raw string) (string, filter.Value, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", filter.Value{}, fmt.Errorf("invalid --var %q: want name=value", raw)
	}
	value = strings.TrimSpace(value)

	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		return name, filter.StringValue(value[1 : len(value)-1]), nil
	}
	switch strings.ToLower(value) {
	case "true":
		return name, filter.BoolValue(true), nil
	case "false":
		return name, filter.BoolValue(false), nil
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return name, filter.NumberValue(n), nil
	}
	return name, filter.StringValue(value), nil
}

// filterError points at the failing offset when the error carries one.
func filterError(source string, err error) error {
	var ferr *filter.Error
	if errors.As(err, &ferr) && ferr.Offset >= 0 {
		return fmt.Errorf("%s\n%w", caretLine(source, ferr.Offset), err)
	}
	return err
}
