package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/client"
)

const authTimeout = 5 * time.Minute

func newAuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize access to your account",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "logout",
				Usage: "forget the stored token",
			},
		},
		Action: authAction,
	}
}

func authAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if cmd.Bool("logout") {
		if err := st.DeleteToken(ctx); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "Logged out.")
		return nil
	}

	o, err := e.oauth()
	if err != nil {
		return err
	}

	state := client.NewState()
	fmt.Fprintf(e.out, "Open this URL in your browser to authorize access:\n\n  %s\n\nWaiting for the redirect on %s ...\n",
		o.AuthCodeURL(state), e.cfg.RedirectAddr())

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()
	code, err := client.ReceiveCode(waitCtx, e.cfg.RedirectAddr(), state)
	if err != nil {
		return fmt.Errorf("authorization: %w", err)
	}

	tok, err := o.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := st.SaveToken(ctx, tok); err != nil {
		return err
	}

	who := tok.AthleteName
	if who == "" {
		who = fmt.Sprintf("athlete %d", tok.AthleteID)
	}
	fmt.Fprintf(e.out, "Authorized as %s.\n", who)
	return nil
}
