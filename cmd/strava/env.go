package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-strava-client/pkg/client"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
	"github.com/robert-malhotra/go-strava-client/pkg/store"
)

// env is what every command needs: the resolved config, a logger on
// stderr and the writer results go to.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

func newEnv(cmd *cli.Command) (*env, error) {
	cfg, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return nil, err
	}
	if db := cmd.String(databaseFlag); db != "" {
		cfg.Database = db
	}

	root := cmd.Root()
	out, errOut := root.Writer, root.ErrWriter
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	level := slog.LevelWarn
	if cmd.Bool(verboseFlag) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	return &env{cfg: cfg, logger: logger, out: out}, nil
}

func (e *env) openStore() (*store.Store, error) {
	if e.cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(e.cfg.Database), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	e.logger.Debug("opening database", "path", e.cfg.Database)
	return store.Open(e.cfg.Database, store.WithLogger(e.logger))
}

func (e *env) oauth() (*client.OAuth, error) {
	if err := e.cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return client.NewOAuth(client.OAuthConfig{
		ClientID:     e.cfg.ClientID,
		ClientSecret: e.cfg.ClientSecret,
		AuthURL:      e.cfg.OAuthURL,
		RedirectURL:  e.cfg.RedirectURL(),
	}, client.WithTimeout(e.cfg.Timeout), client.WithLogger(e.logger))
}

// apiClient builds an authorized client whose token refreshes persist to st.
func (e *env) apiClient(ctx context.Context, st *store.Store) (*client.Client, error) {
	o, err := e.oauth()
	if err != nil {
		return nil, err
	}
	src, err := st.TokenSource(ctx, o)
	if err != nil {
		return nil, err
	}
	return client.NewClient(e.cfg.APIURL,
		client.WithTimeout(e.cfg.Timeout),
		client.WithLogger(e.logger),
		client.WithMiddleware(client.BearerToken(src)),
	)
}
