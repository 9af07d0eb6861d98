package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/client"
)

const pageSync = "sync"

type syncSession struct {
	cancel func()
}

func (t *TUI) setActiveSync(session *syncSession) bool {
	t.syncMu.Lock()
	defer t.syncMu.Unlock()
	if t.activeSync != nil {
		return false
	}
	t.activeSync = session
	return true
}

func (t *TUI) clearActiveSync(session *syncSession) {
	t.syncMu.Lock()
	if t.activeSync == session {
		t.activeSync = nil
	}
	t.syncMu.Unlock()
}

func (t *TUI) cancelActiveSync() {
	t.syncMu.Lock()
	session := t.activeSync
	t.activeSync = nil
	t.syncMu.Unlock()

	if session != nil && session.cancel != nil {
		session.cancel()
	}
}

// startSync downloads activities newer than the latest stored one, then
// reloads the table. Batches written before a failure or cancel are kept.
func (t *TUI) startSync() {
	if err := t.baseCtx.Err(); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(t.baseCtx)

	modal := tview.NewModal().
		SetText("Syncing activities...").
		AddButtons([]string{"Cancel"})

	var (
		cancelOnce    sync.Once
		closePageOnce sync.Once
		userCancelled atomic.Bool
	)

	closeSyncPage := func() {
		closePageOnce.Do(func() {
			go t.app.QueueUpdateDraw(func() {
				t.pages.HidePage(pageSync)
				t.pages.RemovePage(pageSync)
				t.app.SetFocus(t.table)
			})
		})
	}

	session := &syncSession{
		cancel: func() {
			cancelOnce.Do(func() {
				userCancelled.Store(true)
				cancel()
				closeSyncPage()
			})
		},
	}
	if !t.setActiveSync(session) {
		cancel()
		t.showInfo("A sync is already running.")
		return
	}

	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		session.cancel()
	})

	t.pages.RemovePage(pageSync)
	t.pages.AddPage(pageSync, modal, true, true)
	t.app.SetFocus(modal)

	go func() {
		defer cancel()
		defer t.clearActiveSync(session)

		n, err := t.syncActivities(ctx)
		t.logger.Info("sync finished", "imported", n, "error", err)
		if n > 0 {
			t.reload()
		}

		if userCancelled.Load() || errors.Is(err, context.Canceled) {
			return
		}

		text := fmt.Sprintf("Synced %d activities.", n)
		if err != nil {
			text = fmt.Sprintf("Sync stopped after %d activities:\n%v", n, err)
		}
		t.app.QueueUpdateDraw(func() {
			if userCancelled.Load() {
				return
			}
			modal.SetText(text)
			modal.ClearButtons()
			modal.AddButtons([]string{"Close"})
			modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				closeSyncPage()
			})
			t.app.SetFocus(modal)
		})
	}()
}

func (t *TUI) syncActivities(ctx context.Context) (int, error) {
	if err := t.cfg.RequireCredentials(); err != nil {
		return 0, err
	}
	o, err := client.NewOAuth(client.OAuthConfig{
		ClientID:     t.cfg.ClientID,
		ClientSecret: t.cfg.ClientSecret,
		AuthURL:      t.cfg.OAuthURL,
		RedirectURL:  t.cfg.RedirectURL(),
	}, client.WithTimeout(t.cfg.Timeout), client.WithLogger(t.logger))
	if err != nil {
		return 0, err
	}
	src, err := t.store.TokenSource(ctx, o)
	if err != nil {
		return 0, err
	}
	api, err := client.NewClient(t.cfg.APIURL,
		client.WithTimeout(t.cfg.Timeout),
		client.WithLogger(t.logger),
		client.WithMiddleware(client.BearerToken(src)),
	)
	if err != nil {
		return 0, err
	}

	after, err := t.store.LatestStart(ctx)
	if err != nil {
		return 0, err
	}
	opts := client.ListOptions{After: after, PerPage: t.cfg.PageSize}
	return t.store.Import(ctx, api.ListActivities(ctx, opts), t.cfg.PageSize)
}
