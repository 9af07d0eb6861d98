package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
	"github.com/robert-malhotra/go-strava-client/pkg/store"
)

type TUI struct {
	app   *tview.Application
	pages *tview.Pages

	table       *tview.Table
	status      *tview.TextView
	detail      *tview.TextView
	chart       *tview.TextView
	savedList   *tview.List
	savedDetail *tview.TextView

	cfg    config.Config
	store  *store.Store
	logger *slog.Logger

	view    *activityView
	current activity.Activity
	saved   []store.SavedFilter

	baseCtx    context.Context
	baseCancel context.CancelFunc
	stopOnce   sync.Once

	syncMu     sync.Mutex
	activeSync *syncSession

	filterDialog *filterDialog
	jsonViewer   *jsonViewer
}

// configureStyles sets the tview global styles for the TUI.
// Note: This modifies global state in tview.Styles.
func configureStyles() {
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorBlack
	tview.Styles.ContrastBackgroundColor = tcell.ColorDarkSlateGray
	tview.Styles.MoreContrastBackgroundColor = tcell.ColorGreen
	tview.Styles.BorderColor = tcell.ColorWhite
	tview.Styles.TitleColor = tcell.ColorWhite
	tview.Styles.GraphicsColor = tcell.ColorWhite
	tview.Styles.PrimaryTextColor = tcell.ColorWhite
	tview.Styles.SecondaryTextColor = tcell.ColorYellow
	tview.Styles.TertiaryTextColor = tcell.ColorGreen
	tview.Styles.InverseTextColor = tcell.ColorBlue
	tview.Styles.ContrastSecondaryTextColor = tcell.ColorNavy
}

// NewTUI creates the viewer over st. The provided context controls the
// lifetime of background operations; pass nil to use context.Background().
func NewTUI(ctx context.Context, cfg config.Config, st *store.Store, logger *slog.Logger) *TUI {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	baseCtx, baseCancel := context.WithCancel(ctx)

	configureStyles()

	tui := &TUI{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		cfg:        cfg,
		store:      st,
		logger:     logger,
		view:       newActivityView(),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}

	tui.setupPages()
	tui.jsonViewer = newJSONViewer(tui)

	tui.app.SetInputCapture(tui.onInputCapture)
	tui.app.SetFocus(tui.table)

	if err := tui.view.setFilter(baseCtx, cfg.DefaultFilter); err != nil {
		logger.Warn("default filter rejected", "filter", cfg.DefaultFilter, "error", err)
	}
	go tui.reload()

	return tui
}

// Run starts the TUI event loop. It blocks until the application exits
// and returns any error that occurred.
func (t *TUI) Run() error {
	return t.app.SetRoot(t.pages, true).Run()
}

func (t *TUI) Stop() {
	t.stopOnce.Do(func() {
		if t.baseCancel != nil {
			t.baseCancel()
		}
		t.cancelActiveSync()
		t.app.Stop()
	})
}
