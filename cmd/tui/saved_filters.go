package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/formatting"
	"github.com/robert-malhotra/go-strava-client/pkg/store"
)

const pageSaved = "savedFilters"

func (t *TUI) setupSavedFiltersPage() {
	t.savedList = tview.NewList()
	t.savedList.SetBorder(true).SetTitle("Saved Filters")
	t.savedList.ShowSecondaryText(true)
	t.savedList.SetSecondaryTextColor(tcell.ColorGray)
	t.savedList.SetWrapAround(false)

	t.savedDetail = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	t.savedDetail.SetBorder(true).SetTitle("Preview")

	t.savedList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		t.previewSavedFilter(index)
	})
	t.savedList.SetInputCapture(t.onSavedFiltersInput)

	content := tview.NewFlex().
		AddItem(t.savedList, 0, 1, true).
		AddItem(t.savedDetail, 0, 1, false)

	help := formatting.MakeHelpText("[yellow]↑/↓[white] select  [yellow]Enter[white] apply  [yellow]e[white] edit  [yellow]d[white] delete  [yellow]Esc[white] back  [yellow]Ctrl+C[white] quit")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(pageSaved, page, true, false)
}

func (t *TUI) openSavedFilters() {
	t.savedList.Clear()
	t.savedList.AddItem("Loading...", "", 0, nil)
	t.savedDetail.Clear()
	t.pages.SwitchToPage(pageSaved)
	t.app.SetFocus(t.savedList)

	go t.loadSavedFilters()
}

func (t *TUI) loadSavedFilters() {
	filters, err := t.store.Filters(t.baseCtx)
	if err != nil {
		t.showError(fmt.Sprintf("Failed to load saved filters: %v", err))
		return
	}

	t.app.QueueUpdateDraw(func() {
		t.saved = filters
		t.savedList.Clear()
		for _, f := range filters {
			expr := f.Expr
			t.savedList.AddItem(tview.Escape(f.Name), tview.Escape(formatting.Truncate(expr, 60)), 0, func() {
				t.applyFilter(expr)
			})
		}
		if len(filters) == 0 {
			t.savedList.AddItem("No saved filters.", "Press / and use \"Save as\" to add one.", 0, nil)
		}
		t.savedList.SetCurrentItem(0)
		t.previewSavedFilter(0)
	})
}

func (t *TUI) previewSavedFilter(index int) {
	if index < 0 || index >= len(t.saved) {
		t.savedDetail.Clear()
		return
	}
	f := t.saved[index]
	t.savedDetail.SetText(fmt.Sprintf("[yellow]%s[white]\n\n%s\n\n%s\n\n[gray]updated %s[-]",
		tview.Escape(f.Name), tview.Escape(f.Expr), parseFeedback(f.Expr),
		humanize.RelTime(f.UpdatedAt, time.Now(), "ago", "from now")))
}

func (t *TUI) onSavedFiltersInput(event *tcell.EventKey) *tcell.EventKey {
	index := t.savedList.GetCurrentItem()
	switch event.Key() {
	case tcell.KeyEscape:
		t.showActivities()
		return nil
	case tcell.KeyRune:
		if index < 0 || index >= len(t.saved) {
			return event
		}
		f := t.saved[index]
		switch event.Rune() {
		case 'e', 'E':
			t.filterDialog.show(f.Expr)
			t.filterDialog.saveName.SetText(f.Name)
			return nil
		case 'd', 'D':
			go t.deleteSavedFilter(f.Name)
			return nil
		}
	}
	return event
}

func (t *TUI) deleteSavedFilter(name string) {
	err := t.store.DeleteFilter(t.baseCtx, name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		t.showError(fmt.Sprintf("Failed to delete filter: %v", err))
		return
	}
	t.logger.Info("deleted filter", "name", name)
	t.loadSavedFilters()
}
