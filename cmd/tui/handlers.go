package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
)

func (t *TUI) onInputCapture(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		t.Stop()
		return nil
	}

	currentPage, _ := t.pages.GetFrontPage()

	switch currentPage {
	case pageActivities:
		return t.onActivitiesInput(event)
	case pageDetail:
		if event.Key() == tcell.KeyRune && (event.Rune() == 'j' || event.Rune() == 'J') {
			t.showJSON(t.current)
			return nil
		}
	}

	// Escape key navigation; the filter, saved-filter and JSON pages
	// handle their own.
	if event.Key() == tcell.KeyEscape {
		switch currentPage {
		case pageDetail, pageChart:
			t.showActivities()
			return nil
		}
	}

	return event
}

func (t *TUI) onActivitiesInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}

	r := event.Rune()
	if r >= '1' && r <= '9' {
		if key := activity.SortKey(r - '1'); int(key) < len(activity.SortKeys()) {
			t.setSort(key)
		}
		return nil
	}

	switch r {
	case 'r', 'R':
		t.reverseSort()
	case '/':
		t.filterDialog.show(t.view.source)
	case 'x', 'X':
		t.applyFilter("")
	case 'f', 'F':
		t.openSavedFilters()
	case 'c', 'C':
		t.showChart()
	case 'j', 'J':
		if a, ok := t.selected(); ok {
			t.showJSON(a)
		}
	case 'e', 'E':
		t.exportShown()
	case 'S':
		t.startSync()
	default:
		return event
	}
	return nil
}
