package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/export"
	"github.com/robert-malhotra/go-strava-client/pkg/formatting"
)

const (
	pageActivities = "activities"
	pageDetail     = "detail"
	pageChart      = "chart"

	chartWeeks    = 12
	chartBarWidth = 40
)

func (t *TUI) setupPages() {
	t.setupActivitiesPage()
	t.setupDetailPage()
	t.setupChartPage()
	t.setupSavedFiltersPage()
	t.filterDialog = newFilterDialog(t)
}

const activitiesHelp = "[yellow]Enter[white] detail  [yellow]1-9[white] sort  [yellow]r[white] reverse  [yellow]/[white] filter  [yellow]x[white] clear  [yellow]f[white] saved  [yellow]c[white] chart  [yellow]j[white] JSON  [yellow]e[white] export  [yellow]S[white] sync  [yellow]Ctrl+C[white] quit"

func (t *TUI) setupActivitiesPage() {
	t.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	t.table.SetBorder(true).SetTitle("Activities (loading...)")
	t.table.SetSelectedFunc(func(row, column int) {
		if a, ok := t.view.at(row - 1); ok {
			t.showDetail(a)
		}
	})

	t.status = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	t.status.SetBorder(true).SetTitle("Summary")

	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.table, 0, 1, true).
		AddItem(t.status, 3, 0, false).
		AddItem(formatting.MakeHelpText(activitiesHelp), 3, 0, false)

	t.pages.AddPage(pageActivities, page, true, true)
}

func (t *TUI) setupDetailPage() {
	t.detail = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true)
	t.detail.SetBorder(true).SetTitle("Activity")

	help := formatting.MakeHelpText("[yellow]↑/↓[white] scroll  [yellow]j[white] raw JSON  [yellow]Esc[white] back  [yellow]Ctrl+C[white] quit")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.detail, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(pageDetail, page, true, false)
}

func (t *TUI) setupChartPage() {
	t.chart = tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetScrollable(true)
	t.chart.SetBorder(true)

	help := formatting.MakeHelpText("[yellow]Esc[white] back  [yellow]Ctrl+C[white] quit")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.chart, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(pageChart, page, true, false)
}

// reload reads every stored activity and reapplies the current filter.
func (t *TUI) reload() {
	list, err := t.store.Activities(t.baseCtx)
	if err != nil {
		if t.baseCtx.Err() == nil {
			t.showError(fmt.Sprintf("Failed to load activities: %v", err))
		}
		return
	}
	t.logger.Debug("loaded activities", "count", len(list))

	t.app.QueueUpdateDraw(func() {
		if err := t.view.setActivities(t.baseCtx, list); err != nil {
			t.logger.Warn("filter failed", "filter", t.view.source, "error", err)
		}
		t.refreshTable()
	})
}

// applyFilter must run on the UI goroutine.
func (t *TUI) applyFilter(source string) {
	if err := t.view.setFilter(t.baseCtx, source); err != nil {
		t.logger.Info("filter rejected", "filter", source, "error", err)
	} else {
		t.logger.Debug("filter applied", "filter", t.view.source, "matches", len(t.view.shown))
	}
	t.refreshTable()
	t.pages.SwitchToPage(pageActivities)
	t.app.SetFocus(t.table)
}

func (t *TUI) setSort(key activity.SortKey) {
	t.view.setSort(key)
	t.refreshTable()
}

func (t *TUI) reverseSort() {
	t.view.reverse()
	t.refreshTable()
}

func (t *TUI) refreshTable() {
	t.table.Clear()

	for col, header := range formatting.RowHeaders {
		label := fmt.Sprintf("%d %s", col+1, header)
		if activity.SortKey(col) == t.view.key {
			if t.view.desc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		t.table.SetCell(0, col, tview.NewTableCell(label).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	for i, a := range t.view.shown {
		for col, text := range formatting.Row(a, t.cfg.Units) {
			cell := tview.NewTableCell(tview.Escape(text))
			switch col {
			case 1:
				cell.SetMaxWidth(40).SetExpansion(1)
			case 3, 4, 5, 6, 7, 8:
				cell.SetAlign(tview.AlignRight)
			}
			t.table.SetCell(i+1, col, cell)
		}
	}

	if len(t.view.shown) == 0 {
		msg := "No activities stored yet. Press S to sync."
		switch {
		case t.view.err != nil:
			msg = "No matches: the filter is invalid."
		case len(t.view.all) > 0:
			msg = "No matching activities."
		}
		t.table.SetCell(1, 0, tview.NewTableCell(msg).
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
	}

	t.table.SetTitle(t.view.title())
	t.status.SetText(t.view.status(t.cfg.Units))
	t.table.ScrollToBeginning()
	t.table.Select(1, 0)
}

func (t *TUI) selected() (activity.Activity, bool) {
	row, _ := t.table.GetSelection()
	return t.view.at(row - 1)
}

func (t *TUI) showDetail(a activity.Activity) {
	t.current = a
	t.detail.SetTitle(tview.Escape(a.Name))
	t.detail.SetText(formatting.FormatActivityDetails(a, t.cfg.Units, time.Now()))
	t.detail.ScrollToBeginning()
	t.pages.SwitchToPage(pageDetail)
	t.app.SetFocus(t.detail)
}

// showChart plots the weekly distance of the activities currently shown.
func (t *TUI) showChart() {
	weeks := activity.WeeklyDistance(t.view.shown, chartWeeks, time.Now())
	title := fmt.Sprintf("Weekly distance, last %d weeks", chartWeeks)
	if t.view.source != "" {
		title += " – " + formatting.Truncate(t.view.source, 60)
	}
	t.chart.SetTitle(tview.Escape(title))
	t.chart.SetText(formatting.RenderWeeklyChart(weeks, t.cfg.Units, chartBarWidth))
	t.chart.ScrollToBeginning()
	t.pages.SwitchToPage(pageChart)
	t.app.SetFocus(t.chart)
}

// exportShown writes the visible activities to a JSON file in the working
// directory.
func (t *TUI) exportShown() {
	list := slices.Clone(t.view.shown)
	dest := formatting.GenerateJSONFilename("activities", time.Now())
	go func() {
		if err := export.Write(t.baseCtx, dest, list); err != nil {
			t.showError(fmt.Sprintf("Failed to export activities: %v", err))
			return
		}
		t.logger.Info("exported activities", "destination", dest, "count", len(list))
		t.showInfo(fmt.Sprintf("Exported %d activities to %s", len(list), dest))
	}()
}

func (t *TUI) showActivities() {
	t.pages.SwitchToPage(pageActivities)
	t.app.SetFocus(t.table)
}

func (t *TUI) showInfo(message string) {
	t.app.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText(message).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				t.pages.HidePage("info")
			})
		t.pages.RemovePage("info")
		t.pages.AddPage("info", modal, false, true)
		t.pages.ShowPage("info")
	})
}

func (t *TUI) showError(message string) {
	t.app.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText(message).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				t.pages.HidePage("error")
			})
		t.pages.RemovePage("error")
		t.pages.AddPage("error", modal, false, true)
		t.pages.ShowPage("error")
	})
}
