package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/formatting"
)

const pageFilter = "filter"

// fieldHints describes each bound field in the dialog's field list.
var fieldHints = map[string]string{
	"distance":     "meters; use units: 10km, 5mi",
	"time":         "moving time, seconds; 45:00",
	"duration":     "alias of time",
	"elapsed":      "elapsed time, seconds",
	"pace":         "seconds per km; pace < 05:30",
	"speed":        "meters per hour; speed > 25kmph",
	"maxspeed":     "meters per hour",
	"heartrate":    "average bpm",
	"maxheartrate": "bpm",
	"elevation":    "meters gained",
	"kudos":        "count",
	"comments":     "count",
	"type":         `"Run", "Ride", ...`,
	"sport":        `"TrailRun", "GravelRide", ...`,
	"name":         `name ~ "tempo"`,
	"date":         "local date; date >= 2024-01-01",
	"year":         "year = 2024",
	"month":        "1-12",
	"weekday":      "1 = Monday ... 7 = Sunday",
	"commute":      "bool",
	"trainer":      "bool",
	"private":      "bool",
}

// filterDialog edits the filter expression with live parse feedback.
type filterDialog struct {
	tui *TUI

	expression *tview.InputField
	saveName   *tview.InputField
	fields     *tview.List
	feedback   *tview.TextView
	buttons    *tview.Form
}

func newFilterDialog(t *TUI) *filterDialog {
	fd := &filterDialog{tui: t}
	fd.setup()
	return fd
}

func (fd *filterDialog) setup() {
	fd.feedback = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	fd.feedback.SetBorder(true).SetTitle("Parse")

	fd.expression = tview.NewInputField().
		SetLabel("Filter: ").
		SetFieldWidth(0).
		SetPlaceholder(`distance > 10km and type = "Run"`)
	fd.expression.SetChangedFunc(func(text string) {
		fd.feedback.SetText(parseFeedback(text))
	})
	fd.expression.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			fd.apply()
		}
	})

	fd.saveName = tview.NewInputField().
		SetLabel("Save as: ").
		SetFieldWidth(30)
	fd.saveName.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			fd.save()
		}
	})

	fd.fields = tview.NewList()
	fd.fields.SetBorder(true).SetTitle("Fields")
	fd.fields.ShowSecondaryText(true)
	fd.fields.SetSecondaryTextColor(tcell.ColorGray)
	for _, name := range activity.Fields {
		field := name
		fd.fields.AddItem(field, fieldHints[field], 0, func() {
			fd.insertField(field)
		})
	}

	fd.buttons = tview.NewForm().
		AddButton("Apply", fd.apply).
		AddButton("Save", fd.save).
		AddButton("Clear", func() { fd.setText("") }).
		AddButton("Cancel", fd.cancel)
	fd.buttons.SetButtonsAlign(tview.AlignCenter)

	inputs := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(fd.expression, 1, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(fd.saveName, 1, 0, false)
	inputs.SetBorder(true).SetTitle("Filter Expression")

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(inputs, 5, 0, true).
		AddItem(fd.feedback, 0, 1, false).
		AddItem(fd.buttons, 3, 0, false)

	content := tview.NewFlex().
		AddItem(left, 0, 2, true).
		AddItem(fd.fields, 36, 0, false)

	help := formatting.MakeHelpText("[yellow]Enter[white] apply  [yellow]Tab[white] switch focus  [yellow]Enter on field[white] insert name  [yellow]Esc[white] cancel  [yellow]Ctrl+C[white] quit")
	page := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(content, 0, 1, true).
		AddItem(help, 3, 0, false)
	page.SetInputCapture(fd.handleInput)

	fd.tui.pages.AddPage(pageFilter, page, true, false)
}

func (fd *filterDialog) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		fd.cancel()
		return nil
	case tcell.KeyTab:
		fd.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		fd.cycleFocus(-1)
		return nil
	}
	return event
}

func (fd *filterDialog) cycleFocus(direction int) {
	focusables := []tview.Primitive{fd.expression, fd.saveName, fd.fields, fd.buttons}

	current := -1
	for i, p := range focusables {
		if p.HasFocus() {
			current = i
			break
		}
	}
	if current == -1 {
		fd.tui.app.SetFocus(focusables[0])
		return
	}
	next := (current + direction + len(focusables)) % len(focusables)
	fd.tui.app.SetFocus(focusables[next])
}

// show opens the dialog on source.
func (fd *filterDialog) show(source string) {
	fd.setText(source)
	fd.saveName.SetText("")
	fd.tui.pages.SwitchToPage(pageFilter)
	fd.tui.app.SetFocus(fd.expression)
}

func (fd *filterDialog) setText(source string) {
	fd.expression.SetText(source)
	fd.feedback.SetText(parseFeedback(source))
}

func (fd *filterDialog) insertField(name string) {
	text := fd.expression.GetText()
	if text != "" && !strings.HasSuffix(text, " ") {
		text += " "
	}
	fd.setText(text + name + " ")
	fd.tui.app.SetFocus(fd.expression)
}

func (fd *filterDialog) apply() {
	fd.tui.applyFilter(fd.expression.GetText())
}

func (fd *filterDialog) cancel() {
	fd.tui.showActivities()
}

// save stores the expression under the name in the "Save as" field.
func (fd *filterDialog) save() {
	name := strings.TrimSpace(fd.saveName.GetText())
	source := strings.TrimSpace(fd.expression.GetText())
	if name == "" {
		fd.tui.app.SetFocus(fd.saveName)
		fd.feedback.SetText("[yellow]Enter a name to save this filter under.[-]")
		return
	}

	go func() {
		if err := fd.tui.store.SaveFilter(fd.tui.baseCtx, name, source); err != nil {
			fd.tui.showError(fmt.Sprintf("Failed to save filter: %v", err))
			return
		}
		fd.tui.logger.Info("saved filter", "name", name, "filter", source)
		fd.tui.showInfo(fmt.Sprintf("Saved filter %q.", name))
	}()
}
