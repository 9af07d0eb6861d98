package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/formatting"
)

const pageJSON = "json"

// jsonViewer shows the payload an activity was stored with. Its fields
// are only touched from the UI goroutine.
type jsonViewer struct {
	tui  *TUI
	text *tview.TextView

	title string
	data  []byte
	back  string
	wrap  bool
}

func newJSONViewer(t *TUI) *jsonViewer {
	v := &jsonViewer{tui: t}

	v.text = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.text.SetBorder(true)
	v.text.SetInputCapture(v.handleInput)

	help := formatting.MakeHelpText("[yellow]↑/↓[white] scroll  [yellow]w[white] wrap  [yellow]s[white] save JSON  [yellow]Esc[white] back  [yellow]Ctrl+C[white] quit")
	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.text, 0, 1, true).
		AddItem(help, 3, 0, false)

	t.pages.AddPage(pageJSON, page, true, false)
	return v
}

func (v *jsonViewer) show(a activity.Activity) {
	data, err := indentActivity(a)
	if err != nil {
		v.tui.showError(fmt.Sprintf("Failed to render JSON: %v", err))
		return
	}

	v.title = fmt.Sprintf("Activity %d %s", a.ID, a.Name)
	v.data = data
	v.back, _ = v.tui.pages.GetFrontPage()

	v.text.SetTitle(tview.Escape(v.title))
	v.text.SetText(tview.Escape(string(data)))
	v.text.ScrollToBeginning()
	v.tui.pages.SwitchToPage(pageJSON)
	v.tui.app.SetFocus(v.text)
}

func (v *jsonViewer) close() {
	back := v.back
	if back == "" {
		back = pageActivities
	}
	v.tui.pages.SwitchToPage(back)
	if back == pageDetail {
		v.tui.app.SetFocus(v.tui.detail)
	} else {
		v.tui.app.SetFocus(v.tui.table)
	}
}

// save writes the shown payload to a timestamped file in the working
// directory.
func (v *jsonViewer) save() {
	if len(v.data) == 0 {
		return
	}
	data := v.data
	filename := formatting.GenerateJSONFilename(v.title, time.Now())

	go func() {
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			v.tui.showError(fmt.Sprintf("Failed to save JSON: %v", err))
			return
		}
		v.tui.logger.Info("saved activity JSON", "file", filename)
		v.tui.showInfo(fmt.Sprintf("JSON saved to %s", filename))
	}()
}

func (v *jsonViewer) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		v.close()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 's', 'S':
			v.save()
			return nil
		case 'w', 'W':
			v.wrap = !v.wrap
			v.text.SetWrap(v.wrap)
			return nil
		}
	}
	return event
}

// indentActivity pretty-prints the payload the API returned for a, or the
// stored record when no payload was kept.
func indentActivity(a activity.Activity) ([]byte, error) {
	if len(a.Raw) == 0 {
		return json.MarshalIndent(a, "", "  ")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, a.Raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *TUI) showJSON(a activity.Activity) {
	t.jsonViewer.show(a)
}
