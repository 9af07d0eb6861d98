package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
	"github.com/robert-malhotra/go-strava-client/pkg/filter"
	"github.com/robert-malhotra/go-strava-client/pkg/formatting"
)

// activityView is the table model: every stored activity plus the active
// filter and sort order. Only the UI goroutine touches it.
type activityView struct {
	all    []activity.Activity
	shown  []activity.Activity
	source string
	filter *filter.Filter
	err    error
	key    activity.SortKey
	desc   bool
}

func newActivityView() *activityView {
	return &activityView{key: activity.SortDate, desc: true}
}

func (v *activityView) setActivities(ctx context.Context, list []activity.Activity) error {
	v.all = list
	return v.apply(ctx)
}

// setFilter compiles source and reapplies it. An empty source clears the
// filter. An invalid expression empties the view and is kept in err until
// the next successful filter.
func (v *activityView) setFilter(ctx context.Context, source string) error {
	v.source = strings.TrimSpace(source)
	v.filter = nil
	if v.source != "" {
		f, err := filter.Compile(v.source)
		if err != nil {
			v.err = err
			v.shown = nil
			return err
		}
		v.filter = f
	}
	return v.apply(ctx)
}

func (v *activityView) apply(ctx context.Context) error {
	if v.source != "" && v.filter == nil {
		v.shown = nil
		return v.err
	}
	v.err = nil
	shown, err := activity.Apply(ctx, v.all, v.filter)
	if err != nil {
		v.err = err
		v.shown = nil
		return err
	}
	v.shown = slices.Clone(shown)
	activity.Sort(v.shown, v.key, v.desc)
	return nil
}

// setSort orders by key: newest first for dates, ascending otherwise.
func (v *activityView) setSort(key activity.SortKey) {
	v.key = key
	v.desc = key == activity.SortDate
	activity.Sort(v.shown, v.key, v.desc)
}

func (v *activityView) reverse() {
	v.desc = !v.desc
	activity.Sort(v.shown, v.key, v.desc)
}

func (v *activityView) at(i int) (activity.Activity, bool) {
	if i < 0 || i >= len(v.shown) {
		return activity.Activity{}, false
	}
	return v.shown[i], true
}

func (v *activityView) title() string {
	dir := "↑"
	if v.desc {
		dir = "↓"
	}
	title := fmt.Sprintf("Activities (%d of %d) by %s %s", len(v.shown), len(v.all), v.key, dir)
	if v.source != "" {
		title += " – " + formatting.Truncate(v.source, 60)
	}
	return title
}

// status is the banner under the table: the filter error when there is
// one, the totals of the visible activities otherwise.
func (v *activityView) status(units config.Units) string {
	if v.err != nil {
		return "[red]Filter error:[white] " + tview.Escape(v.err.Error())
	}
	return tview.Escape(formatting.FormatTotals(activity.Summary(v.shown), units))
}

// parseFeedback renders the live result of parsing source for the filter
// dialog: the rendered AST on success, or the source with the failing
// offset highlighted.
func parseFeedback(source string) string {
	if strings.TrimSpace(source) == "" {
		return "[gray]An empty filter shows every activity.[-]"
	}
	expr, err := filter.Parse(source)
	if err != nil {
		var ferr *filter.Error
		msg := "[red]" + tview.Escape(err.Error()) + "[-]"
		if !errors.As(err, &ferr) || ferr.Offset < 0 {
			return msg
		}
		return markOffset(source, ferr.Offset) + "\n" + msg
	}

	text := "[green]OK[-] " + tview.Escape(expr.String())
	if unknown := unknownVariables(expr); len(unknown) > 0 {
		text += fmt.Sprintf("\n[yellow]Unknown fields: %s[-]\n[gray]Known: %s[-]",
			strings.Join(unknown, ", "), strings.Join(activity.Fields, ", "))
	}
	return text
}

func markOffset(source string, offset int) string {
	offset = min(max(offset, 0), len(source))
	at := " "
	rest := source[offset:]
	if rest != "" {
		_, size := utf8.DecodeRuneInString(rest)
		at, rest = rest[:size], rest[size:]
	}
	return tview.Escape(source[:offset]) + "[black:red]" + tview.Escape(at) + "[-:-]" + tview.Escape(rest)
}

// unknownVariables lists the names expr reads that no activity binds.
func unknownVariables(expr filter.Expr) []string {
	var names []string
	var walk func(filter.Expr)
	walk = func(e filter.Expr) {
		switch e := e.(type) {
		case filter.Variable:
			if !slices.Contains(activity.Fields, e.Name) && !slices.Contains(names, e.Name) {
				names = append(names, e.Name)
			}
		case filter.Quantity:
			walk(e.Value)
		case filter.Binary:
			walk(e.Left)
			walk(e.Right)
		}
	}
	walk(expr)
	return names
}
