package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
	"github.com/robert-malhotra/go-strava-client/pkg/formatting"
)

const nameColumnWidth = 32

func printJSONArray(w io.Writer, entries [][]byte) error {
	if _, err := fmt.Fprintln(w, "["); err != nil {
		return err
	}
	for i, entry := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w, ","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, string(entry)); err != nil {
			return err
		}
	}
	if len(entries) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "]")
	return err
}

func printActivityTable(w io.Writer, list []activity.Activity, units config.Units) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No matching activities.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(formatting.RowHeaders, "\t")))
	for _, a := range list {
		row := formatting.Row(a, units)
		row[1] = runewidth.Truncate(row[1], nameColumnWidth, "…")
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", formatting.FormatTotals(activity.Summary(list), units))
	return err
}

// caretLine renders source with a caret under the byte offset, counting
// display columns so wide runes line up.
func caretLine(source string, offset int) string {
	offset = min(max(offset, 0), len(source))
	col := runewidth.StringWidth(source[:offset])
	return "  " + source + "\n  " + strings.Repeat(" ", col) + "^"
}
