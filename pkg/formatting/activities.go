package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
)

// FormatActivityDetails renders every field of a for a tview text view.
func FormatActivityDetails(a activity.Activity, units config.Units, now time.Time) string {
	var builder strings.Builder
	writeField := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		builder.WriteString(fmt.Sprintf("[yellow]%-14s[white]%s\n", label+":", value))
	}

	writeField("Name", a.Name)
	writeField("ID", fmt.Sprintf("%d", a.ID))
	sport := a.Type
	if a.SportType != "" && a.SportType != a.Type {
		sport = fmt.Sprintf("%s (%s)", a.Type, a.SportType)
	}
	writeField("Type", sport)
	writeField("Date", Date(a.LocalDate(), now))
	writeField("Timezone", a.Timezone)
	writeField("Distance", Distance(a.Distance, units))
	writeField("Moving time", Duration(a.MovingTime))
	writeField("Elapsed time", Duration(a.ElapsedTime))
	writeField("Pace", Pace(a.Pace(), units))
	writeField("Speed", Speed(a.Speed(), units))
	writeField("Max speed", Speed(a.MaxSpeed*3600, units))
	writeField("Elevation", Elevation(a.ElevationGain, units))
	writeField("Heart rate", Heartrate(a.AverageHeartrate))
	writeField("Max HR", Heartrate(a.MaxHeartrate))
	writeField("Kudos", Count(a.KudosCount))
	writeField("Comments", Count(a.CommentCount))

	var flags []string
	if a.Commute {
		flags = append(flags, "commute")
	}
	if a.Trainer {
		flags = append(flags, "trainer")
	}
	if a.Private {
		flags = append(flags, "private")
	}
	writeField("Flags", strings.Join(flags, ", "))
	return builder.String()
}

// FormatTotals renders a one-line summary of t.
func FormatTotals(t activity.Totals, units config.Units) string {
	noun := "activities"
	if t.Count == 1 {
		noun = "activity"
	}
	return fmt.Sprintf("%s %s  |  %s  |  %s  |  %s elevation  |  avg pace %s",
		Count(int64(t.Count)), noun,
		Distance(t.Distance, units),
		Duration(t.MovingTime),
		Elevation(t.ElevationGain, units),
		Pace(t.Pace(), units))
}

// Row is one line of the activity table.
func Row(a activity.Activity, units config.Units) []string {
	return []string{
		a.LocalDate().Format("2006-01-02"),
		a.Name,
		a.Type,
		Distance(a.Distance, units),
		Duration(a.MovingTime),
		Pace(a.Pace(), units),
		Heartrate(a.AverageHeartrate),
		Elevation(a.ElevationGain, units),
		Count(a.KudosCount),
	}
}

// RowHeaders label Row's columns; they follow activity.SortKeys order.
var RowHeaders = []string{"Date", "Name", "Type", "Distance", "Time", "Pace", "HR", "Elev", "Kudos"}
