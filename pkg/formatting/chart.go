package formatting

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
)

// RenderWeeklyChart draws one horizontal bar per week scaled to the
// longest week, using tview color tags.
func RenderWeeklyChart(weeks []activity.Week, units config.Units, barWidth int) string {
	if len(weeks) == 0 {
		return "No activities"
	}
	if barWidth < 1 {
		barWidth = 40
	}

	var longest float64
	for _, w := range weeks {
		longest = max(longest, w.Distance)
	}

	var builder strings.Builder
	for _, w := range weeks {
		filled := 0
		if longest > 0 {
			filled = int(w.Distance / longest * float64(barWidth))
		}
		if filled == 0 && w.Distance > 0 {
			filled = 1
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("·", barWidth-filled)
		builder.WriteString(fmt.Sprintf("[yellow]%s[white] [green]%s[white] %10s  (%d)\n",
			w.Start.Format("2006-01-02"), bar, Distance(w.Distance, units), w.Count))
	}
	return builder.String()
}
