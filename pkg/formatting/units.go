// Package formatting renders activity values for the CLI and the TUI.
package formatting

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/robert-malhotra/go-strava-client/pkg/config"
)

const (
	metersPerMile = 1609.344
	feetPerMeter  = 3.28084
)

// Distance renders meters as kilometers or miles.
func Distance(meters float64, units config.Units) string {
	if units == config.Imperial {
		return fmt.Sprintf("%s mi", humanize.FormatFloat("#,###.##", meters/metersPerMile))
	}
	return fmt.Sprintf("%s km", humanize.FormatFloat("#,###.##", meters/1000))
}

// Pace renders seconds per kilometer as m:ss per km or per mile.
// A zero pace renders as "-".
func Pace(secPerKm float64, units config.Units) string {
	if secPerKm <= 0 || math.IsInf(secPerKm, 0) {
		return "-"
	}
	suffix := "/km"
	if units == config.Imperial {
		secPerKm *= metersPerMile / 1000
		suffix = "/mi"
	}
	total := int64(math.Round(secPerKm))
	return fmt.Sprintf("%d:%02d%s", total/60, total%60, suffix)
}

// Speed renders meters per hour as km/h or mph.
func Speed(metersPerHour float64, units config.Units) string {
	if units == config.Imperial {
		return fmt.Sprintf("%.1f mph", metersPerHour/metersPerMile)
	}
	return fmt.Sprintf("%.1f km/h", metersPerHour/1000)
}

// Elevation renders meters as meters or feet.
func Elevation(meters float64, units config.Units) string {
	if units == config.Imperial {
		return fmt.Sprintf("%s ft", humanize.Comma(int64(math.Round(meters*feetPerMeter))))
	}
	return fmt.Sprintf("%s m", humanize.Comma(int64(math.Round(meters))))
}

// Duration renders seconds as h:mm:ss, or m:ss below an hour.
func Duration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Heartrate renders beats per minute, or "-" when not recorded.
func Heartrate(bpm float64) string {
	if bpm <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f bpm", bpm)
}

// Date renders a start time as its date plus a relative hint such as
// "3 days ago".
func Date(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Format("Mon 2006-01-02 15:04"), humanize.RelTime(t, now, "ago", "from now"))
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}
