package formatting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
)

func TestUnits(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"distance metric", Distance(10021.4, config.Metric), "10.02 km"},
		{"distance large", Distance(1234567, config.Metric), "1,234.57 km"},
		{"distance imperial", Distance(1609.344, config.Imperial), "1.00 mi"},
		{"pace metric", Pace(330, config.Metric), "5:30/km"},
		{"pace imperial", Pace(300, config.Imperial), "8:03/mi"},
		{"pace zero", Pace(0, config.Metric), "-"},
		{"speed metric", Speed(24000, config.Metric), "24.0 km/h"},
		{"speed imperial", Speed(16093.44, config.Imperial), "10.0 mph"},
		{"elevation metric", Elevation(1234.4, config.Metric), "1,234 m"},
		{"elevation imperial", Elevation(100, config.Imperial), "328 ft"},
		{"duration short", Duration(330), "5:30"},
		{"duration long", Duration(3723), "1:02:03"},
		{"duration negative", Duration(-5), "0:00"},
		{"heartrate", Heartrate(148.3), "148 bpm"},
		{"heartrate missing", Heartrate(0), "-"},
		{"count", Count(12345), "12,345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDate(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	got := Date(time.Date(2024, 3, 4, 6, 30, 0, 0, time.UTC), now)
	assert.Equal(t, "Mon 2024-03-04 06:30 (3 days ago)", got)
	assert.Equal(t, "-", Date(time.Time{}, now))
}

func TestFormatActivityDetails(t *testing.T) {
	a := activity.Activity{
		ID: 42, Name: "Commute", Type: "Ride", SportType: "EBikeRide",
		StartDate: time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC),
		Distance:  12040, MovingTime: 1815, Commute: true, Private: true,
	}
	text := FormatActivityDetails(a, config.Metric, a.StartDate.Add(time.Hour))

	assert.Contains(t, text, "[yellow]Name:         [white]Commute\n")
	assert.Contains(t, text, "Ride (EBikeRide)")
	assert.Contains(t, text, "12.04 km")
	assert.Contains(t, text, "30:15")
	assert.Contains(t, text, "commute, private")
	assert.NotContains(t, text, "Timezone:")
}

func TestFormatTotals(t *testing.T) {
	got := FormatTotals(activity.Totals{Count: 1, Distance: 10000, MovingTime: 3000}, config.Metric)
	assert.Equal(t, "1 activity  |  10.00 km  |  50:00  |  0 m elevation  |  avg pace 5:00/km", got)
}

func TestRowMatchesHeaders(t *testing.T) {
	row := Row(activity.Activity{Name: "x"}, config.Metric)
	assert.Len(t, row, len(RowHeaders))
	assert.Len(t, RowHeaders, len(activity.SortKeys()))
}

func TestRenderWeeklyChart(t *testing.T) {
	start := time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)
	weeks := []activity.Week{
		{Start: start, Distance: 10000, Count: 1},
		{Start: start.AddDate(0, 0, 7), Distance: 20000, Count: 2},
		{Start: start.AddDate(0, 0, 14)},
	}
	lines := strings.Split(strings.TrimRight(RenderWeeklyChart(weeks, config.Metric, 10), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], strings.Repeat("█", 5)+strings.Repeat("·", 5))
	assert.Contains(t, lines[1], strings.Repeat("█", 10))
	assert.Contains(t, lines[2], strings.Repeat("·", 10))
	assert.Contains(t, lines[1], "20.00 km")
	assert.Equal(t, "No activities", RenderWeeklyChart(nil, config.Metric, 10))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "morning-run", Slugify("Morning Run!"))
	assert.Equal(t, "activity_20240304_063000.json",
		GenerateJSONFilename("  ", time.Date(2024, 3, 4, 6, 30, 0, 0, time.UTC)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Morning Run", Truncate("Morning Run", 20))
	assert.Equal(t, "Morn…", Truncate("Morning Run", 5))
	assert.Equal(t, "…", Truncate("Morning Run", 1))
}
