package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/config"
	"github.com/robert-malhotra/go-strava-client/pkg/filter"
)

func testActivities() []activity.Activity {
	return []activity.Activity{
		{ID: 1, Name: "Morning Run", Type: "Run", Distance: 10000, MovingTime: 3000,
			StartDate: time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Commute", Type: "Ride", Distance: 12000, MovingTime: 1800, Commute: true,
			StartDate: time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "Long Run", Type: "Run", Distance: 21000, MovingTime: 7500,
			StartDate: time.Date(2024, 2, 25, 7, 0, 0, 0, time.UTC)},
	}
}

func ids(list []activity.Activity) []int64 {
	out := make([]int64, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func mustParse(t *testing.T, source string) filter.Expr {
	t.Helper()
	expr, err := filter.Parse(source)
	require.NoError(t, err)
	return expr
}

func TestActivityViewDefaults(t *testing.T) {
	v := newActivityView()
	require.NoError(t, v.setActivities(context.Background(), testActivities()))

	assert.Equal(t, []int64{2, 1, 3}, ids(v.shown))
	assert.Equal(t, "Activities (3 of 3) by date ↓", v.title())
	assert.Contains(t, v.status(config.Metric), "3 activities")
}

func TestActivityViewFilter(t *testing.T) {
	ctx := context.Background()
	v := newActivityView()
	all := testActivities()
	require.NoError(t, v.setActivities(ctx, all))

	require.NoError(t, v.setFilter(ctx, ` type = "Run" `))
	assert.Equal(t, []int64{1, 3}, ids(v.shown))
	assert.Equal(t, `type = "Run"`, v.source)
	assert.Equal(t, `Activities (2 of 3) by date ↓ – type = "Run"`, v.title())

	// The unfiltered list is not reordered by sorting the view.
	v.setSort(activity.SortDistance)
	assert.Equal(t, []int64{1, 3}, ids(v.shown))
	assert.Equal(t, int64(1), all[0].ID)

	require.NoError(t, v.setFilter(ctx, ""))
	assert.Equal(t, []int64{1, 2, 3}, ids(v.shown))
	assert.Nil(t, v.filter)
}

func TestActivityViewInvalidFilter(t *testing.T) {
	ctx := context.Background()
	v := newActivityView()
	require.NoError(t, v.setActivities(ctx, testActivities()))

	err := v.setFilter(ctx, "distance >")
	require.EqualError(t, err, "unknown left token: Eol at 10")
	assert.Empty(t, v.shown)
	assert.Equal(t, "[red]Filter error:[white] unknown left token: Eol at 10", v.status(config.Metric))

	// Reloading keeps the view empty until the filter is fixed.
	assert.Error(t, v.setActivities(ctx, testActivities()))
	assert.Empty(t, v.shown)

	err = v.setFilter(ctx, "cadence > 80")
	require.EqualError(t, err, "Unknown variable 'cadence'")
	assert.Empty(t, v.shown)

	require.NoError(t, v.setFilter(ctx, "commute"))
	assert.Equal(t, []int64{2}, ids(v.shown))
	assert.NoError(t, v.err)
}

func TestActivityViewSort(t *testing.T) {
	v := newActivityView()
	require.NoError(t, v.setActivities(context.Background(), testActivities()))

	v.setSort(activity.SortDistance)
	assert.Equal(t, []int64{1, 2, 3}, ids(v.shown))
	assert.False(t, v.desc)

	v.reverse()
	assert.Equal(t, []int64{3, 2, 1}, ids(v.shown))
	assert.Equal(t, "Activities (3 of 3) by distance ↓", v.title())

	v.setSort(activity.SortName)
	assert.Equal(t, []int64{2, 3, 1}, ids(v.shown))

	v.setSort(activity.SortDate)
	assert.True(t, v.desc)
	assert.Equal(t, []int64{2, 1, 3}, ids(v.shown))

	a, ok := v.at(0)
	assert.True(t, ok)
	assert.Equal(t, int64(2), a.ID)
	_, ok = v.at(3)
	assert.False(t, ok)
	_, ok = v.at(-1)
	assert.False(t, ok)
}

func TestParseFeedback(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "  ", "[gray]An empty filter shows every activity.[-]"},
		{"valid", "distance > 5km", "[green]OK[-] (distance > 5kmph)"},
		{
			"error at end",
			"distance >",
			"distance >[black:red] [-:-]\n[red]unknown left token: Eol at 10[-]",
		},
		{
			"error inside",
			"10 furlongs",
			"10 [black:red]f[-:-]urlongs\n[red]unknown unit: furlongs at 3[-]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFeedback(tt.source))
		})
	}
}

func TestParseFeedbackUnknownFields(t *testing.T) {
	got := parseFeedback("cadence > 80 and cadence < 90 or distance > 1mi")
	assert.Contains(t, got, "[green]OK[-]")
	assert.Contains(t, got, "Unknown fields: cadence[-]")

	assert.Equal(t, []string{"cadence", "power"}, unknownVariables(mustParse(t, "cadence > power and heartrate > 1")))
	assert.Empty(t, unknownVariables(mustParse(t, "distance > 5km")))
}

func TestIndentActivity(t *testing.T) {
	got, err := indentActivity(activity.Activity{ID: 7, Raw: []byte(`{"id":7,"name":"x"}`)})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": 7,\n  \"name\": \"x\"\n}", string(got))

	got, err = indentActivity(activity.Activity{ID: 8, Name: "stored"})
	require.NoError(t, err)
	assert.Contains(t, string(got), `"name": "stored"`)

	_, err = indentActivity(activity.Activity{Raw: []byte(`{`)})
	assert.Error(t, err)
}
