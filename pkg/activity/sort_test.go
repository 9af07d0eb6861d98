package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort(t *testing.T) {
	tests := []struct {
		key  SortKey
		desc bool
		want []int64
	}{
		{SortDate, false, []int64{3, 1, 2, 4}},
		{SortDate, true, []int64{4, 2, 1, 3}},
		{SortName, false, []int64{2, 3, 1, 4}},
		{SortType, false, []int64{2, 1, 3, 4}},
		{SortDistance, true, []int64{3, 2, 1, 4}},
		{SortTime, false, []int64{2, 1, 4, 3}},
		{SortPace, false, []int64{4, 2, 1, 3}},
		{SortHeartrate, true, []int64{3, 1, 4, 2}},
		{SortElevation, true, []int64{3, 4, 2, 1}},
		{SortKudos, false, []int64{2, 4, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			list := sampleActivities()
			Sort(list, tt.key, tt.desc)
			assert.Equal(t, tt.want, ids(list))
		})
	}
}

func TestParseSortKey(t *testing.T) {
	for _, key := range SortKeys() {
		got, err := ParseSortKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, got)
	}

	got, err := ParseSortKey("Distance")
	require.NoError(t, err)
	assert.Equal(t, SortDistance, got)

	_, err = ParseSortKey("cadence")
	assert.ErrorContains(t, err, `unknown sort key "cadence"`)
	assert.Equal(t, "SortKey(42)", SortKey(42).String())
}

func TestWeeklyDistance(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) // Thursday
	weeks := WeeklyDistance(sampleActivities(), 3, now)
	require.Len(t, weeks, 3)

	assert.Equal(t, time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC), weeks[0].Start)
	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), weeks[1].Start)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), weeks[2].Start)

	assert.Equal(t, 21100.0, weeks[0].Distance)
	assert.Equal(t, 1, weeks[0].Count)
	assert.Zero(t, weeks[1].Distance)
	assert.Equal(t, 22000.0, weeks[2].Distance)
	assert.Equal(t, 3, weeks[2].Count)

	assert.Nil(t, WeeklyDistance(sampleActivities(), 0, now))
}

func TestSummary(t *testing.T) {
	s := Summary(sampleActivities())
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 43100.0, s.Distance)
	assert.Equal(t, int64(16300), s.MovingTime)
	assert.Equal(t, 420.0, s.ElevationGain)
	assert.Equal(t, int64(15), s.Kudos)
	assert.InDelta(t, 16300/43.1, s.Pace(), 1e-9)
	assert.Zero(t, Summary(nil).Pace())
}
