package activity

import "time"

// Week is one bucket of the weekly distance chart.
type Week struct {
	Start    time.Time // Monday 00:00 in the caller's zone
	Distance float64   // meters
	Count    int
}

// WeeklyDistance sums distance per ISO week for the given number of weeks
// ending with the week containing now. The oldest week comes first.
func WeeklyDistance(list []Activity, weeks int, now time.Time) []Week {
	if weeks <= 0 {
		return nil
	}
	current := weekStart(now)
	out := make([]Week, weeks)
	for i := range out {
		out[i].Start = current.AddDate(0, 0, -7*(weeks-1-i))
	}

	first := out[0].Start
	for _, a := range list {
		start := a.StartDate.In(now.Location())
		if start.Before(first) {
			continue
		}
		idx := int(weekStart(start).Sub(first).Hours()/24+0.5) / 7
		if idx < 0 || idx >= weeks {
			continue
		}
		out[idx].Distance += a.Distance
		out[idx].Count++
	}
	return out
}

func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Totals aggregates a list of activities.
type Totals struct {
	Count         int
	Distance      float64 // meters
	MovingTime    int64   // seconds
	ElevationGain float64 // meters
	Kudos         int64
}

// Pace is the overall seconds per kilometer, or 0 without distance.
func (t Totals) Pace() float64 {
	if t.Distance <= 0 {
		return 0
	}
	return float64(t.MovingTime) / (t.Distance / 1000)
}

// Summary totals list.
func Summary(list []Activity) Totals {
	var t Totals
	for _, a := range list {
		t.Count++
		t.Distance += a.Distance
		t.MovingTime += a.MovingTime
		t.ElevationGain += a.ElevationGain
		t.Kudos += a.KudosCount
	}
	return t
}
