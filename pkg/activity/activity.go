// Package activity holds the activity record model and the glue between
// records and the filter expression engine.
package activity

import (
	"strings"
	"time"
)

// Activity is one recorded workout as returned by the remote API.
// Distances are meters, durations seconds and speeds meters per second.
type Activity struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	SportType        string    `json:"sport_type"`
	StartDate        time.Time `json:"start_date"`
	Timezone         string    `json:"timezone,omitempty"`
	Distance         float64   `json:"distance"`
	MovingTime       int64     `json:"moving_time"`
	ElapsedTime      int64     `json:"elapsed_time"`
	ElevationGain    float64   `json:"total_elevation_gain"`
	AverageSpeed     float64   `json:"average_speed"`
	MaxSpeed         float64   `json:"max_speed"`
	AverageHeartrate float64   `json:"average_heartrate,omitempty"`
	MaxHeartrate     float64   `json:"max_heartrate,omitempty"`
	KudosCount       int64     `json:"kudos_count"`
	CommentCount     int64     `json:"comment_count"`
	Commute          bool      `json:"commute"`
	Trainer          bool      `json:"trainer"`
	Private          bool      `json:"private"`

	// Raw is the payload the record was decoded from, kept for the JSON view.
	Raw []byte `json:"-"`
}

// Pace returns seconds per kilometer, or 0 when no distance was covered.
func (a Activity) Pace() float64 {
	if a.Distance <= 0 {
		return 0
	}
	return float64(a.MovingTime) / (a.Distance / 1000)
}

// Speed returns the average speed in meters per hour. When the API did not
// report one it is derived from distance and moving time.
func (a Activity) Speed() float64 {
	if a.AverageSpeed > 0 {
		return a.AverageSpeed * 3600
	}
	if a.MovingTime <= 0 {
		return 0
	}
	return a.Distance / float64(a.MovingTime) * 3600
}

// LocalDate is the start date in the activity's own zone when known.
func (a Activity) LocalDate() time.Time {
	if loc := a.location(); loc != nil {
		return a.StartDate.In(loc)
	}
	return a.StartDate
}

// location parses the API's "(GMT+01:00) Europe/Paris" zone form.
func (a Activity) location() *time.Location {
	tz := a.Timezone
	if i := strings.LastIndexByte(tz, ' '); i >= 0 {
		tz = tz[i+1:]
	}
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil
	}
	return loc
}
