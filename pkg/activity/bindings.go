package activity

import (
	"time"

	"github.com/robert-malhotra/go-strava-client/pkg/filter"
)

// Fields lists the variable names Vars binds, in display order.
var Fields = []string{
	"distance", "time", "duration", "elapsed", "pace", "speed", "maxspeed",
	"heartrate", "maxheartrate", "elevation", "kudos", "comments",
	"type", "sport", "name", "date", "year", "month", "weekday",
	"commute", "trainer", "private",
}

// Vars builds the binding context a filter is evaluated against. Distances
// are meters, speeds meters per hour, pace seconds per kilometer and dates
// YYYY-MM-DD strings in the activity's local zone.
func Vars(a Activity) filter.Vars {
	local := a.LocalDate()
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	return filter.Vars{
		"distance":     filter.NumberValue(a.Distance),
		"time":         filter.NumberValue(float64(a.MovingTime)),
		"duration":     filter.NumberValue(float64(a.MovingTime)),
		"elapsed":      filter.NumberValue(float64(a.ElapsedTime)),
		"pace":         filter.NumberValue(a.Pace()),
		"speed":        filter.NumberValue(a.Speed()),
		"maxspeed":     filter.NumberValue(a.MaxSpeed * 3600),
		"heartrate":    filter.NumberValue(a.AverageHeartrate),
		"maxheartrate": filter.NumberValue(a.MaxHeartrate),
		"elevation":    filter.NumberValue(a.ElevationGain),
		"kudos":        filter.NumberValue(float64(a.KudosCount)),
		"comments":     filter.NumberValue(float64(a.CommentCount)),
		"type":         filter.StringValue(a.Type),
		"sport":        filter.StringValue(a.SportType),
		"name":         filter.StringValue(a.Name),
		"date":         filter.StringValue(local.Format(time.DateOnly)),
		"year":         filter.NumberValue(float64(local.Year())),
		"month":        filter.NumberValue(float64(local.Month())),
		"weekday":      filter.NumberValue(float64(weekday)),
		"commute":      filter.BoolValue(a.Commute),
		"trainer":      filter.BoolValue(a.Trainer),
		"private":      filter.BoolValue(a.Private),
	}
}
