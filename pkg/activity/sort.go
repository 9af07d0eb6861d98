package activity

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the column activities are ordered by.
type SortKey int

const (
	SortDate SortKey = iota
	SortName
	SortType
	SortDistance
	SortTime
	SortPace
	SortHeartrate
	SortElevation
	SortKudos
)

var sortKeyNames = [...]string{
	SortDate:      "date",
	SortName:      "name",
	SortType:      "type",
	SortDistance:  "distance",
	SortTime:      "time",
	SortPace:      "pace",
	SortHeartrate: "heartrate",
	SortElevation: "elevation",
	SortKudos:     "kudos",
}

// SortKeys returns every key in column order.
func SortKeys() []SortKey {
	keys := make([]SortKey, len(sortKeyNames))
	for i := range keys {
		keys[i] = SortKey(i)
	}
	return keys
}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// ParseSortKey resolves a key by name, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	for i, name := range sortKeyNames {
		if strings.EqualFold(s, name) {
			return SortKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sort key %q (want one of %s)", s, strings.Join(sortKeyNames[:], ", "))
}

// Sort orders list in place. Ties keep their relative order and fall back
// to the ID so the result is deterministic.
func Sort(list []Activity, key SortKey, desc bool) {
	slices.SortStableFunc(list, func(a, b Activity) int {
		c := compareBy(key, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
}

func compareBy(key SortKey, a, b Activity) int {
	switch key {
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortType:
		return strings.Compare(a.Type, b.Type)
	case SortDistance:
		return cmp.Compare(a.Distance, b.Distance)
	case SortTime:
		return cmp.Compare(a.MovingTime, b.MovingTime)
	case SortPace:
		return cmp.Compare(a.Pace(), b.Pace())
	case SortHeartrate:
		return cmp.Compare(a.AverageHeartrate, b.AverageHeartrate)
	case SortElevation:
		return cmp.Compare(a.ElevationGain, b.ElevationGain)
	case SortKudos:
		return cmp.Compare(a.KudosCount, b.KudosCount)
	default:
		return a.StartDate.Compare(b.StartDate)
	}
}
