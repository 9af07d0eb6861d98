package client

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fastjson"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
)

// DefaultPageSize is used when ListOptions.PerPage is unset.
const DefaultPageSize = 100

// maxPageSize is the largest page the API serves.
const maxPageSize = 200

// ListOptions narrows ListActivities.
type ListOptions struct {
	After   time.Time // only activities that started after this instant
	Before  time.Time // only activities that started before this instant
	PerPage int
}

func (o ListOptions) query(page int) url.Values {
	q := url.Values{}
	perPage := o.PerPage
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	perPage = min(perPage, maxPageSize)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if !o.After.IsZero() {
		q.Set("after", strconv.FormatInt(o.After.Unix(), 10))
	}
	if !o.Before.IsZero() {
		q.Set("before", strconv.FormatInt(o.Before.Unix(), 10))
	}
	return q
}

// ListActivities iterates over the authenticated athlete's activities,
// fetching pages on demand until the API returns an empty page.
func (c *Client) ListActivities(ctx context.Context, opts ListOptions) iter.Seq2[*activity.Activity, error] {
	return func(yield func(*activity.Activity, error) bool) {
		for page := 1; ; page++ {
			u := c.baseURL.JoinPath("athlete", "activities")
			u.RawQuery = opts.query(page).Encode()

			var items []*activity.Activity
			err := c.getJSON(ctx, u, func(v *fastjson.Value) error {
				arr, err := v.Array()
				if err != nil {
					return fmt.Errorf("error decoding activities page %d: %w", page, err)
				}
				items = make([]*activity.Activity, 0, len(arr))
				for _, item := range arr {
					a, err := decodeActivity(item)
					if err != nil {
						return fmt.Errorf("error decoding activities page %d: %w", page, err)
					}
					items = append(items, a)
				}
				return nil
			})
			if err != nil {
				yield(nil, err)
				return
			}
			if len(items) == 0 {
				return // done
			}
			c.log().Debug("fetched activities page", "page", page, "count", len(items))

			for _, a := range items {
				if !yield(a, nil) {
					return // consumer stopped
				}
			}
		}
	}
}

// GetActivity fetches a single activity by ID.
func (c *Client) GetActivity(ctx context.Context, id int64) (*activity.Activity, error) {
	if id <= 0 {
		return nil, fmt.Errorf("activity ID must be positive, got %d", id)
	}
	u := c.baseURL.JoinPath("activities", strconv.FormatInt(id, 10))

	var a *activity.Activity
	err := c.getJSON(ctx, u, func(v *fastjson.Value) error {
		var err error
		a, err = decodeActivity(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// decodeActivity copies everything it needs out of v, which belongs to a
// pooled parser.
func decodeActivity(v *fastjson.Value) (*activity.Activity, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("activity must be an object, got %s", v.Type())
	}
	id := v.GetInt64("id")
	if id == 0 {
		return nil, fmt.Errorf("activity without id")
	}

	a := &activity.Activity{
		ID:               id,
		Name:             string(v.GetStringBytes("name")),
		Type:             string(v.GetStringBytes("type")),
		SportType:        string(v.GetStringBytes("sport_type")),
		Timezone:         string(v.GetStringBytes("timezone")),
		Distance:         v.GetFloat64("distance"),
		MovingTime:       v.GetInt64("moving_time"),
		ElapsedTime:      v.GetInt64("elapsed_time"),
		ElevationGain:    v.GetFloat64("total_elevation_gain"),
		AverageSpeed:     v.GetFloat64("average_speed"),
		MaxSpeed:         v.GetFloat64("max_speed"),
		AverageHeartrate: v.GetFloat64("average_heartrate"),
		MaxHeartrate:     v.GetFloat64("max_heartrate"),
		KudosCount:       v.GetInt64("kudos_count"),
		CommentCount:     v.GetInt64("comment_count"),
		Commute:          v.GetBool("commute"),
		Trainer:          v.GetBool("trainer"),
		Private:          v.GetBool("private"),
		Raw:              v.MarshalTo(nil),
	}
	if a.SportType == "" {
		a.SportType = a.Type
	}

	if raw := v.GetStringBytes("start_date"); len(raw) > 0 {
		start, err := time.Parse(time.RFC3339, string(raw))
		if err != nil {
			return nil, fmt.Errorf("activity %d: invalid start_date: %w", id, err)
		}
		a.StartDate = start
	}
	return a, nil
}
