package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
)

// pagedServer serves the fixture activities one per page, then an empty page.
func pagedServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	var all []json.RawMessage
	require.NoError(t, json.Unmarshal(loadTestData(t, "activities.json"), &all))

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		if r.URL.Path != "/api/v3/athlete/activities" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Authorization Error"}`))
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		if page < 1 || page > len(all) {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte("[" + string(all[page-1]) + "]"))
	}))
}

func authorized(t *testing.T, server *httptest.Server) *Client {
	c, err := NewClient(server.URL+"/api/v3",
		WithMiddleware(BearerToken(StaticToken{AccessToken: "secret"})))
	require.NoError(t, err)
	return c
}

func TestListActivities(t *testing.T) {
	var requests atomic.Int32
	server := pagedServer(t, &requests)
	defer server.Close()

	var got []*activity.Activity
	for a, err := range authorized(t, server).ListActivities(context.Background(), ListOptions{PerPage: 1}) {
		require.NoError(t, err)
		got = append(got, a)
	}

	require.Len(t, got, 3)
	assert.Equal(t, int32(4), requests.Load(), "three pages and a final empty one")

	run := got[0]
	assert.Equal(t, int64(10874512001), run.ID)
	assert.Equal(t, "Morning Run", run.Name)
	assert.Equal(t, "Run", run.Type)
	assert.Equal(t, time.Date(2024, 3, 4, 6, 30, 12, 0, time.UTC), run.StartDate)
	assert.Equal(t, "(GMT+01:00) Europe/Paris", run.Timezone)
	assert.InDelta(t, 10021.4, run.Distance, 1e-9)
	assert.Equal(t, int64(3312), run.MovingTime)
	assert.InDelta(t, 148.3, run.AverageHeartrate, 1e-9)
	assert.Equal(t, int64(4), run.KudosCount)
	assert.NotEmpty(t, run.Raw)
	assert.True(t, json.Valid(run.Raw))

	ride := got[1]
	assert.Equal(t, "EBikeRide", ride.SportType)
	assert.True(t, ride.Commute)
	assert.True(t, ride.Private)

	yoga := got[2]
	assert.Equal(t, "Yoga", yoga.SportType, "sport type falls back to type")
	assert.True(t, yoga.Trainer)
}

func TestListActivitiesEarlyStop(t *testing.T) {
	var requests atomic.Int32
	server := pagedServer(t, &requests)
	defer server.Close()

	for a, err := range authorized(t, server).ListActivities(context.Background(), ListOptions{PerPage: 1}) {
		require.NoError(t, err)
		require.NotNil(t, a)
		break
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestListActivitiesQuery(t *testing.T) {
	var query atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.RawQuery)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	after := time.Unix(1700000000, 0)
	for _, err := range c.ListActivities(context.Background(), ListOptions{After: after, PerPage: 500}) {
		require.NoError(t, err)
	}
	assert.Equal(t, "after=1700000000&page=1&per_page=200", query.Load())
}

func TestListActivitiesUnauthorized(t *testing.T) {
	server := pagedServer(t, nil)
	defer server.Close()

	c, err := NewClient(server.URL + "/api/v3")
	require.NoError(t, err)

	var errs []error
	for a, err := range c.ListActivities(context.Background(), ListOptions{}) {
		assert.Nil(t, a)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	var apiErr *APIError
	require.ErrorAs(t, errs[0], &apiErr)
	assert.True(t, apiErr.Unauthorized())
}

func TestListActivitiesBadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"not an array", `{"id": 1}`, "error decoding activities page 1"},
		{"missing id", `[{"name": "x"}]`, "activity without id"},
		{"bad date", `[{"id": 1, "start_date": "yesterday"}]`, "activity 1: invalid start_date"},
		{"not json", `<html>`, "error decoding response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := NewClient(server.URL)
			require.NoError(t, err)
			var gotErr error
			for _, err := range c.ListActivities(context.Background(), ListOptions{}) {
				gotErr = err
			}
			assert.ErrorContains(t, gotErr, tt.msg)
		})
	}
}

func TestGetActivity(t *testing.T) {
	body := loadTestData(t, "activity.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/activities/10874512001":
			w.Write(body)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Record Not Found","errors":[{"resource":"Activity","field":"id","code":"not found"}]}`))
		}
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	a, err := c.GetActivity(context.Background(), 10874512001)
	require.NoError(t, err)
	assert.Equal(t, "Morning Run", a.Name)
	assert.Contains(t, string(a.Raw), "Garmin Forerunner 255")

	_, err = c.GetActivity(context.Background(), 42)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Record Not Found", apiErr.Message)

	_, err = c.GetActivity(context.Background(), 0)
	assert.EqualError(t, err, "activity ID must be positive, got 0")
}
