package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/client"
	"github.com/robert-malhotra/go-strava-client/pkg/filter"
	"github.com/robert-malhotra/go-strava-client/pkg/store"
)

type harness struct {
	t      *testing.T
	config string
	db     string
}

func newHarness(t *testing.T, extraYAML string) *harness {
	t.Setenv("STRAVA_CLIENT_ID", "")
	t.Setenv("STRAVA_CLIENT_SECRET", "")
	t.Setenv("STRAVA_CONFIG", "")

	dir := t.TempDir()
	h := &harness{
		t:      t,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "data", "activities.db"),
	}
	yaml := "client_id: \"123\"\nclient_secret: shh\n" + extraYAML
	require.NoError(t, os.WriteFile(h.config, []byte(yaml), 0o600))
	return h
}

func (h *harness) run(args ...string) (string, error) {
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.Writer = &out
	cmd.ErrWriter = &errOut
	full := append([]string{"strava", "--config", h.config, "--database", h.db}, args...)
	err := cmd.Run(context.Background(), full)
	return out.String(), err
}

func (h *harness) seed(list ...*activity.Activity) {
	require.NoError(h.t, os.MkdirAll(filepath.Dir(h.db), 0o755))
	st, err := store.Open(h.db)
	require.NoError(h.t, err)
	defer st.Close()
	_, err = st.UpsertActivities(context.Background(), list)
	require.NoError(h.t, err)
}

func seedActivities() []*activity.Activity {
	return []*activity.Activity{
		{
			ID: 1, Name: "Morning Run", Type: "Run", SportType: "Run",
			StartDate: time.Date(2024, 3, 4, 6, 30, 0, 0, time.UTC),
			Distance:  10000, MovingTime: 3300, AverageHeartrate: 148,
		},
		{
			ID: 2, Name: "Commute", Type: "Ride", SportType: "Ride",
			StartDate: time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC),
			Distance:  12040, MovingTime: 1815, Commute: true,
		},
		{
			ID: 3, Name: "Long Run", Type: "Run", SportType: "TrailRun",
			StartDate: time.Date(2024, 2, 25, 7, 0, 0, 0, time.UTC),
			Distance:  21100, MovingTime: 7600, ElevationGain: 420, AverageHeartrate: 155,
		},
	}
}

func TestListFilterAndSort(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	out, err := h.run("list", "--filter", "distance > 10km", "--sort", "distance")
	require.NoError(t, err)
	assert.NotContains(t, out, "Morning Run")
	require.Contains(t, out, "Commute")
	require.Contains(t, out, "Long Run")
	assert.Less(t, strings.Index(out, "Commute"), strings.Index(out, "Long Run"))
	assert.Contains(t, out, "2 activities")
	assert.Contains(t, out, "DATE")
}

func TestListDefaultsToNewestFirst(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	out, err := h.run("list", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Commute")
	assert.NotContains(t, out, "Morning Run")
	assert.Contains(t, out, "1 activity")
}

func TestListJSON(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	out, err := h.run("list", "--json", "--filter", `type = "Run"`, "--sort", "date")
	require.NoError(t, err)

	var got []activity.Activity
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestListDefaultFilterFromConfig(t *testing.T) {
	h := newHarness(t, "default_filter: commute\n")
	h.seed(seedActivities()...)

	out, err := h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Commute")
	assert.NotContains(t, out, "Long Run")
}

func TestListFilterErrors(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	_, err := h.run("list", "--filter", "distance >")
	require.Error(t, err)
	assert.Equal(t, "  distance >\n            ^\nunknown left token: Eol at 10", err.Error())

	_, err = h.run("list", "--filter", "cadence > 80")
	assert.EqualError(t, err, "Unknown variable 'cadence'")

	_, err = h.run("list", "--filter", "distance", "--saved", "x")
	assert.EqualError(t, err, "--filter and --saved are mutually exclusive")

	_, err = h.run("list", "--sort", "cadence")
	assert.ErrorContains(t, err, `unknown sort key "cadence"`)

	_, err = h.run("list", "--saved", "missing")
	assert.EqualError(t, err, `no saved filter named "missing"`)
}

func TestFiltersCommands(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	out, err := h.run("filters", "list")
	require.NoError(t, err)
	assert.Equal(t, "No saved filters.\n", out)

	out, err = h.run("filters", "save", "long", "distance > 20km")
	require.NoError(t, err)
	assert.Equal(t, "Saved filter \"long\".\n", out)

	_, err = h.run("filters", "save", "broken", "distance >")
	assert.ErrorContains(t, err, `invalid filter "broken": unknown left token: Eol at 10`)

	out, err = h.run("filters", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "distance > 20km")
	assert.NotContains(t, out, "broken")

	out, err = h.run("list", "--saved", "long")
	require.NoError(t, err)
	assert.Contains(t, out, "Long Run")
	assert.NotContains(t, out, "Commute")

	out, err = h.run("filters", "delete", "long")
	require.NoError(t, err)
	assert.Equal(t, "Deleted filter \"long\".\n", out)

	_, err = h.run("filters", "delete", "long")
	assert.EqualError(t, err, `no saved filter named "long"`)

	_, err = h.run("filters", "save", "only-name")
	assert.EqualError(t, err, "expected 2 arguments: name and expression")
}

func TestEval(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run("eval", "--var", "distance=6000", "--var", "type=Run", "distance > 5km and type = 'Run'")
	require.NoError(t, err)
	assert.Equal(t, "ast:   ((distance > 5kmph) and (type = \"Run\"))\nvalue: true (Bool)\n", out)

	out, err = h.run("eval", "10.2kmph")
	require.NoError(t, err)
	assert.Equal(t, "ast:   10.2kmph\nvalue: 10200 (Number)\n", out)

	out, err = h.run("eval", "--tokens", "5:30 > 300")
	require.NoError(t, err)
	assert.Contains(t, out, "Colon")
	assert.Contains(t, out, "GreaterThan")
	assert.Contains(t, out, "Eol")
	assert.Contains(t, out, "ast:   (330 > 300)\nvalue: true (Bool)\n")

	_, err = h.run("eval", "pace < 5:30")
	assert.EqualError(t, err, "Unknown variable 'pace'")

	_, err = h.run("eval", "10 furlongs")
	assert.EqualError(t, err, "  10 furlongs\n     ^\nunknown unit: furlongs at 3")

	_, err = h.run("eval")
	assert.EqualError(t, err, "expected 1 argument: expression")
}

func TestEvalAgainstStoredActivity(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	out, err := h.run("eval", "--activity", "1", "pace < 06:00 and date = 2024-03-04")
	require.NoError(t, err)
	assert.Contains(t, out, "value: true (Bool)")

	_, err = h.run("eval", "--activity", "99", "true")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestParseVar(t *testing.T) {
	tests := []struct {
		raw     string
		name    string
		want    filter.Value
		wantErr bool
	}{
		{raw: "distance=12000", name: "distance", want: filter.NumberValue(12000)},
		{raw: "commute=TRUE", name: "commute", want: filter.BoolValue(true)},
		{raw: "type=Run", name: "type", want: filter.StringValue("Run")},
		{raw: "name='42'", name: "name", want: filter.StringValue("42")},
		{raw: " pace = 330 ", name: "pace", want: filter.NumberValue(330)},
		{raw: "empty=", name: "empty", want: filter.StringValue("")},
		{raw: "novalue", wantErr: true},
		{raw: "=3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, v, err := parseVar(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCaretLine(t *testing.T) {
	assert.Equal(t, "  a > b\n    ^", caretLine("a > b", 2))
	assert.Equal(t, "  名前 ~ x\n       ^", caretLine("名前 ~ x", 7))
	assert.Equal(t, "  ab\n    ^", caretLine("ab", 99))
}

func TestPrintJSONArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSONArray(&buf, nil))
	assert.Equal(t, "[\n]\n", buf.String())

	buf.Reset()
	require.NoError(t, printJSONArray(&buf, [][]byte{[]byte(`{"id":1}`), []byte(`{"id":2}`)}))
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, buf.String())
}

// fakeAPI serves a token endpoint and one page of activities. Requests that
// carry "after" get an empty page.
func fakeAPI(t *testing.T, refreshes *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			refreshes.Add(1)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			fmt.Fprintf(w, `{"access_token":"fresh","refresh_token":"r2","expires_at":%d}`, time.Now().Add(6*time.Hour).Unix())
		case "/api/v3/athlete/activities":
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if r.URL.Query().Get("page") != "1" || r.URL.Query().Get("after") != "" {
				w.Write([]byte(`[]`))
				return
			}
			w.Write([]byte(`[
				{"id": 11, "name": "Tempo", "type": "Run", "distance": 8000, "moving_time": 2400, "start_date": "2024-03-08T06:00:00Z"},
				{"id": 12, "name": "Hills", "type": "Run", "distance": 12000, "moving_time": 4000, "start_date": "2024-03-09T06:00:00Z"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSync(t *testing.T) {
	var refreshes atomic.Int32
	server := fakeAPI(t, &refreshes)
	defer server.Close()

	h := newHarness(t, fmt.Sprintf("api_url: %s/api/v3\noauth_url: %s/oauth\n", server.URL, server.URL))

	_, err := h.run("sync")
	assert.ErrorIs(t, err, store.ErrNotAuthorized)

	require.NoError(t, os.MkdirAll(filepath.Dir(h.db), 0o755))
	st, err := store.Open(h.db)
	require.NoError(t, err)
	require.NoError(t, st.SaveToken(context.Background(), &client.Token{
		AccessToken: "stale", RefreshToken: "r1", ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, st.Close())

	out, err := h.run("sync")
	require.NoError(t, err)
	assert.Equal(t, "Synced 2 activities (2 stored).\n", out)
	assert.Equal(t, int32(1), refreshes.Load())

	out, err = h.run("sync")
	require.NoError(t, err)
	assert.Equal(t, "Synced 0 activities (2 stored).\n", out)
	assert.Equal(t, int32(1), refreshes.Load(), "refreshed token was persisted")

	out, err = h.run("list", "--filter", `name ~ "hll"`)
	require.NoError(t, err)
	assert.Contains(t, out, "Hills")
	assert.NotContains(t, out, "Tempo")
}

func TestAuthLogout(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.MkdirAll(filepath.Dir(h.db), 0o755))
	st, err := store.Open(h.db)
	require.NoError(t, err)
	require.NoError(t, st.SaveToken(context.Background(), &client.Token{AccessToken: "a"}))
	require.NoError(t, st.Close())

	out, err := h.run("auth", "--logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	st, err = store.Open(h.db)
	require.NoError(t, err)
	defer st.Close()
	_, err = st.LoadToken(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExport(t *testing.T) {
	h := newHarness(t, "")
	h.seed(seedActivities()...)

	dest := filepath.Join(t.TempDir(), "runs.json")
	out, err := h.run("export", "--filter", `type = "Run"`, "--sort", "distance", dest)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Exported 2 activities to %s.\n", dest), out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got []activity.Activity
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	_, err = h.run("export")
	assert.EqualError(t, err, "expected 1 argument: destination")

	_, err = h.run("export", "ftp://host/runs.json")
	assert.EqualError(t, err, "unsupported destination scheme: ftp")
}
