package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/stretchr/testify/require"
)

type countingAlerter struct {
	mu   sync.Mutex
	msgs []string
}

func (a *countingAlerter) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

type memStore struct {
	kitID    string
	records  []tracking.TrackingRecord
	moodDate string
	setErr   error
}

func (s *memStore) SetKitID(_ context.Context, kitID string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.kitID = kitID
	return nil
}

func (s *memStore) AppendRecord(_ context.Context, rec tracking.TrackingRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) MoodSubmittedToday(_ context.Context, now time.Time) (bool, error) {
	return s.moodDate == now.Format("2006-01-02"), nil
}

func (s *memStore) MarkMoodSubmitted(_ context.Context, now time.Time) error {
	s.moodDate = now.Format("2006-01-02")
	return nil
}

type fixture struct {
	client *Client
	alerts *countingAlerter
	nav    *recordingNavigator
	store  *memStore
	hits   *int64
}

func newFixture(t *testing.T, handler http.HandlerFunc, opts ...Option) *fixture {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	f := &fixture{
		alerts: &countingAlerter{},
		nav:    &recordingNavigator{},
		store:  &memStore{},
		hits:   &hits,
	}
	base := []Option{WithAlerter(f.alerts), WithNavigator(f.nav), WithStore(f.store), WithRetries(0)}
	c, err := New(srv.URL, append(base, opts...)...)
	require.NoError(t, err)
	f.client = c
	return f
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sampleRecord() tracking.TrackingRecord {
	return tracking.TrackingRecord{
		Date:  time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
		KitID: "TEST123456",
		Meals: tracking.Meals{Breakfast: tracking.CategoryMap{"Fruit": {"Apple"}}},
		Stool: tracking.Stool{Type: 4, Relief: tracking.IntPtr(3), Smell: tracking.IntPtr(2)},
		Mood:  tracking.Mood{Value: 5},
	}
}

func TestSubmitFailureAlertsOnce(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "database unavailable"})
	}, WithOfflineLog(true))

	err := f.client.Submit(context.Background(), sampleRecord())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.Contains(t, err.Error(), "database unavailable")
	require.Equal(t, []string{"Failed to save data"}, f.alerts.msgs)
	require.Empty(t, f.store.records, "failed submission must not be logged locally")
	require.Empty(t, f.nav.paths)
	require.EqualValues(t, 1, atomic.LoadInt64(f.hits), "saves are not retried")
}

func TestSubmitNetworkRejection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	alerts := &countingAlerter{}
	nav := &recordingNavigator{}
	store := &memStore{}
	c, err := New(srv.URL, WithAlerter(alerts), WithNavigator(nav), WithStore(store), WithRetries(0), WithOfflineLog(true))
	require.NoError(t, err)

	err = c.Submit(context.Background(), sampleRecord())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.Equal(t, []string{"Failed to save data"}, alerts.msgs)
	require.Empty(t, store.records)
	require.Empty(t, nav.paths)
}

func TestSubmitSuccess(t *testing.T) {
	var got tracking.TrackingRecord
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/save-tracking", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}, WithOfflineLog(true))

	rec := sampleRecord()
	require.NoError(t, f.client.Submit(context.Background(), rec))
	require.Equal(t, rec.KitID, got.KitID)
	require.Equal(t, 5, got.Mood.Level())
	require.Equal(t, []string{"/insights/TEST123456?new_submission=true"}, f.nav.paths)
	require.Len(t, f.store.records, 1)
	require.Empty(t, f.alerts.msgs)
}

func TestSubmitSuccessWithoutOfflineLog(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	})
	require.NoError(t, f.client.Submit(context.Background(), sampleRecord()))
	require.Empty(t, f.store.records)
}

func TestSubmitNonJSONFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><head><title>Bad Gateway</title></head></html>")
	})

	err := f.client.Submit(context.Background(), sampleRecord())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.Contains(t, err.Error(), "Bad Gateway")
	require.Len(t, f.alerts.msgs, 1)
}

func TestSaveMoodOncePerDay(t *testing.T) {
	day := time.Date(2026, 5, 2, 9, 0, 0, 0, time.Local)
	now := day
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/save-mood", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}, WithClock(func() time.Time { return now }))

	ctx := context.Background()
	require.NoError(t, f.client.SaveMood(ctx, "TEST123456", tracking.Mood{Value: 6}))

	now = day.Add(8 * time.Hour)
	err := f.client.SaveMood(ctx, "TEST123456", tracking.Mood{Value: 2})
	require.ErrorIs(t, err, ErrMoodAlreadySubmitted)
	require.EqualValues(t, 1, atomic.LoadInt64(f.hits), "second mood must be blocked client-side")
	require.Len(t, f.alerts.msgs, 1)

	now = day.AddDate(0, 0, 1)
	require.NoError(t, f.client.SaveMood(ctx, "TEST123456", tracking.Mood{Value: 2}))
	require.EqualValues(t, 2, atomic.LoadInt64(f.hits))
}

func TestSaveMoodFailureKeepsGateOpen(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": "nope"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	})

	ctx := context.Background()
	require.ErrorIs(t, f.client.SaveMood(ctx, "K1", tracking.Mood{Value: 4}), ErrSubmissionFailed)
	require.Empty(t, f.store.moodDate)

	fail.Store(false)
	require.NoError(t, f.client.SaveMood(ctx, "K1", tracking.Mood{Value: 4}))
}

func TestSaveMealRequiresFood(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	})
	ctx := context.Background()

	err := f.client.SaveMeal(ctx, "K1", tracking.Lunch, tracking.CategoryMap{"Veg": {}})
	require.ErrorIs(t, err, ErrNoFoodSelected)
	require.EqualValues(t, 0, atomic.LoadInt64(f.hits))

	require.NoError(t, f.client.SaveMeal(ctx, "K1", tracking.Lunch, tracking.CategoryMap{"Veg": {"Kale"}}))
	require.Equal(t, []string{"/dashboard"}, f.nav.paths)
}

func TestValidateKit(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/validate-kit/TEST123456":
			writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
		case "/validate-kit/broken":
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "<title>oops</title>")
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{"valid": false})
		}
	})
	ctx := context.Background()

	require.ErrorIs(t, f.client.ValidateKit(ctx, "   "), ErrEmptyKitID)
	require.Equal(t, "Please enter a Kit ID", f.alerts.msgs[0])
	require.EqualValues(t, 0, atomic.LoadInt64(f.hits))

	require.ErrorIs(t, f.client.ValidateKit(ctx, "NOPE"), ErrInvalidKit)
	require.Equal(t, "Invalid Kit ID", f.alerts.msgs[1])
	require.Empty(t, f.store.kitID)

	err := f.client.ValidateKit(ctx, "broken")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalidKit))
	require.Equal(t, "Failed to validate Kit ID", f.alerts.msgs[2])

	require.NoError(t, f.client.ValidateKit(ctx, " TEST123456 "))
	require.Equal(t, "TEST123456", f.store.kitID)
	require.Equal(t, []string{"/track"}, f.nav.paths)

	f.store.kitID = ""
	f.store.setErr = errors.New("disk full")
	f.alerts.msgs = nil
	require.Error(t, f.client.ValidateKit(ctx, "TEST123456"))
	require.Equal(t, []string{"Could not save Kit ID"}, f.alerts.msgs)
	require.Equal(t, []string{"/track"}, f.nav.paths, "no navigation when the kit id could not be cached")
	require.Len(t, f.alerts.msgs, 3)
}

func TestGenerateKit(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "kit_id": "ABCDEF1234"})
	})
	id, err := f.client.GenerateKit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ABCDEF1234", id)
}

func TestInsights(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/insights/K1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"kitId": "K1",
			"mood": []map[string]interface{}{
				{"date": "2026-05-01T08:00:00Z", "mood": 4},
				{"date": "not a date", "mood": 1},
				{"date": "2026-05-02T08:00:00Z", "mood": 6},
			},
		})
	})

	points, err := f.client.Insights(context.Background(), "K1")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 4, points[0].Mood)
	require.Equal(t, 6, points[1].Mood)
	require.Equal(t, 2, points[1].Date.Day())
}
