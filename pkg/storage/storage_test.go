package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "server.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenSeedsTestKitAndMenu(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ok, err := db.KitExists(ctx, TestKitID)
	if err != nil || !ok {
		t.Fatalf("expected seeded test kit, ok=%v err=%v", ok, err)
	}

	cats, err := db.MenuFor(ctx, tracking.Breakfast)
	if err != nil {
		t.Fatalf("MenuFor: %v", err)
	}
	if !reflect.DeepEqual(cats, DefaultMenu[tracking.Breakfast]) {
		t.Fatalf("unexpected breakfast menu:\nwant: %v\ngot:  %v", DefaultMenu[tracking.Breakfast], cats)
	}
}

func TestReopenDoesNotReseedMenu(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.sqlite")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	custom := []menu.Category{{Name: "Soup", Items: []string{"Miso"}}}
	if err := db.SetMenu(ctx, tracking.Lunch, custom); err != nil {
		t.Fatalf("SetMenu: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	cats, _ := db.MenuFor(ctx, tracking.Lunch)
	if !reflect.DeepEqual(cats, custom) {
		t.Fatalf("custom menu lost on reopen: %v", cats)
	}
	n, _ := db.CountKits(ctx)
	if n != 1 {
		t.Fatalf("expected one kit after reopen, got %d", n)
	}
}

func TestSetMenuNormalizes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	in := []menu.Category{
		{Name: " Fruit ", Items: []string{"Apple", " Apple", ""}},
		{Name: "", Items: []string{"Lost"}},
		{Name: "Dairy", Items: []string{"Milk"}},
		{Name: "Fruit", Items: []string{"Pear"}},
	}
	if err := db.SetMenu(ctx, tracking.Dinner, in); err != nil {
		t.Fatalf("SetMenu: %v", err)
	}
	got, _ := db.MenuFor(ctx, tracking.Dinner)
	want := []menu.Category{
		{Name: "Fruit", Items: []string{"Apple", "Pear"}},
		{Name: "Dairy", Items: []string{"Milk"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestGenerateKit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a, err := db.GenerateKit(ctx)
	if err != nil {
		t.Fatalf("GenerateKit: %v", err)
	}
	b, _ := db.GenerateKit(ctx)
	if a == b || len(a) != 36 {
		t.Fatalf("expected two distinct uuids, got %q and %q", a, b)
	}
	if ok, _ := db.KitExists(ctx, " "+a+" "); !ok {
		t.Fatalf("generated kit not found")
	}
	kits, _ := db.ListKits(ctx)
	if len(kits) != 3 {
		t.Fatalf("expected 3 kits, got %d", len(kits))
	}
}

func TestSaveSubmissionUnknownKit(t *testing.T) {
	db := openTestDB(t)
	_, err := db.SaveSubmission(context.Background(), KindMood, "NOPE", []byte(`{"mood":3}`), time.Now())
	if !errors.Is(err, ErrUnknownKit) {
		t.Fatalf("expected ErrUnknownKit, got %v", err)
	}
}

func TestMoodSeries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)

	payloads := []struct {
		kind Kind
		body string
	}{
		{KindTracking, `{"date":"2026-05-02T08:00:00Z","kitId":"TEST123456","mood":[{"time":"08:00","mood":2},{"time":"20:00","mood":6}]}`},
		{KindMood, `{"date":"2026-05-01T08:00:00Z","kitId":"TEST123456","mood":4}`},
		{KindMeal, `{"kitId":"TEST123456","type":"lunch","foods":{"Veg":["Kale"]}}`},
		{KindMood, `{"kitId":"TEST123456","mood":5}`},
	}
	for _, p := range payloads {
		if _, err := db.SaveSubmission(ctx, p.kind, TestKitID, []byte(p.body), at); err != nil {
			t.Fatalf("SaveSubmission: %v", err)
		}
	}

	points, err := db.MoodSeries(ctx, TestKitID)
	if err != nil {
		t.Fatalf("MoodSeries: %v", err)
	}
	var got []int
	for _, p := range points {
		got = append(got, p.Mood)
	}
	if want := []int{4, 6, 5}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want moods %v, got %v", want, got)
	}
	if !points[2].Date.Equal(at) {
		t.Fatalf("undated submission should use receive time, got %v", points[2].Date)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if len(stats) != 3 || stats[1].Kind != KindMood || stats[1].SubmitCount != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
