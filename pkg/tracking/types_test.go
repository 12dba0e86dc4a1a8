package tracking

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCategoryMapSetSemantics(t *testing.T) {
	c := CategoryMap{}
	c.Add("Fruit", "Apple")
	c.Add("Fruit", "Apple")
	c.Add("Fruit", "Banana")
	c.Add("Dairy", "Milk")

	if got := len(c["Fruit"]); got != 2 {
		t.Fatalf("expected 2 fruit items, got %d: %v", got, c["Fruit"])
	}

	c.Remove("Dairy", "Milk")
	if _, ok := c["Dairy"]; ok {
		t.Fatalf("expected empty category to be dropped, got %v", c)
	}
	if c.Count() != 2 {
		t.Fatalf("expected count 2, got %d", c.Count())
	}
}

func TestCategoryMapNormalize(t *testing.T) {
	c := CategoryMap{
		"Fruit": {"Pear", "Apple", "Pear"},
		"Empty": {},
		"Blank": {""},
	}
	want := CategoryMap{"Fruit": {"Apple", "Pear"}}
	if got := c.Normalize(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected normalize result.\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestMoodJSONForms(t *testing.T) {
	tests := []struct {
		name string
		mood Mood
		wire string
	}{
		{name: "single value", mood: MoodValue(5), wire: `5`},
		{name: "entry list", mood: MoodEntries([]MoodEntry{{Time: "08:00", Mood: 4}, {Time: "12:30", Mood: 6}}), wire: `[{"time":"08:00","mood":4},{"time":"12:30","mood":6}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.mood)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.wire {
				t.Fatalf("want %s, got %s", tt.wire, data)
			}
			var back Mood
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back.Level() != tt.mood.Level() {
				t.Fatalf("want level %d, got %d", tt.mood.Level(), back.Level())
			}
		})
	}
}

func TestMoodLogOrderedByTime(t *testing.T) {
	var l MoodLog
	l.Add("14:00", 3)
	l.Add("09:15", 5)
	l.Add("11:00", 4)

	want := []MoodEntry{{"09:15", 5}, {"11:00", 4}, {"14:00", 3}}
	if got := l.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	latest, ok := l.Latest()
	if !ok || latest.Mood != 3 {
		t.Fatalf("unexpected latest %v", latest)
	}

	l.Reset()
	if l.Len() != 0 {
		t.Fatalf("expected empty log after reset")
	}
}

func TestItemIDRoundTrip(t *testing.T) {
	id := ItemID{Meal: Lunch, Category: "Grains", Item: "Brown  Rice"}
	if got := id.String(); got != "lunch-Grains-Brown-Rice" {
		t.Fatalf("unexpected id %q", got)
	}

	parsed, ok := ParseLegacyID("lunch-Grains-Brown-Rice")
	if !ok {
		t.Fatalf("expected legacy id to parse")
	}
	want := ItemID{Meal: Lunch, Category: "Grains", Item: "Brown Rice"}
	if parsed != want {
		t.Fatalf("want %#v, got %#v", want, parsed)
	}

	for _, bad := range []string{"", "lunch", "lunch-Grains", "brunch-Grains-Toast"} {
		if _, ok := ParseLegacyID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestFieldNameRoundTrip(t *testing.T) {
	id := ItemID{Meal: Dinner, Category: "Sides.Hot", Item: "Green Beans"}
	if got := id.FieldName(); got != "food.dinner.Sides.Hot" {
		t.Fatalf("unexpected field name %q", got)
	}
	meal, cat, ok := ParseFieldName(id.FieldName())
	if !ok || meal != Dinner || cat != "Sides.Hot" {
		t.Fatalf("unexpected parse: %q %q %v", meal, cat, ok)
	}
	for _, bad := range []string{"food", "food.dinner", "food.dinner.", "food.brunch.Toast", "kitId"} {
		if _, _, ok := ParseFieldName(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestTrackingRecordJSONKeys(t *testing.T) {
	rec := TrackingRecord{
		KitID: "TEST123456",
		Meals: Meals{Breakfast: CategoryMap{"Fruit": {"Apple"}}},
		Stool: Stool{Type: 4, Relief: IntPtr(2)},
		Mood:  MoodValue(6),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"date", "kitId", "meals", "stool", "mood"} {
		if _, ok := generic[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	stool := generic["stool"].(map[string]interface{})
	if _, ok := stool["smell"]; ok {
		t.Fatalf("expected nil smell to be omitted: %s", data)
	}
}
