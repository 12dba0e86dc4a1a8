package collector

import (
	"time"

	"github.com/kittrack/kittrack/pkg/tracking"
)

// Collect builds the record for one submission from the current form.
// Missing numeric fields fall back to tracking.DefaultScale; categories
// without checked items are left out.
func Collect(f *Form, kitID string, now time.Time) tracking.TrackingRecord {
	rec := tracking.TrackingRecord{
		Date:  now,
		KitID: kitID,
	}
	for _, meal := range tracking.MealTypes() {
		rec.Meals.Set(meal, CollectMeal(f, meal))
	}

	rec.Stool = tracking.Stool{
		Type:   orDefault(f.stoolType),
		Relief: tracking.IntPtr(orDefault(f.relief)),
		Smell:  tracking.IntPtr(orDefault(f.smell)),
	}

	if f.moodLog.Len() > 0 {
		rec.Mood = tracking.MoodEntries(f.moodLog.Entries())
	} else {
		rec.Mood = tracking.MoodValue(orDefault(f.mood))
	}
	return rec
}

// CollectMeal returns the checked items of one meal grouped by category.
func CollectMeal(f *Form, meal tracking.MealType) tracking.CategoryMap {
	return f.selected[meal].Normalize()
}

// CollectStool returns only the stool section.
func CollectStool(f *Form) tracking.Stool {
	return Collect(f, "", time.Time{}).Stool
}

// CollectMood returns only the mood section.
func CollectMood(f *Form) tracking.Mood {
	return Collect(f, "", time.Time{}).Mood
}

func orDefault(v *int) int {
	if v == nil {
		return tracking.DefaultScale
	}
	return *v
}
