package tracking

import (
	"sort"
	"strings"
	"time"
)

const (
	// DefaultScale is used for any missing 1..5 numeric field.
	DefaultScale = 3
	// MoodMax is the top of the mood scale.
	MoodMax = 7
)

// MealType names one of the three tracked meals.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes returns the meals in form order.
func MealTypes() []MealType {
	return []MealType{Breakfast, Lunch, Dinner}
}

// ParseMealType accepts any casing of a known meal.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case Breakfast:
		return Breakfast, true
	case Lunch:
		return Lunch, true
	case Dinner:
		return Dinner, true
	}
	return "", false
}

// CategoryMap maps a category name to the selected items in it.
// Items have set semantics; order is not meaningful.
type CategoryMap map[string][]string

// Add inserts item under category unless already present.
func (c CategoryMap) Add(category, item string) {
	if c.Has(category, item) {
		return
	}
	c[category] = append(c[category], item)
}

// Remove drops item and deletes the category once it is empty.
func (c CategoryMap) Remove(category, item string) {
	items := c[category]
	for i, it := range items {
		if it == item {
			items = append(items[:i], items[i+1:]...)
			break
		}
	}
	if len(items) == 0 {
		delete(c, category)
		return
	}
	c[category] = items
}

func (c CategoryMap) Has(category, item string) bool {
	for _, it := range c[category] {
		if it == item {
			return true
		}
	}
	return false
}

// Count is the total number of selected items across categories.
func (c CategoryMap) Count() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}

// Normalize returns a copy with sorted, deduplicated items and without
// empty categories.
func (c CategoryMap) Normalize() CategoryMap {
	out := CategoryMap{}
	for cat, items := range c {
		seen := make(map[string]bool, len(items))
		var uniq []string
		for _, it := range items {
			if it == "" || seen[it] {
				continue
			}
			seen[it] = true
			uniq = append(uniq, it)
		}
		if len(uniq) == 0 {
			continue
		}
		sort.Strings(uniq)
		out[cat] = uniq
	}
	return out
}

// Meals holds one CategoryMap per meal.
type Meals struct {
	Breakfast CategoryMap `json:"breakfast"`
	Lunch     CategoryMap `json:"lunch"`
	Dinner    CategoryMap `json:"dinner"`
}

// For returns the map for meal, or nil for an unknown meal.
func (m *Meals) For(meal MealType) CategoryMap {
	switch meal {
	case Breakfast:
		return m.Breakfast
	case Lunch:
		return m.Lunch
	case Dinner:
		return m.Dinner
	}
	return nil
}

// Set replaces the map for meal.
func (m *Meals) Set(meal MealType, foods CategoryMap) {
	switch meal {
	case Breakfast:
		m.Breakfast = foods
	case Lunch:
		m.Lunch = foods
	case Dinner:
		m.Dinner = foods
	}
}

// Stool is the stool section of a record. Relief and Smell are optional.
type Stool struct {
	Type   int  `json:"type"`
	Relief *int `json:"relief,omitempty"`
	Smell  *int `json:"smell,omitempty"`
}

// TrackingRecord is the combined meal/stool/mood submission for one
// logging event. It is built from form state at submission time.
type TrackingRecord struct {
	Date  time.Time `json:"date"`
	KitID string    `json:"kitId"`
	Meals Meals     `json:"meals"`
	Stool Stool     `json:"stool"`
	Mood  Mood      `json:"mood"`
}

// MealSubmission is the body of POST /save-meal.
type MealSubmission struct {
	KitID string      `json:"kitId"`
	Type  MealType    `json:"type"`
	Foods CategoryMap `json:"foods"`
}

// StoolSubmission is the body of POST /save-stool.
type StoolSubmission struct {
	KitID string    `json:"kitId"`
	Date  time.Time `json:"date"`
	Stool Stool     `json:"stool"`
}

// MoodSubmission is the body of POST /save-mood.
type MoodSubmission struct {
	KitID string    `json:"kitId"`
	Date  time.Time `json:"date"`
	Mood  Mood      `json:"mood"`
}

// IntPtr is a small helper for the optional stool fields.
func IntPtr(v int) *int {
	return &v
}

// MoodPoint is one point of the mood trend returned by the insights view.
type MoodPoint struct {
	Date time.Time `json:"date"`
	Mood int       `json:"mood"`
}
