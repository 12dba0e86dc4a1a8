// Package collector keeps the state of a tracking form and turns it into a
// TrackingRecord at submission time.
package collector

import (
	"errors"
	"fmt"

	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
)

var (
	// ErrUnknownItem means an event referenced an item missing from the
	// loaded menu of its meal.
	ErrUnknownItem = errors.New("item is not on the loaded menu")
	// ErrMissingElement means the form document lacks the controls being
	// read.
	ErrMissingElement = errors.New("form element not found")
)

// Form is the typed view-model of the tracking form. It only changes
// through Apply.
type Form struct {
	menus    map[tracking.MealType]*menu.Menu
	selected map[tracking.MealType]tracking.CategoryMap

	stoolType *int
	relief    *int
	smell     *int
	mood      *int
	moodLog   tracking.MoodLog
}

func NewForm() *Form {
	f := &Form{
		menus:    make(map[tracking.MealType]*menu.Menu),
		selected: make(map[tracking.MealType]tracking.CategoryMap),
	}
	for _, meal := range tracking.MealTypes() {
		f.selected[meal] = tracking.CategoryMap{}
	}
	return f
}

// SetMenu attaches the loaded menu of a meal. Selections that are no longer
// on the menu are dropped.
func (f *Form) SetMenu(m *menu.Menu) {
	if m == nil {
		return
	}
	f.menus[m.Meal] = m
	sel := f.selected[m.Meal]
	for cat, items := range sel {
		for _, item := range append([]string(nil), items...) {
			if !onMenu(m, cat, item) {
				sel.Remove(cat, item)
			}
		}
	}
}

func (f *Form) Menu(meal tracking.MealType) *menu.Menu {
	return f.menus[meal]
}

// IsChecked reports whether an item is currently selected.
func (f *Form) IsChecked(id tracking.ItemID) bool {
	return f.selected[id.Meal].Has(id.Category, id.Item)
}

// Selected returns a copy of the selections of one meal.
func (f *Form) Selected(meal tracking.MealType) tracking.CategoryMap {
	out := tracking.CategoryMap{}
	for cat, items := range f.selected[meal] {
		out[cat] = append([]string(nil), items...)
	}
	return out
}

// HasFood reports whether any item is selected in any meal.
func (f *Form) HasFood() bool {
	for _, sel := range f.selected {
		if sel.Count() > 0 {
			return true
		}
	}
	return false
}

func (f *Form) MoodLog() []tracking.MoodEntry {
	return f.moodLog.Entries()
}

// ResetMood clears the session mood log after a submission.
func (f *Form) ResetMood() {
	f.moodLog.Reset()
	f.mood = nil
}

// Apply updates the form with one event.
func (f *Form) Apply(e Event) error {
	return e.apply(f)
}

func onMenu(m *menu.Menu, category, item string) bool {
	c, ok := m.Category(category)
	if !ok {
		return false
	}
	for _, it := range c.Items {
		if it == item {
			return true
		}
	}
	return false
}

// Event is a single change to the form.
type Event interface {
	apply(f *Form) error
}

// ToggleItem flips the checked state of one item.
type ToggleItem struct {
	ID tracking.ItemID
}

func (e ToggleItem) apply(f *Form) error {
	return SetItem{ID: e.ID, Checked: !f.IsChecked(e.ID)}.apply(f)
}

// SetItem sets the checked state of one item.
type SetItem struct {
	ID      tracking.ItemID
	Checked bool
}

func (e SetItem) apply(f *Form) error {
	sel, ok := f.selected[e.ID.Meal]
	if !ok {
		return fmt.Errorf("unknown meal %q", e.ID.Meal)
	}
	if m := f.menus[e.ID.Meal]; m != nil && !onMenu(m, e.ID.Category, e.ID.Item) {
		return fmt.Errorf("%s: %w", e.ID, ErrUnknownItem)
	}
	if e.Checked {
		sel.Add(e.ID.Category, e.ID.Item)
	} else {
		sel.Remove(e.ID.Category, e.ID.Item)
	}
	return nil
}

// ClearMeal unchecks every item of a meal.
type ClearMeal struct {
	Meal tracking.MealType
}

func (e ClearMeal) apply(f *Form) error {
	if _, ok := f.selected[e.Meal]; !ok {
		return fmt.Errorf("unknown meal %q", e.Meal)
	}
	f.selected[e.Meal] = tracking.CategoryMap{}
	return nil
}

type SetStool struct{ Type int }

func (e SetStool) apply(f *Form) error {
	f.stoolType = tracking.IntPtr(e.Type)
	return nil
}

type SetRelief struct{ Value int }

func (e SetRelief) apply(f *Form) error {
	f.relief = tracking.IntPtr(e.Value)
	return nil
}

type SetSmell struct{ Value int }

func (e SetSmell) apply(f *Form) error {
	f.smell = tracking.IntPtr(e.Value)
	return nil
}

// SetMood sets the single mood value, as read from the mood slider.
type SetMood struct{ Value int }

func (e SetMood) apply(f *Form) error {
	f.mood = tracking.IntPtr(e.Value)
	return nil
}

// AddMoodEntry appends a timestamped reading to the session mood log.
type AddMoodEntry struct {
	Time string
	Mood int
}

func (e AddMoodEntry) apply(f *Form) error {
	f.moodLog.Add(e.Time, e.Mood)
	return nil
}
