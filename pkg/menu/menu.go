// Package menu loads the category/item catalog offered for each meal and
// renders it as checkable lists.
package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/tidwall/gjson"
)

// ErrNoMenuData means the response had no catalog for the requested meal.
var ErrNoMenuData = errors.New("no menu data available for the specified meal type")

var negationPrefixes = []string{"No ", "NO "}

// Category is one collapsible section of a meal menu.
type Category struct {
	Name  string
	Items []string
}

// Menu is the rendered catalog of one meal together with the
// expanded/collapsed state of each section. Sections start collapsed.
type Menu struct {
	Meal       tracking.MealType
	Categories []Category
	expanded   map[string]bool
}

func NewMenu(meal tracking.MealType, categories []Category) *Menu {
	return &Menu{
		Meal:       meal,
		Categories: categories,
		expanded:   make(map[string]bool, len(categories)),
	}
}

// Toggle flips the state of one section and returns the new state.
// Unknown categories are ignored.
func (m *Menu) Toggle(category string) bool {
	if _, ok := m.Category(category); !ok {
		return false
	}
	m.expanded[category] = !m.expanded[category]
	return m.expanded[category]
}

// Expanded reports whether a section is open.
func (m *Menu) Expanded(category string) bool {
	return m.expanded[category]
}

func (m *Menu) Category(name string) (Category, bool) {
	for _, c := range m.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// ItemCount is the number of selectable items across sections.
func (m *Menu) ItemCount() int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Items)
	}
	return n
}

// IsNegation reports whether an item label is a "No ..." placeholder.
func IsNegation(item string) bool {
	for _, p := range negationPrefixes {
		if strings.HasPrefix(item, p) {
			return true
		}
	}
	return false
}

// Visible drops negation placeholders from categories.
func Visible(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		v := Category{Name: c.Name}
		for _, item := range c.Items {
			if item != "" && !IsNegation(item) {
				v.Items = append(v.Items, item)
			}
		}
		out = append(out, v)
	}
	return out
}

// Parse extracts the categories of meal from a /get-menu-data response.
// menu_data may be an object or a JSON-encoded string holding the object.
// Category and item order follow the document.
func Parse(body string, meal tracking.MealType) ([]Category, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("menu response is not valid JSON")
	}

	data := gjson.Get(body, "menu_data")
	if data.Type == gjson.String {
		if !gjson.Valid(data.Str) {
			return nil, fmt.Errorf("menu_data string is not valid JSON")
		}
		data = gjson.Parse(data.Str)
	}
	if !data.IsObject() {
		return nil, ErrNoMenuData
	}

	mealData := data.Get(string(meal))
	if !mealData.IsObject() {
		return nil, ErrNoMenuData
	}

	var categories []Category
	mealData.ForEach(func(key, value gjson.Result) bool {
		c := Category{Name: key.String()}
		collect := func(item string) {
			if item == "" || IsNegation(item) {
				return
			}
			c.Items = append(c.Items, item)
		}
		switch {
		case value.IsObject():
			value.ForEach(func(item, _ gjson.Result) bool {
				collect(item.String())
				return true
			})
		case value.IsArray():
			for _, item := range value.Array() {
				collect(item.String())
			}
		}
		categories = append(categories, c)
		return true
	})
	return categories, nil
}
