package tracking

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// ItemID identifies one selectable food item. The fields travel as
// structured data; String only produces the legacy element id.
type ItemID struct {
	Meal     MealType
	Category string
	Item     string
}

// String returns "meal-category-item" with whitespace in the item replaced
// by dashes.
func (id ItemID) String() string {
	return string(id.Meal) + "-" + id.Category + "-" + whitespaceRe.ReplaceAllString(id.Item, "-")
}

// ParseLegacyID splits an element id of the form "meal-category-item".
// Dashes in the item part are turned back into spaces, which is lossy for
// items that really contain dashes; prefer the structured attributes.
func ParseLegacyID(s string) (ItemID, bool) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return ItemID{}, false
	}
	meal, ok := ParseMealType(parts[0])
	if !ok {
		return ItemID{}, false
	}
	return ItemID{
		Meal:     meal,
		Category: parts[1],
		Item:     strings.ReplaceAll(parts[2], "-", " "),
	}, true
}

const fieldPrefix = "food."

// FieldName is the form field an item's checkbox posts under,
// "food.<meal>.<category>", with the item as the value.
func (id ItemID) FieldName() string {
	return fieldPrefix + string(id.Meal) + "." + id.Category
}

// ParseFieldName reverses FieldName. Categories may contain dots.
func ParseFieldName(name string) (MealType, string, bool) {
	if !strings.HasPrefix(name, fieldPrefix) {
		return "", "", false
	}
	mealPart, category, ok := strings.Cut(strings.TrimPrefix(name, fieldPrefix), ".")
	if !ok || category == "" {
		return "", "", false
	}
	meal, ok := ParseMealType(mealPart)
	if !ok {
		return "", "", false
	}
	return meal, category, true
}
