package storage

import (
	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
)

// DefaultMenu is loaded into an empty database. Entries starting with "No "
// are kept in the catalog; clients skip them when rendering.
var DefaultMenu = map[tracking.MealType][]menu.Category{
	tracking.Breakfast: {
		{Name: "Grains", Items: []string{"Oats", "Toast", "Cereal", "Granola", "No grains"}},
		{Name: "Fruit", Items: []string{"Apple", "Banana", "Berries", "Orange"}},
		{Name: "Dairy", Items: []string{"Milk", "Yogurt", "Cheese", "NO DAIRY"}},
		{Name: "Protein", Items: []string{"Eggs", "Bacon", "Sausage"}},
		{Name: "Drinks", Items: []string{"Coffee", "Tea", "Juice"}},
	},
	tracking.Lunch: {
		{Name: "Protein", Items: []string{"Chicken", "Tuna", "Tofu", "Beans"}},
		{Name: "Vegetables", Items: []string{"Salad", "Broccoli", "Carrots", "No vegetables"}},
		{Name: "Grains", Items: []string{"Rice", "Bread", "Pasta", "Wrap"}},
		{Name: "Snacks", Items: []string{"Chips", "Nuts", "Fruit"}},
	},
	tracking.Dinner: {
		{Name: "Protein", Items: []string{"Beef", "Chicken", "Salmon", "Lentils"}},
		{Name: "Vegetables", Items: []string{"Green Beans", "Spinach", "Potatoes", "Peppers"}},
		{Name: "Grains", Items: []string{"Rice", "Quinoa", "Noodles"}},
		{Name: "Dessert", Items: []string{"Ice Cream", "Cake", "Fruit", "No dessert"}},
	},
}
