package menu

import (
	"io"

	"github.com/kittrack/kittrack/pkg/tracking"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Checked reports whether an item should render as checked.
type Checked func(id tracking.ItemID) bool

// Render writes the checklist of m into w. The container always has the
// id "<meal>-content", so rendering again replaces the whole list.
func Render(w io.Writer, m *Menu, checked Checked) error {
	return MealContent(m, checked).Render(w)
}

// MealContent is the checklist of one meal as a gomponents node.
func MealContent(m *Menu, checked Checked) g.Node {
	if checked == nil {
		checked = func(tracking.ItemID) bool { return false }
	}
	return h.Div(h.ID(string(m.Meal)+"-content"), h.Class("meal-content"), g.Attr("data-meal", string(m.Meal)),
		g.Map(m.Categories, func(c Category) g.Node {
			return categorySection(m, c, checked)
		}),
	)
}

func categorySection(m *Menu, c Category, checked Checked) g.Node {
	expanded := m.Expanded(c.Name)
	return h.Div(h.Class("category-section mb-3"), g.Attr("data-category", c.Name),
		h.Div(h.Class("category-header"), g.Attr("data-toggle", string(m.Meal)+"-"+c.Name),
			h.I(h.Class(stateClass("category-icon", expanded)), g.Attr("data-feather", "chevron-right")),
			h.Span(g.Text(c.Name)),
		),
		h.Div(h.Class(stateClass("category-content", expanded)),
			g.Map(c.Items, func(item string) g.Node {
				id := tracking.ItemID{Meal: m.Meal, Category: c.Name, Item: item}
				return h.Div(h.Class("form-check"),
					h.Input(
						h.Class("form-check-input"),
						h.Type("checkbox"),
						h.Name(id.FieldName()),
						h.Value(item),
						h.ID(id.String()),
						g.Attr("data-meal", string(id.Meal)),
						g.Attr("data-category", id.Category),
						g.Attr("data-item", id.Item),
						g.If(checked(id), h.Checked()),
					),
					h.Label(h.Class("form-check-label"), h.For(id.String()), g.Text(item)),
				)
			}),
		),
	)
}

func stateClass(base string, expanded bool) string {
	if expanded {
		return base + " expanded"
	}
	return base
}
