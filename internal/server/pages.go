package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const indexMarkdownContent = `
# Health tracking

Log what you eat, how your gut feels and how your mood changes over the day.
Everything you submit is tied to the **kit id** printed on your kit.

1. Enter your kit id below.
2. Pick what you had for breakfast, lunch and dinner.
3. Rate your stool and your mood, then submit.

No kit yet? Use the test kit ` + "`TEST123456`" + ` or ask for a new one from the command line with ` + "`kittrack kit generate`" + `.
`

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func pageLayout(title string, content g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		h.HTML(h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("UTF-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1.0")),
				h.TitleEl(g.Text(title)),
				h.StyleEl(g.Raw(`
					body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
					.category-content { display: none; margin-left: 1rem; }
					.category-content.expanded { display: block; }
					.category-header { cursor: pointer; font-weight: 600; }
					.progress { background: #e2e8f0; height: .5rem; border-radius: .25rem; }
					.progress-bar { background: #0891b2; height: 100%; border-radius: .25rem; }
					.mood-bar { background: #06b6d4; height: 1rem; }
					.alert { padding: .75rem; background: #dcfce7; border-radius: .25rem; }
				`)),
			),
			h.Body(
				h.Main(content),
			),
		),
	})
}

func indexContent() g.Node {
	var buf bytes.Buffer
	if err := md.Convert([]byte(indexMarkdownContent), &buf); err != nil {
		buf.Reset()
		buf.WriteString("<h1>Health tracking</h1>")
	}
	return g.Group([]g.Node{
		h.Section(g.Raw(buf.String())),
		h.Form(h.Action("/track"), h.Method("get"), h.ID("kitForm"),
			h.Label(h.For("kitId"), g.Text("Kit ID")),
			h.Input(h.Type("text"), h.ID("kitId"), h.Name("kitId"), h.Placeholder("TEST123456")),
			h.Button(h.Type("submit"), g.Text("Start tracking")),
		),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageLayout("Health tracking", indexContent()).Render(w)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	kitID := r.URL.Query().Get("kitId")
	if kitID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	exists, err := s.DB.KitExists(r.Context(), kitID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "unknown kit", http.StatusNotFound)
		return
	}

	menus := make([]*menu.Menu, 0, 3)
	for _, meal := range tracking.MealTypes() {
		categories, err := s.DB.MenuFor(r.Context(), meal)
		if err != nil {
			s.log.Errorf("Error loading %s menu: %v", meal, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		menus = append(menus, menu.NewMenu(meal, menu.Visible(categories)))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageLayout("Track - "+kitID, trackContent(kitID, menus)).Render(w)
}

// trackScript opens category sections on click and moves between steps.
const trackScript = `
document.querySelectorAll('.category-header').forEach(function (header) {
  header.addEventListener('click', function () {
    header.nextElementSibling.classList.toggle('expanded');
  });
});
(function () {
  var steps = document.querySelectorAll('.step');
  var current = 1;
  function show(n) {
    if (n < 1 || n > steps.length) { return; }
    current = n;
    steps.forEach(function (s) { s.style.display = Number(s.dataset.step) === n ? '' : 'none'; });
    document.querySelector('.progress-bar').style.width = ((n - 1) / (steps.length - 1) * 100) + '%';
  }
  document.querySelectorAll('[data-step-nav]').forEach(function (b) {
    b.addEventListener('click', function () { show(current + (b.dataset.stepNav === 'next' ? 1 : -1)); });
  });
})();
`

func trackContent(kitID string, menus []*menu.Menu) g.Node {
	return g.Group([]g.Node{
		trackForm(kitID, menus),
		h.Script(g.Raw(trackScript)),
	})
}

func trackForm(kitID string, menus []*menu.Menu) g.Node {
	return h.Form(h.ID("trackingForm"), h.Method("post"), h.Action("/save-tracking"),
		h.Input(h.Type("hidden"), h.Name("kitId"), h.Value(kitID)),
		h.Div(h.Class("progress"), h.Div(h.Class("progress-bar"), h.Style("width: 0%"))),
		step(1, true,
			h.H2(g.Text("Meals")),
			g.Map(menus, func(m *menu.Menu) g.Node {
				return h.Section(
					h.H3(g.Text(mealTitle(m.Meal))),
					menu.MealContent(m, nil),
				)
			}),
			stepNav("next", "Next"),
		),
		step(2, false,
			h.H2(g.Text("Stool")),
			h.FieldSet(
				h.Legend(g.Text("Type")),
				g.Map(scale(1, 7), func(n int) g.Node {
					v := strconv.Itoa(n)
					return h.Label(
						h.Input(h.Type("radio"), h.Name("stoolType"), h.Value(v), g.If(n == tracking.DefaultScale, h.Checked())),
						g.Text(" "+v),
					)
				}),
			),
			scaleSelect("relief", "Relief"),
			scaleSelect("smell", "Smell"),
			stepNav("prev", "Back"),
			stepNav("next", "Next"),
		),
		step(3, false,
			h.H2(g.Text("Mood")),
			h.Label(h.For("moodSlider"), g.Text("How do you feel? (1-7)")),
			h.Input(h.Type("range"), h.ID("moodSlider"), h.Name("mood"),
				g.Attr("min", "1"), g.Attr("max", strconv.Itoa(tracking.MoodMax)), h.Value(strconv.Itoa(tracking.DefaultScale))),
			stepNav("prev", "Back"),
			h.Button(h.Type("submit"), g.Text("Submit")),
		),
	)
}

func step(n int, visible bool, children ...g.Node) g.Node {
	nodes := []g.Node{h.Class("step"), h.ID(fmt.Sprintf("step-%d", n)), g.Attr("data-step", strconv.Itoa(n))}
	if !visible {
		nodes = append(nodes, h.Style("display: none"))
	}
	return h.Div(append(nodes, children...)...)
}

func stepNav(dir, label string) g.Node {
	return h.Button(h.Type("button"), g.Attr("data-step-nav", dir), g.Text(label))
}

func scaleSelect(name, label string) g.Node {
	return h.Div(
		h.Label(h.For(name), g.Text(label)),
		h.Select(h.ID(name), h.Name(name),
			g.Map(scale(1, 5), func(n int) g.Node {
				v := strconv.Itoa(n)
				return h.Option(h.Value(v), g.If(n == tracking.DefaultScale, h.Selected()), g.Text(v))
			}),
		),
	)
}

func scale(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func mealTitle(m tracking.MealType) string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func insightsPage(kitID string, points []tracking.MoodPoint, newSubmission bool) g.Node {
	return pageLayout("Insights - "+kitID, g.Group([]g.Node{
		g.If(newSubmission, h.P(h.Class("alert"), g.Text("Your data was saved."))),
		h.H1(g.Text("Mood trend")),
		h.P(g.Textf("Kit %s, %d readings", kitID, len(points))),
		g.If(len(points) == 0, h.P(g.Text("No mood readings yet."))),
		g.If(len(points) > 0,
			h.Table(
				h.THead(h.Tr(h.Th(g.Text("Date")), h.Th(g.Text("Mood")), h.Th())),
				h.TBody(g.Map(points, func(p tracking.MoodPoint) g.Node {
					width := p.Mood * 100 / tracking.MoodMax
					return h.Tr(
						h.Td(g.Text(p.Date.Format("2006-01-02 15:04"))),
						h.Td(g.Text(strconv.Itoa(p.Mood))),
						h.Td(h.Div(h.Class("mood-bar"), h.Style(fmt.Sprintf("width: %d%%", width)))),
					)
				})),
			),
		),
		h.P(h.A(h.Href("/track?kitId="+url.QueryEscape(kitID)), g.Text("Track again"))),
	}))
}
