package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/kittrack/kittrack/pkg/whttp"
)

const fruitMenu = `{"menu_data":{"breakfast":{"Fruit":{"Apple":1,"No Fruit":1}}}}`

func TestParseSkipsNegationItems(t *testing.T) {
	cats, err := Parse(fruitMenu, tracking.Breakfast)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Category{{Name: "Fruit", Items: []string{"Apple"}}}
	if !reflect.DeepEqual(cats, want) {
		t.Fatalf("want %#v, got %#v", want, cats)
	}
}

func TestParseStringEncodedMenuData(t *testing.T) {
	inner := `{"lunch":{"Grains":{"Rice":1,"NO GRAINS":1,"Quinoa":1},"Protein":{"Chicken":1}}}`
	encoded, _ := json.Marshal(map[string]string{"menu_data": inner})
	object := `{"menu_data":` + inner + `}`

	fromString, err := Parse(string(encoded), tracking.Lunch)
	if err != nil {
		t.Fatalf("Parse string form: %v", err)
	}
	fromObject, err := Parse(object, tracking.Lunch)
	if err != nil {
		t.Fatalf("Parse object form: %v", err)
	}
	if !reflect.DeepEqual(fromString, fromObject) {
		t.Fatalf("string and object forms differ:\n%#v\n%#v", fromString, fromObject)
	}
	want := []Category{
		{Name: "Grains", Items: []string{"Rice", "Quinoa"}},
		{Name: "Protein", Items: []string{"Chicken"}},
	}
	if !reflect.DeepEqual(fromObject, want) {
		t.Fatalf("want %#v, got %#v", want, fromObject)
	}
}

func TestParseMissingMeal(t *testing.T) {
	for _, body := range []string{
		`{"menu_data":{"breakfast":{}}}`,
		`{"menu_data":{}}`,
		`{}`,
	} {
		if _, err := Parse(body, tracking.Dinner); err != ErrNoMenuData {
			t.Fatalf("Parse(%s): expected ErrNoMenuData, got %v", body, err)
		}
	}
	if _, err := Parse(`not json`, tracking.Dinner); err == nil || err == ErrNoMenuData {
		t.Fatalf("expected a decode error, got %v", err)
	}
}

func TestToggleIsPerSection(t *testing.T) {
	m := NewMenu(tracking.Breakfast, []Category{{Name: "Fruit"}, {Name: "Dairy"}})
	if m.Expanded("Fruit") || m.Expanded("Dairy") {
		t.Fatalf("sections must start collapsed")
	}
	if !m.Toggle("Fruit") {
		t.Fatalf("first toggle should expand")
	}
	if m.Expanded("Dairy") {
		t.Fatalf("toggling Fruit must not affect Dairy")
	}
	if m.Toggle("Fruit") {
		t.Fatalf("second toggle should collapse")
	}
	if m.Toggle("Unknown") {
		t.Fatalf("unknown categories are ignored")
	}
}

func TestRenderOneCheckboxPerItem(t *testing.T) {
	cats, _ := Parse(fruitMenu, tracking.Breakfast)
	m := NewMenu(tracking.Breakfast, cats)

	var buf bytes.Buffer
	if err := Render(&buf, m, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}

	boxes := doc.Find("#breakfast-content input[type=checkbox]")
	if boxes.Length() != 1 {
		t.Fatalf("expected 1 checkbox, got %d", boxes.Length())
	}
	if v, _ := boxes.Attr("value"); v != "Apple" {
		t.Fatalf("expected Apple, got %q", v)
	}
	if id, _ := boxes.Attr("id"); id != "breakfast-Fruit-Apple" {
		t.Fatalf("unexpected id %q", id)
	}
	if strings.Contains(doc.Text(), "No Fruit") {
		t.Fatalf("negation item should not be rendered")
	}
	if doc.Find(".category-content.expanded").Length() != 0 {
		t.Fatalf("sections should render collapsed")
	}
}

func TestRenderMarksCheckedAndExpanded(t *testing.T) {
	m := NewMenu(tracking.Dinner, []Category{{Name: "Veg", Items: []string{"Green Beans", "Kale"}}})
	m.Toggle("Veg")

	var buf bytes.Buffer
	err := Render(&buf, m, func(id tracking.ItemID) bool { return id.Item == "Green Beans" })
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, _ := goquery.NewDocumentFromReader(&buf)
	checked := doc.Find("input[checked]")
	if checked.Length() != 1 {
		t.Fatalf("expected one checked box, got %d", checked.Length())
	}
	if item, _ := checked.Attr("data-item"); item != "Green Beans" {
		t.Fatalf("unexpected checked item %q", item)
	}
	if doc.Find(".category-content.expanded").Length() != 1 {
		t.Fatalf("expanded section should carry the expanded class")
	}
}

func TestLoaderReplacesPreviousMenu(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-menu-data" || r.URL.Query().Get("kitId") != "TEST123456" {
			http.NotFound(w, r)
			return
		}
		n := atomic.AddInt32(&calls, 1)
		meal := r.URL.Query().Get("meal_type")
		item := "Apple"
		if n > 1 {
			item = "Pear"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"menu_data": map[string]interface{}{
				meal: map[string]interface{}{"Fruit": map[string]int{item: 1}},
			},
		})
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil, nil)
	ctx := context.Background()

	first, err := l.Load(ctx, "TEST123456", tracking.Breakfast)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	first.Toggle("Fruit")

	second, err := l.Load(ctx, "TEST123456", tracking.Breakfast)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Menu(tracking.Breakfast) != second {
		t.Fatalf("loader should keep only the latest menu")
	}
	if second.Expanded("Fruit") {
		t.Fatalf("reloaded menu should start collapsed")
	}
	if got := second.Categories[0].Items; !reflect.DeepEqual(got, []string{"Pear"}) {
		t.Fatalf("unexpected items %v", got)
	}
}

func TestLoadAllFetchesEveryMeal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meal := r.URL.Query().Get("meal_type")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"menu_data": map[string]interface{}{
				meal: map[string]interface{}{"Staples": map[string]int{"Bread": 1}},
			},
		})
	}))
	defer srv.Close()

	menus, err := NewLoader(srv.URL, nil, nil).LoadAll(context.Background(), "TEST123456")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(menus) != 3 {
		t.Fatalf("expected 3 menus, got %d", len(menus))
	}
	for _, meal := range tracking.MealTypes() {
		if menus[meal] == nil || menus[meal].Meal != meal {
			t.Fatalf("missing menu for %s", meal)
		}
	}
}

func TestLoaderSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := newNoRetryClient()
	if _, err := NewLoader(srv.URL, client, nil).Load(context.Background(), "K", tracking.Lunch); err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
}

func newNoRetryClient() (*retryablehttp.Client, error) {
	return whttp.NewClient(whttp.ClientOptions{RetryMax: 0})
}
