package collector

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kittrack/kittrack/pkg/tracking"
)

// FromHTML reads a rendered tracking form into a Form. Checked boxes are
// identified by their data-meal/data-category/data-item attributes, with
// the legacy "meal-category-item" id as a fallback. Missing stool or mood
// controls are logged and left unset so Collect falls back to defaults.
// ErrMissingElement is returned only when the document has no form
// controls at all.
func FromHTML(r io.Reader, log tracking.Logger) (*Form, error) {
	if log == nil {
		log = tracking.NopLogger{}
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse form document: %w", err)
	}
	if doc.Find("input, select").Length() == 0 {
		return nil, ErrMissingElement
	}

	f := NewForm()

	doc.Find(`input[type="checkbox"]`).Each(func(_ int, box *goquery.Selection) {
		if _, checked := box.Attr("checked"); !checked {
			return
		}
		id, ok := itemIDFromElement(box)
		if !ok {
			elID, _ := box.Attr("id")
			log.Warnf("Skipping checkbox with unrecognised identifier %q", elID)
			return
		}
		f.Apply(SetItem{ID: id, Checked: true})
	})

	readInt(doc, log, `[name="stoolType"]`, func(v int) { f.Apply(SetStool{Type: v}) })
	readInt(doc, log, `[name="relief"]`, func(v int) { f.Apply(SetRelief{Value: v}) })
	readInt(doc, log, `[name="smell"]`, func(v int) { f.Apply(SetSmell{Value: v}) })
	readInt(doc, log, `#moodSlider`, func(v int) { f.Apply(SetMood{Value: v}) })

	doc.Find(`[data-mood-time]`).Each(func(_ int, s *goquery.Selection) {
		t, _ := s.Attr("data-mood-time")
		v, err := strconv.Atoi(strings.TrimSpace(s.AttrOr("data-mood", s.Text())))
		if err != nil {
			log.Warnf("Skipping mood entry at %s: %v", t, err)
			return
		}
		f.Apply(AddMoodEntry{Time: t, Mood: v})
	})

	return f, nil
}

func itemIDFromElement(s *goquery.Selection) (tracking.ItemID, bool) {
	mealAttr, hasMeal := s.Attr("data-meal")
	cat, hasCat := s.Attr("data-category")
	item, hasItem := s.Attr("data-item")
	if hasMeal && hasCat && hasItem {
		meal, ok := tracking.ParseMealType(mealAttr)
		if !ok || cat == "" || item == "" {
			return tracking.ItemID{}, false
		}
		return tracking.ItemID{Meal: meal, Category: cat, Item: item}, true
	}

	elID, _ := s.Attr("id")
	id, ok := tracking.ParseLegacyID(elID)
	if !ok {
		return tracking.ItemID{}, false
	}
	if v, ok := s.Attr("value"); ok && v != "" {
		id.Item = v
	}
	return id, true
}

// readInt finds a single-valued control: the checked radio of a group, the
// selected option of a select, or the value attribute of any other input.
func readInt(doc *goquery.Document, log tracking.Logger, selector string, set func(int)) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		log.Debugf("Element %s not found, using default", selector)
		return
	}

	var raw string
	var found bool
	switch {
	case goquery.NodeName(sel.First()) == "select":
		raw, found = sel.First().Find("option[selected]").Attr("value")
	case sel.First().AttrOr("type", "") == "radio":
		raw, found = sel.Filter("[checked]").First().Attr("value")
	default:
		raw, found = sel.First().Attr("value")
	}
	if !found {
		log.Debugf("Element %s has no value, using default", selector)
		return
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warnf("Element %s has non-numeric value %q, using default", selector, raw)
		return
	}
	set(v)
}
