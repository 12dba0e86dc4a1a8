package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kittrack/kittrack/pkg/client"
	"github.com/kittrack/kittrack/pkg/collector"
	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/storage"
	"github.com/kittrack/kittrack/pkg/tracking"
)

func isFormPost(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// saveTrackingForm handles the /track page posted by a browser. The fields
// go through the same collector as the other front ends, and the browser
// is sent to the insights page on success.
func (s *Server) saveTrackingForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not read form", http.StatusBadRequest)
		return
	}
	kitID := strings.TrimSpace(r.PostForm.Get("kitId"))
	if kitID == "" {
		http.Error(w, "kitId is required", http.StatusBadRequest)
		return
	}

	form := collector.NewForm()
	for _, meal := range tracking.MealTypes() {
		categories, err := s.DB.MenuFor(r.Context(), meal)
		if err != nil {
			s.log.Errorf("Error loading %s menu: %v", meal, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		form.SetMenu(menu.NewMenu(meal, menu.Visible(categories)))
	}
	if err := applyPostedFields(form, r.PostForm); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := collector.Collect(form, kitID, s.now())
	payload, err := json.Marshal(rec)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if _, err := s.DB.SaveSubmission(r.Context(), storage.KindTracking, kitID, payload, s.now()); err != nil {
		if errors.Is(err, storage.ErrUnknownKit) {
			http.Error(w, "unknown kit", http.StatusNotFound)
			return
		}
		s.log.Errorf("Error saving tracking form: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, client.InsightsPath(kitID), http.StatusSeeOther)
}

// applyPostedFields replays the posted checkboxes and answers as form
// events. Unparseable numbers are left unset and fall back to defaults.
func applyPostedFields(f *collector.Form, values url.Values) error {
	for name, items := range values {
		meal, category, ok := tracking.ParseFieldName(name)
		if !ok {
			continue
		}
		for _, item := range items {
			id := tracking.ItemID{Meal: meal, Category: category, Item: item}
			if err := f.Apply(collector.SetItem{ID: id, Checked: true}); err != nil {
				return fmt.Errorf("unknown food %q in %s", item, category)
			}
		}
	}

	numbers := []struct {
		field string
		event func(int) collector.Event
	}{
		{"stoolType", func(v int) collector.Event { return collector.SetStool{Type: v} }},
		{"relief", func(v int) collector.Event { return collector.SetRelief{Value: v} }},
		{"smell", func(v int) collector.Event { return collector.SetSmell{Value: v} }},
		{"mood", func(v int) collector.Event { return collector.SetMood{Value: v} }},
	}
	for _, n := range numbers {
		v, err := strconv.Atoi(strings.TrimSpace(values.Get(n.field)))
		if err != nil {
			continue
		}
		f.Apply(n.event(v))
	}
	return nil
}
