package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/storage"
	"github.com/kittrack/kittrack/pkg/tracking"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidateKit(w http.ResponseWriter, r *http.Request) {
	ok, err := s.DB.KitExists(r.Context(), r.PathValue("kitId"))
	if err != nil {
		s.log.Errorf("Error validating kit: %v", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}

func (s *Server) handleGenerateKit(w http.ResponseWriter, r *http.Request) {
	kitID, err := s.DB.GenerateKit(r.Context())
	if err != nil {
		s.log.Errorf("Error generating kit: %v", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.log.Infof("Issued kit %s", kitID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "kit_id": kitID})
}

func (s *Server) handleMenuData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	meal, ok := tracking.ParseMealType(q.Get("meal_type"))
	if !ok {
		writeFailure(w, http.StatusBadRequest, "unknown meal type")
		return
	}
	if kitID := q.Get("kitId"); kitID != "" {
		exists, err := s.DB.KitExists(r.Context(), kitID)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !exists {
			writeFailure(w, http.StatusNotFound, storage.ErrUnknownKit.Error())
			return
		}
	}

	categories, err := s.DB.MenuFor(r.Context(), meal)
	if err != nil {
		s.log.Errorf("Error loading menu: %v", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := map[string]orderedCatalog{string(meal): categories}
	if !s.stringMenu {
		writeJSON(w, http.StatusOK, map[string]interface{}{"menu_data": data})
		return
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"menu_data": string(encoded)})
}

// orderedCatalog encodes categories as {"category": {"item": 1, ...}},
// keeping catalog order for both categories and items.
type orderedCatalog []menu.Category

func (c orderedCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, cat.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, item := range cat.Items {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, item); err != nil {
				return nil, err
			}
			buf.WriteByte('1')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

func (s *Server) handleSave(kind storage.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if kind == storage.KindTracking && isFormPost(r) {
			s.saveTrackingForm(w, r)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "could not read body")
			return
		}

		var head struct {
			KitID string `json:"kitId"`
		}
		if err := json.Unmarshal(body, &head); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if strings.TrimSpace(head.KitID) == "" {
			writeFailure(w, http.StatusBadRequest, "kitId is required")
			return
		}

		id, err := s.DB.SaveSubmission(r.Context(), kind, head.KitID, body, s.now())
		if errors.Is(err, storage.ErrUnknownKit) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			s.log.Errorf("Error saving %s submission: %v", kind, err)
			writeFailure(w, http.StatusInternalServerError, "internal error")
			return
		}
		s.log.Debugf("Stored %s submission %d for kit %s", kind, id, head.KitID)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	kitID := r.PathValue("kitId")
	exists, err := s.DB.KitExists(r.Context(), kitID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !exists {
		if wantsJSON(r) {
			writeFailure(w, http.StatusNotFound, storage.ErrUnknownKit.Error())
			return
		}
		http.Error(w, "unknown kit", http.StatusNotFound)
		return
	}

	points, err := s.DB.MoodSeries(r.Context(), kitID)
	if err != nil {
		s.log.Errorf("Error loading mood series: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []tracking.MoodPoint{}
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"kitId": kitID, "mood": points})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	insightsPage(kitID, points, r.URL.Query().Get("new_submission") == "true").Render(w)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
