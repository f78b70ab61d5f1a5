package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenbridge/signage-core/internal/bridges/lglcd"
)

// displaySummary is the list-endpoint view of one display.
type displaySummary struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`
}

// controlRequest is the body for control writes. Action selects the
// priority reorder operations; all other controls take a plain value.
type controlRequest struct {
	Value  string `json:"value"`
	Action string `json:"action,omitempty"`
}

// Priority reorder actions.
const (
	actionMoveUp   = "move_up"
	actionMoveDown = "move_down"
)

// handleListDisplays returns a summary of all managed displays.
func (s *Server) handleListDisplays(w http.ResponseWriter, _ *http.Request) {
	displays := make([]displaySummary, 0, len(s.order))
	for _, id := range s.order {
		displays = append(displays, displaySummary{
			ID:        id,
			Available: s.bridges[id].Available(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"displays": displays})
}

// handleGetDisplay returns the full state snapshot for one display.
func (s *Server) handleGetDisplay(w http.ResponseWriter, r *http.Request) {
	b := s.bridge(chi.URLParam(r, "id"))
	if b == nil {
		writeNotFound(w, "display not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         b.DisplayID(),
		"available":  b.Available(),
		"properties": b.Snapshot(),
	})
}

// handleGetProperties returns only the property map.
func (s *Server) handleGetProperties(w http.ResponseWriter, r *http.Request) {
	b := s.bridge(chi.URLParam(r, "id"))
	if b == nil {
		writeNotFound(w, "display not found")
		return
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

// handleListControls returns the controls currently offered by a display.
// Properties without a live cached value offer no control.
func (s *Server) handleListControls(w http.ResponseWriter, r *http.Request) {
	b := s.bridge(chi.URLParam(r, "id"))
	if b == nil {
		writeNotFound(w, "display not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"controls": b.Controls()})
}

// handleApplyControl performs a control write on a display.
//
// Most controls take {"value": "..."}. The input priority control also
// accepts {"action": "move_up"|"move_down", "value": "<input name>"} for
// rank reordering, and reboot needs no body at all.
func (s *Server) handleApplyControl(w http.ResponseWriter, r *http.Request) {
	b := s.bridge(chi.URLParam(r, "id"))
	if b == nil {
		writeNotFound(w, "display not found")
		return
	}
	property := chi.URLParam(r, "property")

	var req controlRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
	}

	ctx := r.Context()
	var err error
	switch {
	case property == lglcd.PropReboot:
		err = b.Reboot(ctx)
	case property == lglcd.PropInputPriority && req.Action != "":
		switch req.Action {
		case actionMoveUp:
			err = b.PriorityMoveUp(ctx, req.Value)
		case actionMoveDown:
			err = b.PriorityMoveDown(ctx, req.Value)
		default:
			writeBadRequest(w, "unknown action")
			return
		}
	default:
		err = b.Apply(ctx, property, req.Value)
	}

	if err != nil {
		s.writeControlError(w, property, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         b.DisplayID(),
		"property":   property,
		"properties": b.Snapshot(),
	})
}

// writeControlError maps bridge errors onto HTTP responses.
func (s *Server) writeControlError(w http.ResponseWriter, property string, err error) {
	switch {
	case errors.Is(err, lglcd.ErrUnknownProperty), errors.Is(err, lglcd.ErrInvalidValue):
		writeBadRequest(w, err.Error())
	case errors.Is(err, lglcd.ErrControlRejected), errors.Is(err, lglcd.ErrControlUnavailable):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		s.logger.Error("control write failed", "property", property, "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeUnavailable, err.Error())
	}
}

// handlePing verifies a display answers on the wire right now, bypassing
// the cache.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	b := s.bridge(chi.URLParam(r, "id"))
	if b == nil {
		writeNotFound(w, "display not found")
		return
	}

	if err := b.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"reachable": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reachable": true})
}

// handleDisplayStats returns poll and transport counters for one display.
func (s *Server) handleDisplayStats(w http.ResponseWriter, r *http.Request) {
	b := s.bridge(chi.URLParam(r, "id"))
	if b == nil {
		writeNotFound(w, "display not found")
		return
	}
	writeJSON(w, http.StatusOK, b.Statistics())
}
