package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/claude/replog/internal/editor"
	"github.com/claude/replog/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// draft is one in-flight editor session, held server-side and addressed by a
// random id. sessionID is the nil UUID for a new-session draft.
type draft struct {
	mu        sync.Mutex
	owner     uuid.UUID
	sessionID uuid.UUID
	ed        *editor.Editor
}

// rowView is one editor row as sent to clients: its position plus every field
// in form order.
type rowView struct {
	Num    int            `json:"num"`
	Fields []editor.Field `json:"fields"`
}

type draftView struct {
	DraftID  string               `json:"draftId"`
	Session  editor.SessionFields `json:"session"`
	Rows     []rowView            `json:"rows"`
	Selected int                  `json:"selected"`
	Buttons  editor.ButtonStates  `json:"buttons"`
}

// viewOf snapshots a locked draft for the response body.
func viewOf(id uuid.UUID, d *draft) draftView {
	rows := d.ed.Rows()
	v := draftView{
		DraftID:  id.String(),
		Session:  d.ed.SessionFields(),
		Rows:     make([]rowView, len(rows)),
		Selected: d.ed.Selected(),
		Buttons:  d.ed.ButtonStates(),
	}
	for i, row := range rows {
		v.Rows[i] = rowView{Num: row.Num(), Fields: row.Fields()}
	}
	return v
}

// lookupDraft resolves the {draft} URL parameter to the caller's draft. A
// draft belonging to another account is reported as missing.
func (s *Server) lookupDraft(w http.ResponseWriter, r *http.Request, owner uuid.UUID) (uuid.UUID, *draft, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "draft"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid draft id"})
		return uuid.Nil, nil, false
	}
	s.draftsMu.Lock()
	d, ok := s.drafts[id]
	s.draftsMu.Unlock()
	if !ok || d.owner != owner {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "draft not found"})
		return uuid.Nil, nil, false
	}
	return id, d, true
}

func (s *Server) handleNewDraft(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	d := &draft{owner: ownerID, ed: editor.New()}
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
			return
		}
		session, err := s.store.GetSession(r.Context(), ownerID, sessionID)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		d.sessionID = sessionID
		d.ed = editor.FromSession(session)
	}

	id := uuid.New()
	s.draftsMu.Lock()
	s.drafts[id] = d
	s.draftsMu.Unlock()

	writeJSON(w, http.StatusCreated, viewOf(id, d))
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, d, ok := s.lookupDraft(w, r, ownerID)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	writeJSON(w, http.StatusOK, viewOf(id, d))
}

// handleDraftRowOp applies one structural operation to the draft's row list.
func (s *Server) handleDraftRowOp(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, d, ok := s.lookupDraft(w, r, ownerID)
	if !ok {
		return
	}
	var req struct {
		Op  string `json:"op"`
		Row int    `json:"row"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch req.Op {
	case "add":
		d.ed.AddRow()
	case "remove":
		d.ed.RemoveRow()
	case "duplicate":
		d.ed.DuplicateRow()
	case "moveUp":
		d.ed.MoveUp()
	case "moveDown":
		d.ed.MoveDown()
	case "select":
		if err := d.ed.Select(req.Row); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	case "clearSelection":
		d.ed.ClearSelection()
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown op " + strconv.Quote(req.Op)})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(id, d))
}

// handleDraftSetsChanged resizes one row's reps sub-fields to its new sets
// count.
func (s *Server) handleDraftSetsChanged(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, d, ok := s.lookupDraft(w, r, ownerID)
	if !ok {
		return
	}
	rowNum, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid row number"})
		return
	}
	var req struct {
		Sets int `json:"sets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ed.OnSetsChanged(rowNum, req.Sets); err != nil {
		if errors.Is(err, editor.ErrSyncInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(id, d))
}

// saveRow carries one row's submitted values keyed by its position.
type saveRow struct {
	Num int `json:"num"`
	editor.RowData
}

type saveRequest struct {
	Session editor.SessionFields `json:"session"`
	Rows    []saveRow            `json:"rows"`
}

// handleDraftSave writes the submitted form values into the draft, converts
// it to a training session, validates, and persists. Rows whose content does
// not form a usable exercise are skipped and reported, not fatal; a session
// with no usable exercise at all is rejected.
func (s *Server) handleDraftSave(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, d, ok := s.lookupDraft(w, r, ownerID)
	if !ok {
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.ed.SetSessionFields(req.Session)
	for _, row := range req.Rows {
		if err := d.ed.SetRowValues(row.Num, row.RowData); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	session, skipped, fieldErrs := d.ed.ExtractSession().Session()
	if err := session.Validate(); err != nil {
		var fe models.FieldErrors
		switch {
		case errors.As(err, &fe):
			for field, msg := range fe {
				fieldErrs[field] = msg
			}
		case errors.Is(err, models.ErrNoExercises):
			if len(fieldErrs) == 0 {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":       err.Error(),
					"skippedRows": skipped,
				})
				return
			}
		}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"fieldErrors": fieldErrs,
			"skippedRows": skipped,
		})
		return
	}

	sessionID := d.sessionID
	if sessionID == uuid.Nil {
		created, err := s.store.CreateSession(r.Context(), ownerID, &session)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		sessionID = created
		s.setFlash(w, r, "Training session saved")
	} else {
		if err := s.store.UpdateSession(r.Context(), ownerID, sessionID, &session); err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.setFlash(w, r, "Training session updated")
	}

	s.draftsMu.Lock()
	delete(s.drafts, id)
	s.draftsMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          sessionID.String(),
		"skippedRows": skipped,
	})
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, _, ok := s.lookupDraft(w, r, ownerID)
	if !ok {
		return
	}
	s.draftsMu.Lock()
	delete(s.drafts, id)
	s.draftsMu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}
