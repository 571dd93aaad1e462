package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// listQuery is the parsed, corrected form of the list page's query string.
type listQuery struct {
	filter    storage.Filter
	page      int
	date      string
	startDate string
	endDate   string
	corrected bool
}

// parseListQuery reads date/startDate/endDate/page, dropping malformed dates
// and clamping page below 1. Any correction is flagged so the handler can
// redirect to the canonical URL instead of rendering an error.
func parseListQuery(q url.Values) listQuery {
	lq := listQuery{page: 1}

	if v := q.Get("date"); v != "" {
		day, err := time.Parse(models.DateLayout, v)
		if err != nil {
			lq.corrected = true
		} else {
			lq.date = v
			lq.filter.Start = day
			lq.filter.End = day.AddDate(0, 0, 1)
		}
	} else {
		if v := q.Get("startDate"); v != "" {
			day, err := time.Parse(models.DateLayout, v)
			if err != nil {
				lq.corrected = true
			} else {
				lq.startDate = v
				lq.filter.Start = day
			}
		}
		if v := q.Get("endDate"); v != "" {
			day, err := time.Parse(models.DateLayout, v)
			if err != nil {
				lq.corrected = true
			} else {
				lq.endDate = v
				lq.filter.End = day.AddDate(0, 0, 1)
			}
		}
		if !lq.filter.Start.IsZero() && !lq.filter.End.IsZero() && lq.filter.End.Before(lq.filter.Start) {
			lq.startDate, lq.endDate = lq.endDate, lq.startDate
			lq.filter.Start, lq.filter.End = lq.filter.End.AddDate(0, 0, -1), lq.filter.Start.AddDate(0, 0, 1)
			lq.corrected = true
		}
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		switch {
		case err != nil || page < 1:
			lq.corrected = true
		default:
			lq.page = page
		}
	}
	return lq
}

// canonicalURL rebuilds the list URL from the corrected query values.
func (lq listQuery) canonicalURL(path string) string {
	q := url.Values{}
	if lq.date != "" {
		q.Set("date", lq.date)
	}
	if lq.startDate != "" {
		q.Set("startDate", lq.startDate)
	}
	if lq.endDate != "" {
		q.Set("endDate", lq.endDate)
	}
	if lq.page > 1 {
		q.Set("page", strconv.Itoa(lq.page))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}

	lq := parseListQuery(r.URL.Query())

	all, err := s.store.ListSessions(r.Context(), ownerID, lq.filter)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	pageCount := (len(all) + s.opts.PageSize - 1) / s.opts.PageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if lq.page > pageCount {
		lq.page = pageCount
		lq.corrected = true
	}
	if lq.corrected {
		http.Redirect(w, r, lq.canonicalURL(r.URL.Path), http.StatusSeeOther)
		return
	}

	offset := (lq.page - 1) * s.opts.PageSize
	end := offset + s.opts.PageSize
	if offset > len(all) {
		offset = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	sessions := all[offset:end]
	if sessions == nil {
		sessions = []models.TrainingSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":  sessions,
		"page":      lq.page,
		"pageCount": pageCount,
		"total":     len(all),
		"status":    s.popFlash(w, r),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	session, err := s.store.GetSession(r.Context(), ownerID, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":   session,
		"fullTitle": session.FullTitle(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	var session models.TrainingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := session.Validate(); err != nil {
		s.writeStoreError(w, err)
		return
	}

	id, err := s.store.CreateSession(r.Context(), ownerID, &session)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.setFlash(w, r, "Training session saved")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}
	var session models.TrainingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := session.Validate(); err != nil {
		s.writeStoreError(w, err)
		return
	}

	if err := s.store.UpdateSession(r.Context(), ownerID, id, &session); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.setFlash(w, r, "Training session updated")
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	if err := s.store.DeleteSession(r.Context(), ownerID, id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.setFlash(w, r, "Training session deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	lq := parseListQuery(r.URL.Query())
	if lq.corrected {
		http.Redirect(w, r, lq.canonicalURL(r.URL.Path), http.StatusSeeOther)
		return
	}

	all, err := s.store.ListSessions(r.Context(), ownerID, lq.filter)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.ComputeStats(all))
}
