package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
	"github.com/openhive-oss/openhive/internal/registry"
)

// --- Helpers ---

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

// writeError maps registry error kinds back onto the wire protocol's status
// codes, the inverse of the remote adapter's mapping.
func writeError(w http.ResponseWriter, err error) {
	var he *errors.HiveError
	msg := err.Error()
	if stderrors.As(err, &he) {
		msg = he.Message
	}

	switch errors.AsCode(err) {
	case errors.CodeNotFound:
		jsonError(w, http.StatusNotFound, msg)
	case errors.CodeDuplicateID:
		jsonError(w, http.StatusConflict, msg)
	case errors.CodeInvalidArgument:
		jsonError(w, http.StatusBadRequest, msg)
	default:
		jsonError(w, http.StatusInternalServerError, msg)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parsePage reads page/limit query parameters.
func parsePage(r *http.Request) (registry.Page, error) {
	var page registry.Page
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, errors.Newf(errors.CodeInvalidArgument, "invalid page parameter %q", raw)
		}
		page.Number = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, errors.Newf(errors.CodeInvalidArgument, "invalid limit parameter %q", raw)
		}
		page.Limit = n
	}
	return page, page.Validate()
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Agents ---

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var cards []*card.AgentCard
	if q := r.URL.Query().Get("q"); q != "" {
		cards, err = s.reg.Search(r.Context(), q, page)
	} else {
		cards, err = s.reg.List(r.Context(), page)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if cards == nil {
		cards = []*card.AgentCard{}
	}
	jsonResponse(w, http.StatusOK, cards)
}

func (s *Server) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	var c card.AgentCard
	if err := decodeJSON(r, &c); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	stored, err := s.reg.Add(r.Context(), &c)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("agent registered", "id", stored.ID, "name", stored.Name)
	jsonResponse(w, http.StatusCreated, stored)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	stored, err := s.reg.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stored)
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var c card.AgentCard
	if err := decodeJSON(r, &c); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	updated, err := s.reg.Update(r.Context(), r.PathValue("id"), &c)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.reg.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAgents(w http.ResponseWriter, r *http.Request) {
	if err := s.reg.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
