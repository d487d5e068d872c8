package server

import (
	"net/http"

	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

func (s *Server) listRequestsHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	params := service.ListRequestsParams{
		City:   q.str("city"),
		Status: q.str("status"),
		UserID: q.str("user_id"),
		Page:   q.integer("page"),
		Limit:  q.integer("limit"),
	}
	if err := q.err(); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	list, err := s.Requests.List(r.Context(), params)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) getRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, err := s.Requests.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, req)
}

func (s *Server) createRequestHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRequestRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	created, err := s.Requests.Create(r.Context(), userID(r.Context()), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) updateRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.UpdateRequestRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	updated, err := s.Requests.Update(r.Context(), userID(r.Context()), id, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) closeRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	closed, err := s.Requests.Close(r.Context(), userID(r.Context()), id, req.Status)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, closed)
}

func (s *Server) listSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	suggestions, err := s.Suggestions.ListForRequest(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, suggestions)
}

func (s *Server) createSuggestionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.CreateSuggestionRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	created, err := s.Suggestions.Create(r.Context(), userID(r.Context()), id, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) markHelpfulHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Helpful bool `json:"helpful"`
	}
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	updated, err := s.Suggestions.MarkHelpful(r.Context(), userID(r.Context()), id, req.Helpful)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) rateSuggestionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.RateSuggestionRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	updated, err := s.Suggestions.Rate(r.Context(), userID(r.Context()), id, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}
