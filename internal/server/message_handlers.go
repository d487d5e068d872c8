package server

import (
	"net/http"

	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessageRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	msg, err := s.Messages.Send(r.Context(), userID(r.Context()), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

func (s *Server) listMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	msgs, err := s.Messages.ListForRequest(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, msgs)
}

func (s *Server) markMessageReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Messages.MarkRead(r.Context(), userID(r.Context()), id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	unreadOnly := q.flag("unread")
	if err := q.err(); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	notifications, err := s.Notifications.List(r.Context(), userID(r.Context()), unreadOnly)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, notifications)
}

func (s *Server) markNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Notifications.MarkRead(r.Context(), userID(r.Context()), id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markAllNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.Notifications.MarkAllRead(r.Context(), userID(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Realtime updates are disabled")
		return
	}
	s.Hub.Serve(w, r, userID(r.Context()))
}
