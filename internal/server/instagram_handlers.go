package server

import "net/http"

func (s *Server) instagramConnectHandler(w http.ResponseWriter, r *http.Request) {
	consent, err := s.Instagram.Begin(userID(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"url": consent})
}

// instagramCallbackHandler is public: Instagram redirects the browser here
// without our bearer token, so the signed state names the user.
func (s *Server) instagramCallbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("error") != "" {
		respondWithError(w, http.StatusBadRequest, "Instagram authorization was denied")
		return
	}
	conn, err := s.Instagram.Complete(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conn)
}

func (s *Server) instagramDisconnectHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Instagram.Disconnect(r.Context(), userID(r.Context())); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
