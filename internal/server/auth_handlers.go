package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

const oauthStateCookie = "buyareco_oauth_state"

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	resp, err := s.Auth.SignUp(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	resp, err := s.Auth.SignIn(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	session, err := s.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

func (s *Server) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := s.Auth.ChangePassword(r.Context(), userID(r.Context()), req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) oauthBeginHandler(w http.ResponseWriter, r *http.Request) {
	redirect, state, err := s.Auth.BeginOAuth(chi.URLParam(r, "provider"))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/oauth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) oauthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		respondWithError(w, http.StatusUnauthorized, "OAuth sign-in was cancelled: "+e)
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/oauth", MaxAge: -1, HttpOnly: true})

	resp, err := s.Auth.CompleteOAuth(r.Context(), chi.URLParam(r, "provider"), q.Get("code"))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}
