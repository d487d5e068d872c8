package server

import (
	"net/http"

	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

func (s *Server) myProfileHandler(w http.ResponseWriter, r *http.Request) {
	me := userID(r.Context())
	profile, err := s.Users.GetProfile(r.Context(), me, me)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (s *Server) userProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := s.Users.GetProfile(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	user, err := s.Users.UpdateProfile(r.Context(), userID(r.Context()), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (s *Server) onboardingHandler(w http.ResponseWriter, r *http.Request) {
	var req service.OnboardingRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	user, err := s.Users.CompleteOnboarding(r.Context(), userID(r.Context()), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (s *Server) mySavesHandler(w http.ResponseWriter, r *http.Request) {
	saves, err := s.Saves.List(r.Context(), userID(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, saves)
}

func (s *Server) myListsHandler(w http.ResponseWriter, r *http.Request) {
	me := userID(r.Context())
	lists, err := s.Lists.ListForUser(r.Context(), me, me)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lists)
}

func (s *Server) userListsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lists, err := s.Lists.ListForUser(r.Context(), id, userID(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lists)
}

func (s *Server) createListHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	list, err := s.Lists.Create(r.Context(), userID(r.Context()), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) getListHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := s.Lists.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) addListItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		LocationID string `json:"location_id"`
	}
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	item, err := s.Lists.AddItem(r.Context(), userID(r.Context()), id, req.LocationID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (s *Server) removeListItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	locationID, ok := pathID(w, r, "locationID")
	if !ok {
		return
	}
	err := s.Lists.RemoveItem(r.Context(), userID(r.Context()), id, locationID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) savePlaceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Notes *string `json:"notes"`
	}
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	place, err := s.SavedPlaces.SaveFromSuggestion(r.Context(), userID(r.Context()), id, req.Notes)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, place)
}

func (s *Server) listSavedPlacesHandler(w http.ResponseWriter, r *http.Request) {
	places, err := s.SavedPlaces.List(r.Context(), userID(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, places)
}

func (s *Server) removeSavedPlaceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.SavedPlaces.Remove(r.Context(), userID(r.Context()), id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
