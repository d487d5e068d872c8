package server

import (
	"net/http"

	"github.com/Tomlord1122/buyareco-backend/internal/repository"
	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

func (s *Server) searchLocationsHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	params := service.SearchParams{
		Filter: repository.LocationFilter{
			Query:           q.str("query"),
			Vibes:           q.vibes("vibes"),
			City:            q.str("city"),
			Category:        q.str("category"),
			PriceLevels:     q.ints("price_level"),
			RatingMin:       q.number("rating_min"),
			ExpertPicksOnly: q.flag("expert_picks_only"),
			Latitude:        q.number("latitude"),
			Longitude:       q.number("longitude"),
			DistanceMax:     q.number("distance_max"),
			Sort:            q.str("sort"),
		},
		Page:  q.integer("page"),
		Limit: q.integer("limit"),
	}
	if err := q.err(); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	result, err := s.Locations.Search(r.Context(), params)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) autocompleteHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.Locations.Autocomplete(r.Context(), r.URL.Query().Get("q")))
}

func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	vibes, city, limit := q.vibes("vibes"), q.str("city"), q.integer("limit")
	if err := q.err(); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	locs, err := s.Locations.Recommend(r.Context(), vibes, city, limit)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, locs)
}

func (s *Server) getLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	loc, err := s.Locations.Get(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loc)
}

func (s *Server) isSavedHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	saved := s.Saves.IsSaved(r.Context(), userID(r.Context()), id)
	respondWithJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

func (s *Server) saveLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	save, err := s.Saves.Save(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, save)
}

func (s *Server) unsaveLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Saves.Unsave(r.Context(), userID(r.Context()), id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
