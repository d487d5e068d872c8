package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

// pathID returns the named route parameter. A value that is not a UUID can
// never name a row, so it is answered with 404 before any query runs.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		respondWithError(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return "", false
	}
	return raw, true
}

// queryParser reads typed query parameters and collects the malformed ones.
type queryParser struct {
	values url.Values
	verr   domain.ValidationError
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values}
}

func (p *queryParser) str(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

func (p *queryParser) integer(key string) int {
	raw := p.str(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.verr.Add(key, "must be an integer")
	}
	return v
}

func (p *queryParser) number(key string) *float64 {
	raw := p.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.verr.Add(key, "must be a number")
		return nil
	}
	return &v
}

func (p *queryParser) flag(key string) bool {
	raw := p.str(key)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.verr.Add(key, "must be true or false")
	}
	return v
}

// ints accepts both repeated keys and comma separated values.
func (p *queryParser) ints(key string) []int {
	var out []int
	for _, raw := range p.values[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				p.verr.Add(key, "must be a list of integers")
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

func (p *queryParser) vibes(key string) []string {
	return domain.ParseVibes(strings.Join(p.values[key], ","))
}

func (p *queryParser) err() error {
	return p.verr.OrNil()
}
