package domain

import (
	"slices"
	"strings"
)

// The location vocabulary and the request vocabulary both exist in stored
// data, so both are accepted.
var knownVibes = map[string]struct{}{
	"lowkey": {}, "adventure": {}, "romantic": {}, "nightlife": {}, "photogenic": {}, "trending": {},
	"calm": {}, "aesthetic": {}, "vibrant": {}, "cozy": {}, "productive": {},
	"adventurous": {}, "cultural": {}, "social": {}, "peaceful": {},
}

var categories = []string{
	"restaurant", "bar", "cafe", "attraction", "park", "beach",
	"museum", "nightclub", "viewpoint", "activity", "other",
}

var placeTypes = []string{
	"cafe", "restaurant", "bar", "park", "workspace",
	"museum", "gallery", "market", "viewpoint", "other",
}

// IsValidVibe reports whether v belongs to the known vibe set.
func IsValidVibe(v string) bool {
	_, ok := knownVibes[v]
	return ok
}

// IsValidCategory reports whether c is a known location category.
func IsValidCategory(c string) bool {
	return slices.Contains(categories, c)
}

// IsValidPlaceType reports whether p is a known request place type.
func IsValidPlaceType(p string) bool {
	return slices.Contains(placeTypes, p)
}

// NormalizeVibes lowercases, trims and de-duplicates vibes, preserving order.
// The second return value holds the entries that are not known vibes.
func NormalizeVibes(in []string) ([]string, []string) {
	out := make([]string, 0, len(in))
	var invalid []string
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		v := strings.ToLower(strings.TrimSpace(raw))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		if !IsValidVibe(v) {
			invalid = append(invalid, raw)
			continue
		}
		out = append(out, v)
	}
	return out, invalid
}

// ParseVibes splits a comma separated query value and drops unknown vibes.
func ParseVibes(param string) []string {
	if param == "" {
		return nil
	}
	vibes, _ := NormalizeVibes(strings.Split(param, ","))
	return vibes
}
