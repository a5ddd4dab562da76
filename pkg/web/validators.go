package web

import (
	"net/http"
	"strconv"
)

// QueryIntDefault parses an optional integer query parameter, clamped to
// [min, max]. Returns def when the parameter is absent or malformed.
func QueryIntDefault(r *http.Request, key string, def, min, max int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
