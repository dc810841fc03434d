package common

import (
	"net/http"
	"strconv"
	"strings"
)

// ExtractLimitOffset reads limit/offset query parameters. Missing or
// malformed values fall back to the provided defaults; range clamping
// happens downstream in query normalization.
func ExtractLimitOffset(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}
	return limit, offset
}

// ExtractCSV splits a comma-separated query parameter into trimmed,
// non-empty values.
func ExtractCSV(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

// ExtractBoolPtr reads an optional boolean query parameter. Absent or
// unparseable values return nil.
func ExtractBoolPtr(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ExtractBool reads a boolean query parameter, false when absent or
// unparseable.
func ExtractBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
