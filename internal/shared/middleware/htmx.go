package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	htmxKey contextKey = "htmx"
	userKey contextKey = "user"
)

func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isHTMX := r.Header.Get("HX-Request") == "true"
		ctx := context.WithValue(r.Context(), htmxKey, isHTMX)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IsHTMX(r *http.Request) bool {
	if v, ok := r.Context().Value(htmxKey).(bool); ok {
		return v
	}
	return false
}

// Redirect sends htmx requests to route with HX-Redirect and everything else
// with a 303.
func Redirect(w http.ResponseWriter, r *http.Request, route string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", route)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, route, http.StatusSeeOther)
}
