package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/protyayrd/tweestbd-sub001/pkg/httputil"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// guestIDKey is the context key for the guest identity.
const guestIDKey contextKey = "guest_id"

// GuestIDFromHeader reads the X-Guest-ID header set by the storefront and
// stores it in the request context. Requests without a guest identity are
// rejected; guests receive their ID from the storefront on first visit.
func GuestIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gid := r.Header.Get("X-Guest-ID")
		if gid == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "X-Guest-ID header is required"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), guestIDKey, gid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guestIDFromContext extracts the guest identity from the request context.
func guestIDFromContext(ctx context.Context) (string, bool) {
	gid, ok := ctx.Value(guestIDKey).(string)
	return gid, ok && gid != ""
}

// ContentTypeJSON enforces that requests with a body have
// Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
