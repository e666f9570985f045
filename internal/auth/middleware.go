package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const UserIDKey contextKey = "userID"

var (
	errMissingToken = errors.New("missing bearer token")
	errTokenScheme  = errors.New("authorization header must use the Bearer scheme")
)

// Authorizer decides whether a user may open a resource such as a drawing.
// Errors wrapping ErrNotFound or ErrForbidden are answered with 404 and 403.
type Authorizer interface {
	Authorize(ctx context.Context, resourceID, userID string) error
}

// Authenticate resolves the caller from a bearer token and stores the user
// ID in the request context. Browsers cannot set headers on websocket
// upgrades, so those may carry the token in the token query parameter.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		userID, err := s.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}

// RequireAccess lets a request through only when the authenticated user may
// open the resource named by the route variable param. Mount it behind
// Authenticate.
func RequireAccess(authz Authorizer, param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := mux.Vars(r)[param]
			if err := authz.Authorize(r.Context(), id, UserIDFromContext(r.Context())); err != nil {
				fail(w, "authorize "+param, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" || token == "" {
			return "", errTokenScheme
		}
		return token, nil
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
	}
	return "", errMissingToken
}

// ContextWithUserID marks ctx as authenticated for userID.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
