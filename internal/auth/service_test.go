package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberti/alberti/backend-go/internal/store"
)

type fakeUsers struct {
	byID map[string]store.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]store.User)}
}

func (f *fakeUsers) CreateUser(_ context.Context, arg store.CreateUserParams) (store.User, error) {
	for _, u := range f.byID {
		if u.Email == arg.Email {
			return store.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := store.User{ID: arg.ID, Email: arg.Email, Password: arg.Password, DisplayName: arg.DisplayName}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (store.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeUsers(), "secret")

	reg, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reg.User.ID, "user_"))
	assert.Equal(t, "Ada", reg.User.DisplayName)

	userID, err := svc.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)

	login, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, reg.User, login.User)

	_, err = svc.Register(ctx, "ada@example.com", "another1", "Ada 2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeUsers(), "secret")
	_, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ada@example.com", "hunter23"},
		{"unknown email", "bob@example.com", "hunter22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret")
	token, err := svc.issueToken("user_1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewService(newFakeUsers(), "other").ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewService(newFakeUsers(), "secret")
		late.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeUsers(), "secret")
	reg, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)

	u, err := svc.GetUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.GetUser(ctx, "user_missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret")
	token, err := svc.issueToken("user_1")
	require.NoError(t, err)

	var seen string
	h := svc.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	tests := []struct {
		name    string
		target  string
		header  string
		upgrade bool
		status  int
	}{
		{"valid", "/api/drawings", "Bearer " + token, false, http.StatusOK},
		{"missing", "/api/drawings", "", false, http.StatusUnauthorized},
		{"wrong scheme", "/api/drawings", "Basic " + token, false, http.StatusUnauthorized},
		{"bad token", "/api/drawings", "Bearer nope", false, http.StatusUnauthorized},
		{"websocket query token", "/ws/drawing/drw_1?token=" + token, "", true, http.StatusOK},
		{"query token without upgrade", "/api/drawings?token=" + token, "", false, http.StatusUnauthorized},
		{"websocket bad query token", "/ws/drawing/drw_1?token=nope", "", true, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user_1", seen)
			} else {
				assert.Empty(t, seen)
			}
		})
	}
}

// owners is an Authorizer over a fixed resource to owner map.
type owners map[string]string

func (o owners) Authorize(_ context.Context, id, userID string) error {
	owner, ok := o[id]
	switch {
	case !ok:
		return fmt.Errorf("drawing %w", ErrNotFound)
	case owner != userID:
		return ErrForbidden
	}
	return nil
}

func TestRequireAccess(t *testing.T) {
	authz := owners{"drw_1": "user_a", "drw_2": "user_b"}

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), r.Header.Get("X-User"))))
		})
	})
	drawings := r.PathPrefix("/drawings/{drawingId}").Subrouter()
	drawings.Use(RequireAccess(authz, "drawingId"))
	drawings.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"owner", "/drawings/drw_1", http.StatusNoContent},
		{"someone else", "/drawings/drw_2", http.StatusForbidden},
		{"unknown", "/drawings/drw_9", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("X-User", "user_a")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandlers(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret")
	h := NewHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	api := r.PathPrefix("/api").Subrouter()
	api.Use(svc.Authenticate)
	api.HandleFunc("/me", h.Me).Methods("GET")

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/auth/register", `{"email":" ada@example.com ","password":"hunter22","displayName":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg AuthResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reg))
	assert.Equal(t, "ada@example.com", reg.User.Email)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, reg.User, me)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		reason string
	}{
		{"login", "/auth/login", `{"email":"ada@example.com","password":"hunter22"}`, http.StatusOK, ""},
		{"wrong password", "/auth/login", `{"email":"ada@example.com","password":"hunter23"}`, http.StatusUnauthorized, "invalid credentials"},
		{"login missing password", "/auth/login", `{"email":"ada@example.com"}`, http.StatusBadRequest, "email and password are required"},
		{"email taken", "/auth/register", `{"email":"ada@example.com","password":"hunter22","displayName":"Ada"}`, http.StatusConflict, "email already registered"},
		{"short password", "/auth/register", `{"email":"bob@example.com","password":"short","displayName":"Bob"}`, http.StatusBadRequest, "at least 8 characters"},
		{"no display name", "/auth/register", `{"email":"bob@example.com","password":"hunter22"}`, http.StatusBadRequest, "displayName are required"},
		{"bad body", "/auth/register", `{`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.reason)
		})
	}
}

func TestMeForDeletedUser(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user_gone"))
	rec := httptest.NewRecorder()

	NewHandler(svc).Me(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}
