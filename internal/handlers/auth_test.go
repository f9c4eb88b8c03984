package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"board-backend/internal/models"
	"board-backend/internal/repository"
	"board-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	deleted []string
}

func (f *fakeAccounts) Create(context.Context, *models.Account) error { return nil }

func (f *fakeAccounts) GetByEmail(context.Context, string) (*models.Account, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) Delete(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

type fakeUsernames struct {
	exists   bool
	claimErr error
}

func (f *fakeUsernames) Exists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeUsernames) Claim(context.Context, *models.UsernameReservation, *models.UserProfile) error {
	return f.claimErr
}

func newAuthRouter(accounts *fakeAccounts, usernames *fakeUsernames) http.Handler {
	authService := services.NewAuthService(accounts, usernames, "test-secret")
	h := NewAuthHandler(authService)

	r := chi.NewRouter()
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Get("/nicknames/{nickname}", h.CheckNickname)
	return r
}

func TestAuthHandler_CheckNickname(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{exists: false})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nicknames/Abc", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp NicknameResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "abc", resp.Nickname)
		assert.Equal(t, "available", resp.Status)
		assert.True(t, resp.Valid)
	})

	t.Run("taken", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{exists: true})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nicknames/abc", nil))

		var resp NicknameResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "taken", resp.Status)
	})

	t.Run("too long nickname is reported invalid", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{exists: false})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nicknames/abcdef", nil))

		var resp NicknameResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "available", resp.Status)
		assert.False(t, resp.Valid)
	})
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{})
		body := `{"email":"a@example.com","password":"password","nickname":"abc"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("malformed email fails validation", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{})
		body := `{"email":"not-an-email","password":"password","nickname":"abc"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("taken nickname is a conflict and rolls back the account", func(t *testing.T) {
		accounts := &fakeAccounts{}
		router := newAuthRouter(accounts, &fakeUsernames{claimErr: repository.ErrNicknameTaken})
		body := `{"email":"a@example.com","password":"password","nickname":"abc"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Len(t, accounts.deleted, 1)
	})

	t.Run("oversized nickname is a bad request", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{})
		body := `{"email":"a@example.com","password":"password","nickname":"abcdef"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("unknown account is unauthorized", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{})
		body := `{"email":"a@example.com","password":"password"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed email is the same credential error", func(t *testing.T) {
		router := newAuthRouter(&fakeAccounts{}, &fakeUsernames{})
		body := `{"email":"broken","password":"password"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
