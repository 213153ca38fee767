package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openride/carpool-api/internal/api"
	"github.com/openride/carpool-api/internal/api/shared"
	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/mocks"
	"github.com/openride/carpool-api/internal/service/auth"
)

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func validRegisterRequest() api.RegisterRequest {
	return api.RegisterRequest{
		LoginID:   "kim123",
		Nickname:  "Kim",
		Email:     "kim@example.com",
		Type:      "passenger",
		Password:  "password123",
		Password2: "password123",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	newHandler := func() *api.AuthHandler {
		return api.NewAuthHandler(
			mocks.NewMemStore().UserStore(),
			&mocks.MockJWTService{},
			auth.NewBcryptVerifier(),
		)
	}

	t.Run("creates the user and returns its public shape", func(t *testing.T) {
		handler := newHandler()
		rec := httptest.NewRecorder()

		handler.Register(rec, newJSONRequest(t, http.MethodPost, "/auth/register", validRegisterRequest()))

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp api.UserResponse
		decodeBody(t, rec, &resp)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.Equal(t, "kim123", resp.LoginID)
		assert.Equal(t, "passenger", resp.Type)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("rejects mismatched password confirmation", func(t *testing.T) {
		handler := newHandler()
		rec := httptest.NewRecorder()

		req := validRegisterRequest()
		req.Password2 = "different123"
		handler.Register(rec, newJSONRequest(t, http.MethodPost, "/auth/register", req))

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp shared.ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Contains(t, resp.Detail, "password2")
	})

	t.Run("rejects an unknown account type", func(t *testing.T) {
		handler := newHandler()
		rec := httptest.NewRecorder()

		req := validRegisterRequest()
		req.Type = "admin"
		handler.Register(rec, newJSONRequest(t, http.MethodPost, "/auth/register", req))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns conflict for a duplicate login ID", func(t *testing.T) {
		handler := newHandler()

		first := httptest.NewRecorder()
		handler.Register(first, newJSONRequest(t, http.MethodPost, "/auth/register", validRegisterRequest()))
		require.Equal(t, http.StatusCreated, first.Code)

		dup := validRegisterRequest()
		dup.Email = "other@example.com"
		second := httptest.NewRecorder()
		handler.Register(second, newJSONRequest(t, http.MethodPost, "/auth/register", dup))

		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		handler := newHandler()
		rec := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Token(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) *api.AuthHandler {
		t.Helper()

		mem := mocks.NewMemStore()
		handler := api.NewAuthHandler(
			mem.UserStore(),
			&mocks.MockJWTService{Token: "access-token", RefreshToken: "refresh-token"},
			auth.NewBcryptVerifier(),
		)

		user, err := domain.NewUser(
			"kim123", "Kim", "kim@example.com", domain.RolePassenger, "", "password123",
		)
		require.NoError(t, err)
		require.NoError(t, mem.UserStore().Create(context.Background(), user))
		return handler
	}

	t.Run("issues a token pair for valid credentials", func(t *testing.T) {
		handler := setup(t)
		rec := httptest.NewRecorder()

		handler.Token(rec, newJSONRequest(t, http.MethodPost, "/auth/token",
			api.TokenRequest{LoginID: "kim123", Password: "password123"}))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TokenResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		handler := setup(t)
		rec := httptest.NewRecorder()

		handler.Token(rec, newJSONRequest(t, http.MethodPost, "/auth/token",
			api.TokenRequest{LoginID: "kim123", Password: "wrong-password"}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an unknown login ID with the same status", func(t *testing.T) {
		handler := setup(t)
		rec := httptest.NewRecorder()

		handler.Token(rec, newJSONRequest(t, http.MethodPost, "/auth/token",
			api.TokenRequest{LoginID: "nobody", Password: "password123"}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("issues a fresh pair for a valid refresh token", func(t *testing.T) {
		jwtService := &mocks.MockJWTService{
			Token:        "new-access",
			RefreshToken: "new-refresh",
			Claims:       &auth.Claims{UserID: userID, TokenType: auth.TokenTypeRefresh},
		}
		handler := api.NewAuthHandler(mocks.NewMemStore().UserStore(), jwtService, auth.NewBcryptVerifier())
		rec := httptest.NewRecorder()

		handler.RefreshToken(rec, newJSONRequest(t, http.MethodPost, "/auth/token/refresh",
			api.RefreshTokenRequest{RefreshToken: "old-refresh"}))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TokenResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "new-access", resp.AccessToken)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("rejects an invalid refresh token", func(t *testing.T) {
		jwtService := &mocks.MockJWTService{ValidateErr: auth.ErrInvalidRefreshToken}
		handler := api.NewAuthHandler(mocks.NewMemStore().UserStore(), jwtService, auth.NewBcryptVerifier())
		rec := httptest.NewRecorder()

		handler.RefreshToken(rec, newJSONRequest(t, http.MethodPost, "/auth/token/refresh",
			api.RefreshTokenRequest{RefreshToken: "garbage"}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Parallel()

	mem := mocks.NewMemStore()
	handler := api.NewAuthHandler(mem.UserStore(), &mocks.MockJWTService{}, auth.NewBcryptVerifier())

	user, err := domain.NewUser(
		"driver1", "Lee", "lee@example.com", domain.RoleDriver, "https://img.example.com/lee.png", "password123",
	)
	require.NoError(t, err)
	require.NoError(t, mem.UserStore().Create(context.Background(), user))

	t.Run("returns the authenticated user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, user.ID))
		rec := httptest.NewRecorder()

		handler.Me(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.UserResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, "driver", resp.Type)
		assert.Equal(t, "https://img.example.com/lee.png", resp.ProfileImage)
	})

	t.Run("requires an authenticated context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns not found for a deleted user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, uuid.New()))
		rec := httptest.NewRecorder()

		handler.Me(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
