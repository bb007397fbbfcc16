package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

func TestClient_Login(t *testing.T) {
	t.Run("maps success payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, LoginPath, r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req models.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "test@example.com", req.Email)
			require.Equal(t, "password", req.Password)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"accessToken":  "t1",
				"refreshToken": "r1",
				"user": map[string]any{
					"id":        1,
					"email":     "test@example.com",
					"firstName": "Test",
					"lastName":  "User",
					"createdAt": "2025-01-02T03:04:05Z",
				},
			})
		}))
		defer srv.Close()

		client := New(srv.URL)
		resp, err := client.Login(context.Background(), models.LoginRequest{Email: "test@example.com", Password: "password"})
		require.NoError(t, err)
		assert.Equal(t, "t1", resp.AccessToken)
		assert.Equal(t, "r1", resp.RefreshToken)
		require.NotNil(t, resp.User)
		assert.Equal(t, "test@example.com", resp.User.Email)
	})

	t.Run("carries server error payload verbatim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
		}))
		defer srv.Close()

		client := New(srv.URL)
		_, err := client.Login(context.Background(), models.LoginRequest{Email: "test@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAPI))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Invalid email or password", apiErr.Message)
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := New(srv.URL)
		_, err := client.Login(context.Background(), models.LoginRequest{Email: "test@example.com", Password: "password"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
	})

	t.Run("error body without payload falls back to status text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := New(srv.URL)
		_, err := client.Login(context.Background(), models.LoginRequest{Email: "test@example.com", Password: "password"})
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.Contains(t, apiErr.Error(), "502")
	})
}

func TestClient_Register(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, RegisterPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "User registered successfully",
			"user": map[string]any{
				"id":        7,
				"email":     "new@example.com",
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"createdAt": "2025-01-02T03:04:05Z",
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	resp, err := client.Register(context.Background(), models.RegisterRequest{
		Email: "new@example.com", Password: "password123", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestClient_Logout(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, LogoutPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL)
	require.NoError(t, client.Logout(context.Background(), "t1"))
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestClient_Refresh(t *testing.T) {
	t.Run("returns rotated pair", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, RefreshPath, r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "r1", body["refreshToken"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "t2", "refreshToken": "r2"})
		}))
		defer srv.Close()

		client := New(srv.URL)
		pair, err := client.Refresh(context.Background(), "r1")
		require.NoError(t, err)
		assert.Equal(t, "t2", pair.AccessToken)
		assert.Equal(t, "r2", pair.RefreshToken)
	})

	t.Run("rejected refresh token surfaces the API error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Refresh token expired"})
		}))
		defer srv.Close()

		client := New(srv.URL)
		_, err := client.Refresh(context.Background(), "dead")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAPI))
	})
}

func TestIsAuthPath(t *testing.T) {
	assert.True(t, IsAuthPath(LoginPath))
	assert.True(t, IsAuthPath(RefreshPath))
	assert.False(t, IsAuthPath("/api/v0/products"))
	assert.False(t, IsAuthPath("/healthz"))
}
