package identityserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	"github.com/Pixelynx/pfn-client-go/pkg/validation"
)

// Error messages mirror the production identity API so SDK error handling
// can be exercised against realistic payloads.
const (
	msgInvalidCredentials  = "Invalid email or password"
	msgInvalidRefreshToken = "Invalid refresh token"
	msgRegistered          = "User registered successfully"
)

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HandleRegister implements POST /api/v0/auth/register.
//
// Input: { "email": "...", "password": "...", "firstName": "...", "lastName": "..." }
// Output: { "message": "User registered successfully", "user": {...} }
func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := validation.Validate(&req); err != nil {
		s.logger.WarnContext(ctx, "invalid register request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user, err := s.users.Create(ctx, models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: s.now().UTC(),
	}, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": msgRegistered,
		"user":    user,
	})
}

// HandleLogin implements POST /api/v0/auth/login.
//
// Input: { "email": "...", "password": "..." }
// Output: { "accessToken": "...", "refreshToken": "...", "user": {...} }
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	user, hash, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same answer for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
		s.logger.WarnContext(ctx, "password mismatch", "user_id", user.ID)
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	accessToken, err := s.issuer.Mint(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	refreshToken, err := s.issueRefreshToken(r, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         user,
	})
}

// HandleRefresh implements POST /api/v0/auth/refresh. Refresh tokens are
// single-use: each exchange consumes the presented token and issues a new
// pair.
//
// Input: { "refreshToken": "..." }
// Output: { "accessToken": "...", "refreshToken": "..." }
func (s *Server) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	rec, err := s.refreshTok.Consume(ctx, req.RefreshToken, s.now())
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Refresh token expired")
			return
		}
		writeError(w, http.StatusUnauthorized, msgInvalidRefreshToken)
		return
	}

	user, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgInvalidRefreshToken)
		return
	}

	accessToken, err := s.issuer.Mint(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	refreshToken, err := s.issueRefreshToken(r, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.logger.DebugContext(ctx, "token refreshed", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// HandleLogout implements POST /api/v0/auth/logout. It requires a bearer
// token and revokes every refresh token issued to that user.
func (s *Server) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := bearerToken(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}
	userID, err := s.issuer.Verify(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid access token")
		return
	}

	if err := s.refreshTok.DeleteByUser(ctx, userID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to revoke session")
		return
	}

	s.logger.InfoContext(ctx, "user signed out", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// issueRefreshToken stores a new opaque refresh token along with a display
// name for the device it was issued to, e.g. "Chrome on Mac OS X".
func (s *Server) issueRefreshToken(r *http.Request, userID int64) (string, error) {
	now := s.now()
	token := "ref_" + uuid.NewString()
	err := s.refreshTok.Create(r.Context(), &RefreshTokenRecord{
		Token:      token,
		UserID:     userID,
		DeviceName: deviceDisplayName(r.UserAgent()),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.refreshTTL),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func deviceDisplayName(rawUA string) string {
	if rawUA == "" {
		return "Unknown device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown device"
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
