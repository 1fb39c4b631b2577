package handler

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/billkhata/api/internal/auth"
	"github.com/billkhata/api/internal/store"
)

const otpTTL = 5 * time.Minute

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// AuthStore defines the record store methods needed by auth handlers.
// Satisfied by any store.RecordStore; narrow interface for testability.
type AuthStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string

	// mockOTP accepts any code at login without issuing one first.
	mockOTP bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string, mockOTP bool) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret, mockOTP: mockOTP}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/request-otp", h.RequestOTP)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type requestOTPRequest struct {
	Phone string `json:"phone"`
}

type loginRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	Phone string `json:"phone"`
}

// otpRecord is the persisted form of an issued OTP. Only the bcrypt hash
// is stored; the code itself never touches the record store.
type otpRecord struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func otpKey(phone string) string { return "otp:" + phone }

// --- Handlers ---

// RequestOTP issues a one-time code for the given phone number. The code is
// hashed before storage and expires after otpTTL.
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !phonePattern.MatchString(req.Phone) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone must be 10 digits"})
		return
	}

	code, err := generateOTP()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	record, err := json.Marshal(otpRecord{Hash: string(hash), ExpiresAt: time.Now().Add(otpTTL)})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.store.Set(r.Context(), otpKey(req.Phone), record); err != nil {
		log.Printf("ERROR: failed to store OTP for %s: %v", req.Phone, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// There is no SMS gateway wired up yet; the code is only usable in
	// mock mode or by reading the server log in development.
	log.Printf("INFO: OTP issued for %s (mock=%v): %s", req.Phone, h.mockOTP, code)

	writeJSON(w, http.StatusOK, map[string]string{"message": "otp sent"})
}

// Login exchanges a phone number and OTP for a token pair. In mock mode any
// well-formed code is accepted, matching the demo login flow.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !phonePattern.MatchString(req.Phone) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone must be 10 digits"})
		return
	}
	if req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "otp is required"})
		return
	}

	if !h.mockOTP {
		raw, err := h.store.Get(r.Context(), otpKey(req.Phone))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		var record otpRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		if time.Now().After(record.ExpiresAt) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "otp expired"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(record.Hash), []byte(req.OTP)); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}

		// One-shot code: remove it so a replayed login fails.
		if err := h.store.Remove(r.Context(), otpKey(req.Phone)); err != nil {
			log.Printf("ERROR: failed to remove used OTP for %s: %v", req.Phone, err)
		}
	}

	h.respondWithTokens(w, req.Phone)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	// Parse refresh token -- it uses RegisteredClaims with Subject = phone.
	token, err := jwt.ParseWithClaims(req.RefreshToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	if !phonePattern.MatchString(claims.Subject) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	h.respondWithTokens(w, claims.Subject)
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, phone string) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, phone)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, phone)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse{Phone: phone},
	})
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
