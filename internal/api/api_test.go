package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/dice"
)

func TestHandleRoll(t *testing.T) {
	api := &API{}

	t.Run("valid notation", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/roll?dice=2d6%2B3", nil)
		rec := httptest.NewRecorder()
		api.handleRoll(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var roll dice.Roll
		if err := json.NewDecoder(rec.Body).Decode(&roll); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(roll.Rolls) != 2 {
			t.Errorf("expected 2 rolls, got %d", len(roll.Rolls))
		}
		if roll.Total < 5 || roll.Total > 15 {
			t.Errorf("total %d out of range for 2d6+3", roll.Total)
		}
	})

	t.Run("missing parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/roll", nil)
		rec := httptest.NewRecorder()
		api.handleRoll(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid notation", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/roll?dice=banana", nil)
		rec := httptest.NewRecorder()
		api.handleRoll(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestGuildIDFromRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"guild_id": "123456"})
		rec := httptest.NewRecorder()
		id, ok := guildIDFromRequest(rec, req)
		if !ok || id != 123456 {
			t.Errorf("guildIDFromRequest = (%d, %v), want (123456, true)", id, ok)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"guild_id": "abc"})
		rec := httptest.NewRecorder()
		if _, ok := guildIDFromRequest(rec, req); ok {
			t.Error("expected failure for a non-numeric guild_id")
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	api := &API{jwtSecret: []byte("test-secret")}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			t.Error("claims missing from request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := api.authMiddleware(next)

	signedToken := func(secret []byte, expiresAt time.Time) string {
		claims := &Claims{
			UserID:   "42",
			Username: "tester",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(expiresAt),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signedToken([]byte("other-secret"), time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired token", "Bearer " + signedToken([]byte("test-secret"), time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"valid token", "Bearer " + signedToken([]byte("test-secret"), time.Now().Add(time.Hour)), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/user/guilds", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	a := generateRandomString(32)
	b := generateRandomString(32)
	if len(a) != 32 || len(b) != 32 {
		t.Errorf("lengths = %d, %d, want 32", len(a), len(b))
	}
	if a == b {
		t.Error("two random strings should not collide")
	}
}
