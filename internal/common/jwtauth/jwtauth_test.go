package jwtauth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sultonabiev/task-management/internal/common/jwtauth"
	"github.com/sultonabiev/task-management/internal/common/logger"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": int64(7),
		"usr": "worker",
		"exp": now.Add(15 * time.Minute).Unix(),
		"iat": now.Unix(),
	}
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "critical")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func TestParseToken_Valid(t *testing.T) {
	token := signToken(t, validClaims(), testSecret)

	claims, err := jwtauth.ParseToken(token, []byte(testSecret))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user id 7, got %d", claims.UserID)
	}
	if claims.Username != "worker" {
		t.Errorf("expected username worker, got %s", claims.Username)
	}
}

func TestParseToken_MissingClaims(t *testing.T) {
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"exp": now.Add(15 * time.Minute).Unix(),
		"iat": now.Unix(),
	}, testSecret)

	if _, err := jwtauth.ParseToken(token, []byte(testSecret)); err == nil {
		t.Error("expected error for token without sub and usr")
	}
}

func TestParseToken_WrongSigningMethod(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, validClaims()).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := jwtauth.ParseToken(token, []byte(testSecret)); err == nil {
		t.Error("expected error for non-HS256 token")
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	mw := jwtauth.Middleware(testSecret, newTestLogger(t))
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/tasks", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_MalformedToken(t *testing.T) {
	mw := jwtauth.Middleware(testSecret, newTestLogger(t))
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_ValidTokenReachesHandler(t *testing.T) {
	mw := jwtauth.Middleware(testSecret, newTestLogger(t))

	called := false
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := jwtauth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected claims in context")
		}
		if claims.UserID != 7 || claims.Username != "worker" {
			t.Errorf("unexpected claims: %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), testSecret))

	rec := httptest.NewRecorder()
	handler(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
