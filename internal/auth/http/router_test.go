package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authhttp "github.com/sultonabiev/task-management/internal/auth/http"
	"github.com/sultonabiev/task-management/internal/auth/service"
	"github.com/sultonabiev/task-management/internal/common/clock"
	"github.com/sultonabiev/task-management/internal/common/logger"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
	userrepo "github.com/sultonabiev/task-management/internal/user/repository"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) (userdomain.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	listFunc           func(ctx context.Context) ([]userdomain.User, error)
	updateFunc         func(ctx context.Context, target string, user userdomain.User) (userdomain.User, error)
	deleteFunc         func(ctx context.Context, username string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) (userdomain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = 1
	return user, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]userdomain.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, target string, user userdomain.User) (userdomain.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, target, user)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) Delete(ctx context.Context, username string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, username)
	}
	return userrepo.ErrUserNotFound
}

type mockHasher struct {
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed_"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func setupHandler(t *testing.T) (http.Handler, *mockUserRepo) {
	t.Helper()

	log, err := logger.New("", "test", "critical")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	mockRepo := &mockUserRepo{}
	tokens := service.NewTokenIssuer(testSecret, 15*time.Minute, clock.NewRealClock())
	svc := service.NewCredentialService(mockRepo, &mockHasher{}, tokens, log)

	return authhttp.NewHandler(svc, testSecret, 30*time.Second, log), mockRepo
}

func bearerToken(t *testing.T, user userdomain.User) string {
	t.Helper()
	tokens := service.NewTokenIssuer(testSecret, 15*time.Minute, clock.NewRealClock())
	token, _, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return env
}

func TestAuthHTTP_Login_Success(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin", PasswordHash: "hashed_Admin"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
		"username": "Admin",
		"password": "Admin",
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected access token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("expected token type bearer, got %s", resp.TokenType)
	}
}

func TestAuthHTTP_Login_InvalidCredentials(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin", PasswordHash: "hashed_Admin"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
		"username": "Admin",
		"password": "wrong",
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %s", env.Code)
	}
}

func TestAuthHTTP_Login_UnknownUserSameError(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
		"username": "ghost",
		"password": "whatever",
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %s", env.Code)
	}
}

func TestAuthHTTP_Login_InvalidJSON(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "INVALID_JSON" {
		t.Errorf("expected INVALID_JSON, got %s", env.Code)
	}
}

func TestAuthHTTP_Login_MethodNotAllowed(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestAuthHTTP_Logout_RequiresToken(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "MISSING_AUTHORIZATION" {
		t.Errorf("expected MISSING_AUTHORIZATION, got %s", env.Code)
	}
}

func TestAuthHTTP_Logout_Success(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 1, Username: "Admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Detail != "logged out successfully" {
		t.Errorf("unexpected detail: %s", resp.Detail)
	}
}

func TestAuthHTTP_ListUsers_Open(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.listFunc = func(ctx context.Context) ([]userdomain.User, error) {
		return []userdomain.User{
			{ID: 1, Username: "Admin", PasswordHash: "hashed_Admin"},
			{ID: 2, Username: "worker", PasswordHash: "hashed_pw", Supervisor: true},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(body, "hashed_") {
		t.Error("response must not expose password hashes")
	}

	var users []struct {
		ID         int64  `json:"id"`
		Username   string `json:"username"`
		Supervisor bool   `json:"supervisor"`
	}
	if err := json.Unmarshal([]byte(body), &users); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[1].Username != "worker" || !users[1].Supervisor {
		t.Errorf("unexpected second user: %+v", users[1])
	}
}

func TestAuthHTTP_CreateUser_RequiresToken(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", jsonBody(t, map[string]any{
		"username": "worker",
		"password": "pw",
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHTTP_CreateUser_Success(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin"}, nil
	}
	mockRepo.createFunc = func(ctx context.Context, user userdomain.User) (userdomain.User, error) {
		user.ID = 2
		return user, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users", jsonBody(t, map[string]any{
		"username":   "worker",
		"password":   "pw",
		"supervisor": true,
	}))
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 1, Username: "Admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID         int64  `json:"id"`
		Username   string `json:"username"`
		Supervisor bool   `json:"supervisor"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.ID != 2 || resp.Username != "worker" || !resp.Supervisor {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAuthHTTP_CreateUser_DuplicateUsername(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin"}, nil
	}
	mockRepo.createFunc = func(ctx context.Context, user userdomain.User) (userdomain.User, error) {
		return userdomain.User{}, userrepo.ErrUsernameAlreadyExists
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users", jsonBody(t, map[string]any{
		"username": "worker",
		"password": "pw",
	}))
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 1, Username: "Admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "USERNAME_ALREADY_EXISTS" {
		t.Errorf("expected USERNAME_ALREADY_EXISTS, got %s", env.Code)
	}
}

func TestAuthHTTP_ModifyUser_Success(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin"}, nil
	}
	mockRepo.updateFunc = func(ctx context.Context, target string, user userdomain.User) (userdomain.User, error) {
		if target != "worker" {
			t.Errorf("expected target worker, got %s", target)
		}
		user.ID = 2
		return user, nil
	}

	req := httptest.NewRequest(http.MethodPut, "/api/users/worker", jsonBody(t, map[string]any{
		"username":   "worker2",
		"password":   "newpw",
		"supervisor": false,
	}))
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 1, Username: "Admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Username != "worker2" {
		t.Errorf("expected renamed user, got %s", resp.Username)
	}
}

func TestAuthHTTP_DeleteUser_NotFound(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin"}, nil
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/users/ghost", nil)
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 1, Username: "Admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "USER_NOT_FOUND" {
		t.Errorf("expected USER_NOT_FOUND, got %s", env.Code)
	}
}

func TestAuthHTTP_DeleteUser_Success(t *testing.T) {
	h, mockRepo := setupHandler(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: "Admin"}, nil
	}
	mockRepo.deleteFunc = func(ctx context.Context, username string) error {
		if username != "worker" {
			t.Errorf("expected worker deleted, got %s", username)
		}
		return nil
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/users/worker", nil)
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 1, Username: "Admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHTTP_GatedCall_DeletedUserRejected(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", bearerToken(t, userdomain.User{ID: 9, Username: "ghost"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for token of a deleted user, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "NOT_AUTHENTICATED" {
		t.Errorf("expected NOT_AUTHENTICATED, got %s", env.Code)
	}
}
