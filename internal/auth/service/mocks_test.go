package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/sultonabiev/task-management/internal/auth/service"
	"github.com/sultonabiev/task-management/internal/common/clock"
	"github.com/sultonabiev/task-management/internal/common/logger"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
	userrepo "github.com/sultonabiev/task-management/internal/user/repository"
)

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
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "critical")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func setupCredentialService(t *testing.T) (*service.CredentialService, *mockUserRepo, *mockHasher, *clock.MockClock) {
	t.Helper()

	mockRepo := &mockUserRepo{}
	hasher := &mockHasher{}
	mockClock := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	tokens := service.NewTokenIssuer("test-secret-at-least-32-bytes-long!!", 15*time.Minute, mockClock)

	svc := service.NewCredentialService(mockRepo, hasher, tokens, newTestLogger(t))
	return svc, mockRepo, hasher, mockClock
}
