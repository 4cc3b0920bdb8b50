package service

import (
	"context"
	"errors"
	"time"

	"github.com/sultonabiev/task-management/internal/common/constants"
	commoncrypto "github.com/sultonabiev/task-management/internal/common/crypto"
	commonerrors "github.com/sultonabiev/task-management/internal/common/errors"
	"github.com/sultonabiev/task-management/internal/common/jwtauth"
	"github.com/sultonabiev/task-management/internal/common/logger"
	"github.com/sultonabiev/task-management/internal/observability/metrics"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
	userrepo "github.com/sultonabiev/task-management/internal/user/repository"
)

// CredentialService owns user records: admin bootstrap, login, identity
// resolution for gated calls, and user CRUD.
type CredentialService struct {
	users  userrepo.Repository
	hasher commoncrypto.PasswordHasher
	tokens *TokenIssuer
	log    *logger.Logger
}

func NewCredentialService(
	users userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	tokens *TokenIssuer,
	log *logger.Logger,
) *CredentialService {
	return &CredentialService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

type CreateUserInput struct {
	Username   string
	Password   string
	Supervisor bool
}

// EnsureAdmin creates the Admin/Admin account if no user with that name
// exists. Safe to call on every startup; a concurrent creation race is
// absorbed via the unique constraint.
func (s *CredentialService) EnsureAdmin(ctx context.Context) error {
	_, err := s.users.FindByUsername(ctx, constants.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, userrepo.ErrUserNotFound) {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	hash, err := s.hasher.Hash(constants.AdminPassword)
	if err != nil {
		return err
	}

	_, err = s.users.Create(ctx, userdomain.User{
		Username:     constants.AdminUsername,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			return nil
		}
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": constants.AdminUsername,
		"action":   "admin_bootstrap",
	}).Info("admin user created")

	return nil
}

func (s *CredentialService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return LoginResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return LoginResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return LoginResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"action":   "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// CurrentUser resolves the acting user from the verified token claims in
// ctx. The lookup is by username so a deleted account invalidates its
// outstanding tokens immediately.
func (s *CredentialService) CurrentUser(ctx context.Context) (userdomain.User, error) {
	claims, ok := jwtauth.FromContext(ctx)
	if !ok {
		return userdomain.User{}, ErrNotAuthenticated
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": claims.Username,
				"action":   "current_user_gone",
			}).Warn("token refers to a deleted user")
			return userdomain.User{}, ErrNotAuthenticated
		}
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return user, nil
}

func (s *CredentialService) ListUsers(ctx context.Context) ([]userdomain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return users, nil
}

func (s *CredentialService) CreateUser(ctx context.Context, input CreateUserInput) (userdomain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "create_user_hash_failed",
		}).Errorf("create user failed: password hash error: %v", err)
		return userdomain.User{}, err
	}

	user, err := s.users.Create(ctx, userdomain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Supervisor:   input.Supervisor,
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "create_user_username_exists",
			}).Warn("create user failed: already exists")
			return userdomain.User{}, ErrUsernameTaken
		}
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"action":   "create_user_success",
	}).Info("user created")
	metrics.UsersCreated.Inc()

	return user, nil
}

// ModifyUser overwrites username, password and supervisor flag
// unconditionally. The password is always rehashed; callers must resend
// fields they want kept.
func (s *CredentialService) ModifyUser(ctx context.Context, target string, input CreateUserInput) (userdomain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return userdomain.User{}, err
	}

	user, err := s.users.Update(ctx, target, userdomain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Supervisor:   input.Supervisor,
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.User{}, ErrUserNotFound
		}
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"target":   target,
		"action":   "modify_user_success",
	}).Info("user modified")
	metrics.UsersModified.Inc()

	return user, nil
}

func (s *CredentialService) DeleteUser(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "delete_user_success",
	}).Info("user deleted")
	metrics.UsersDeleted.Inc()

	return nil
}
