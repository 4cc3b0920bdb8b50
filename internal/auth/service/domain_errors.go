package service

import (
	"net/http"

	commonerrors "github.com/sultonabiev/task-management/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrNotAuthenticated = commonerrors.NewDomainError(
		"NOT_AUTHENTICATED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"not authenticated",
	)

	// Duplicate usernames surface as a 400, matching the original API
	// contract rather than the more conventional 409.
	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_ALREADY_EXISTS",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"username already exists",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)
)
