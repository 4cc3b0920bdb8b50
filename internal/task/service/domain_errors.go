package service

import (
	"net/http"

	commonerrors "github.com/sultonabiev/task-management/internal/common/errors"
)

var ErrTaskNotFound = commonerrors.NewDomainError(
	"TASK_NOT_FOUND",
	commonerrors.CategoryNotFound,
	http.StatusNotFound,
	"task not found",
)
