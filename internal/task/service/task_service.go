package service

import (
	"context"
	"errors"

	commonerrors "github.com/sultonabiev/task-management/internal/common/errors"
	"github.com/sultonabiev/task-management/internal/common/logger"
	"github.com/sultonabiev/task-management/internal/observability/metrics"
	"github.com/sultonabiev/task-management/internal/task/domain"
	taskrepo "github.com/sultonabiev/task-management/internal/task/repository"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
)

// TaskService owns task records and the completion transition. Mutating
// operations take the acting user resolved by the HTTP layer; listing is
// open to anyone.
type TaskService struct {
	tasks taskrepo.Repository
	log   *logger.Logger
}

func NewTaskService(tasks taskrepo.Repository, log *logger.Logger) *TaskService {
	return &TaskService{
		tasks: tasks,
		log:   log,
	}
}

type CreateInput struct {
	Name       string
	AssignedTo string
	Status     bool
	Details    string
}

type ModifyInput struct {
	Name       string
	AssignedTo string
	Status     bool
	Details    string
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return tasks, nil
}

// Create accepts a caller-supplied status, so a task may be born already
// completed. CompletedBy stays null in that case: only Complete sets it.
func (s *TaskService) Create(ctx context.Context, input CreateInput, actor userdomain.User) (domain.Task, error) {
	task, err := s.tasks.Create(ctx, domain.Task{
		Name:       input.Name,
		Details:    input.Details,
		AssignedTo: input.AssignedTo,
		Status:     input.Status,
	})
	if err != nil {
		return domain.Task{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"task_id":  int64(task.ID),
		"actor":    actor.Username,
		"action":   "create_task_success",
		"assigned": task.AssignedTo,
	}).Info("task created")
	metrics.TasksCreated.Inc()

	return task, nil
}

// Complete marks the task completed and stamps the acting user's name.
// There is no guard against completing twice; a repeat call overwrites
// the previous completer.
func (s *TaskService) Complete(ctx context.Context, id domain.ID, actor userdomain.User) (domain.Task, error) {
	task, err := s.tasks.Complete(ctx, id, actor.Username)
	if err != nil {
		if errors.Is(err, taskrepo.ErrTaskNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"task_id": int64(task.ID),
		"actor":   actor.Username,
		"action":  "complete_task_success",
	}).Info("task completed")
	metrics.TasksCompleted.Inc()

	return task, nil
}

// Modify overwrites all four editable fields wholesale, including status,
// bypassing the completion transition. CompletedBy is never touched here.
func (s *TaskService) Modify(ctx context.Context, id domain.ID, input ModifyInput) (domain.Task, error) {
	task, err := s.tasks.Update(ctx, id, domain.Task{
		Name:       input.Name,
		Details:    input.Details,
		AssignedTo: input.AssignedTo,
		Status:     input.Status,
	})
	if err != nil {
		if errors.Is(err, taskrepo.ErrTaskNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"task_id": int64(task.ID),
		"action":  "modify_task_success",
	}).Info("task modified")
	metrics.TasksModified.Inc()

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id domain.ID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, taskrepo.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"task_id": int64(id),
		"action":  "delete_task_success",
	}).Info("task deleted")
	metrics.TasksDeleted.Inc()

	return nil
}
