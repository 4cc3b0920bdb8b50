package http

import (
	"net/http"
	"time"

	authservice "github.com/sultonabiev/task-management/internal/auth/service"
	commonhttp "github.com/sultonabiev/task-management/internal/common/http"
	"github.com/sultonabiev/task-management/internal/common/jwtauth"
	"github.com/sultonabiev/task-management/internal/common/logger"
	"github.com/sultonabiev/task-management/internal/task/domain"
	"github.com/sultonabiev/task-management/internal/task/service"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
)

type taskRequest struct {
	Name       string `json:"name"`
	AssignedTo string `json:"assigned_to"`
	Status     bool   `json:"status"`
	Details    string `json:"details"`
}

type taskResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	AssignedTo  string  `json:"assigned_to"`
	Status      bool    `json:"status"`
	Details     string  `json:"details"`
	CompletedBy *string `json:"completed_by"`
}

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:          int64(t.ID),
		Name:        t.Name,
		AssignedTo:  t.AssignedTo,
		Status:      t.Status,
		Details:     t.Details,
		CompletedBy: t.CompletedBy,
	}
}

type Handler struct {
	tasks *service.TaskService
	auth  *authservice.CredentialService
	log   *logger.Logger
}

// NewHandler exposes the task endpoints. Listing is open; create,
// complete, modify and delete require a verified bearer token resolving
// to an existing user.
func NewHandler(
	tasks *service.TaskService,
	auth *authservice.CredentialService,
	jwtSecret string,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{tasks: tasks, auth: auth, log: log}

	requireAuth := jwtauth.Middleware(jwtSecret, log)
	withTimeout := commonhttp.WithTimeout(requestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			withTimeout(h.listTasks)(w, r)
		case http.MethodPost:
			requireAuth(withTimeout(h.createTask))(w, r)
		default:
			commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
		}
	})
	mux.HandleFunc("/api/tasks/", requireAuth(withTimeout(h.taskByID)))
	return mux
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	actor, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	var req taskRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("create task failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	task, err := h.tasks.Create(r.Context(), service.CreateInput{
		Name:       req.Name,
		AssignedTo: req.AssignedTo,
		Status:     req.Status,
		Details:    req.Details,
	}, actor)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) taskByID(w http.ResponseWriter, r *http.Request) {
	segments := commonhttp.SplitPathSuffix(r.URL.Path, "/api/tasks/")

	actor, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	switch {
	case len(segments) == 2 && segments[1] == "complete":
		id, ok := commonhttp.ParseID(segments[0])
		if !ok {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidTaskID, "invalid task id", "")
			return
		}
		if r.Method != http.MethodPost {
			commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
			return
		}
		h.completeTask(w, r, domain.ID(id), actor)
	case len(segments) == 1:
		id, ok := commonhttp.ParseID(segments[0])
		if !ok {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidTaskID, "invalid task id", "")
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.modifyTask(w, r, domain.ID(id))
		case http.MethodDelete:
			h.deleteTask(w, r, domain.ID(id))
		default:
			commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
		}
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path", "")
	}
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request, id domain.ID, actor userdomain.User) {
	task, err := h.tasks.Complete(r.Context(), id, actor)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) modifyTask(w http.ResponseWriter, r *http.Request, id domain.ID) {
	var req taskRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("modify task failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	task, err := h.tasks.Modify(r.Context(), id, service.ModifyInput{
		Name:       req.Name,
		AssignedTo: req.AssignedTo,
		Status:     req.Status,
		Details:    req.Details,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, id domain.ID) {
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.DetailResponse{Detail: "task deleted successfully"})
}
