package http

import (
	"net/http"
	"time"

	"github.com/sultonabiev/task-management/internal/auth/service"
	commonhttp "github.com/sultonabiev/task-management/internal/common/http"
	"github.com/sultonabiev/task-management/internal/common/jwtauth"
	"github.com/sultonabiev/task-management/internal/common/logger"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Supervisor bool   `json:"supervisor"`
}

type userResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Supervisor bool   `json:"supervisor"`
}

func toUserResponse(u userdomain.User) userResponse {
	return userResponse{
		ID:         int64(u.ID),
		Username:   u.Username,
		Supervisor: u.Supervisor,
	}
}

type Handler struct {
	auth *service.CredentialService
	log  *logger.Logger
}

// NewHandler exposes login/logout and user management. Listing users is
// open; every mutation requires a verified bearer token.
func NewHandler(auth *service.CredentialService, jwtSecret string, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, log: log}

	requireAuth := jwtauth.Middleware(jwtSecret, log)
	withTimeout := commonhttp.WithTimeout(requestTimeout)
	post := commonhttp.RequireMethod(http.MethodPost)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", post(withTimeout(h.login)))
	mux.HandleFunc("/api/auth/logout", post(requireAuth(withTimeout(h.logout))))
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			withTimeout(h.listUsers)(w, r)
		case http.MethodPost:
			requireAuth(withTimeout(h.createUser))(w, r)
		default:
			commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
		}
	})
	mux.HandleFunc("/api/users/", requireAuth(withTimeout(h.userByName)))
	return mux
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// logout is deliberately stateless: access tokens are short-lived and
// nothing is revoked server-side. The call still requires a resolvable
// identity so an anonymous caller gets a 401.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	actor, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"username": actor.Username,
		"action":   "logout",
	}).Info("logout")

	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.DetailResponse{Detail: "logged out successfully"})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.CurrentUser(r.Context()); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	var req userRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("create user failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	user, err := h.auth.CreateUser(r.Context(), service.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Supervisor: req.Supervisor,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) userByName(w http.ResponseWriter, r *http.Request) {
	segments := commonhttp.SplitPathSuffix(r.URL.Path, "/api/users/")
	if len(segments) != 1 || segments[0] == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path", "")
		return
	}
	target := segments[0]

	if _, err := h.auth.CurrentUser(r.Context()); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.modifyUser(w, r, target)
	case http.MethodDelete:
		h.deleteUser(w, r, target)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
	}
}

func (h *Handler) modifyUser(w http.ResponseWriter, r *http.Request, target string) {
	var req userRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("modify user failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	user, err := h.auth.ModifyUser(r.Context(), target, service.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Supervisor: req.Supervisor,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, target string) {
	if err := h.auth.DeleteUser(r.Context(), target); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.DetailResponse{Detail: "user deleted successfully"})
}
