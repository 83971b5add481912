package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/userpanel/adminserver/internal/audit"
	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/internal/services"
	"github.com/userpanel/adminserver/internal/store"
	"github.com/userpanel/adminserver/internal/views"
	"github.com/userpanel/adminserver/types"
)

// AdminHandler serves the dashboard and the administrative mutation
// endpoints.
type AdminHandler struct {
	users  *services.UserService
	groups *services.GroupService
	views  *views.Renderer
	audit  *audit.Recorder
	log    logging.Logger
}

// NewAdminHandler constructs an AdminHandler with the provided
// dependencies.
func NewAdminHandler(
	users *services.UserService,
	groups *services.GroupService,
	renderer *views.Renderer,
	recorder *audit.Recorder,
	log logging.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:  users,
		groups: groups,
		views:  renderer,
		audit:  recorder,
		log:    log,
	}
}

// AdminRouter registers the protected routes. requireUser resolves the
// session; mutations are additionally gated on the administrators
// group before any storage write.
func AdminRouter(r chi.Router, handler *AdminHandler, requireUser func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/admin/dashboard", handler.Dashboard)
		r.Get("/admin/users", handler.ListUsers)

		r.Group(func(r chi.Router) {
			r.Use(RequireGroup(types.AdminGroup))
			r.Post("/admin/edit_user", handler.EditUser)
			r.Post("/admin/add_user_to_group", handler.AddUserToGroup)
			r.Post("/admin/remove_user_from_group", handler.RemoveUserFromGroup)
			r.Post("/admin/create_group", handler.CreateGroup)
			r.Post("/admin/rename_group", handler.RenameGroup)
			r.Post("/admin/delete_group", handler.DeleteGroup)
			r.Post("/admin/delete_user", handler.DeleteUser)
		})
	})
}

type dashboardPage struct {
	User            types.User
	IsAdmin         bool
	Users           []types.User
	Groups          []types.Group
	GroupUserCounts map[string]int
	TotalUsers      int
	AdminCount      int
}

// UserListResponse is the paginated JSON user list payload.
type UserListResponse struct {
	Items []types.User `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

type membershipRequest struct {
	Username  string `json:"username"`
	GroupName string `json:"group_name"`
}

type deleteGroupRequest struct {
	Name string `json:"name"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Dashboard renders the panel for any authenticated user. The IsAdmin
// flag controls which controls the page shows; it grants nothing by
// itself.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	groups, err := h.groups.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	counts, err := h.groups.MemberCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count memberships")
		return
	}

	h.views.Render(w, http.StatusOK, "dashboard.html", dashboardPage{
		User:            user,
		IsAdmin:         user.InGroup(types.AdminGroup),
		Users:           users,
		Groups:          groups,
		GroupUserCounts: counts,
		TotalUsers:      len(users),
		AdminCount:      counts[types.AdminGroup],
	})
}

// ListUsers returns a paginated JSON listing of users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.users.ListPage(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	total, err := h.users.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// EditUser updates a user's full name.
func (h *AdminHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	fullName := strings.TrimSpace(r.PostFormValue("full_name"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	if err := h.users.UpdateFullName(r.Context(), username, fullName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	h.recordAction(r, "edit_user", username)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// AddUserToGroup adds a user to a group. Adding an existing member is
// a no-op.
func (h *AdminHandler) AddUserToGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	groupName := strings.TrimSpace(r.PostFormValue("group_name"))
	if username == "" || groupName == "" {
		writeError(w, http.StatusBadRequest, "username and group_name are required")
		return
	}

	user, group, err := h.lookupMembershipPair(r, username, groupName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user or group not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to look up user or group")
		return
	}

	if err := h.groups.AddMember(r.Context(), user.ID, group.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add user to group")
		return
	}

	h.recordAction(r, "add_user_to_group", username+":"+groupName)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// RemoveUserFromGroup removes a user from a group. JSON in, JSON out.
func (h *AdminHandler) RemoveUserFromGroup(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "invalid request"})
		return
	}
	if req.Username == "" || req.GroupName == "" {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "Username and group_name are required"})
		return
	}

	user, group, err := h.lookupMembershipPair(r, req.Username, req.GroupName)
	if err != nil {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "User or group not found"})
		return
	}

	if err := h.groups.RemoveMember(r.Context(), user.ID, group.ID); err != nil {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "failed to remove user from group"})
		return
	}

	h.recordAction(r, "remove_user_from_group", req.Username+":"+req.GroupName)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// CreateGroup creates a new named group.
func (h *AdminHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	name := strings.TrimSpace(r.PostFormValue("group_name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "group_name is required")
		return
	}

	if _, err := h.groups.Create(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "group already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create group")
		return
	}

	h.recordAction(r, "create_group", name)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// RenameGroup changes an existing group's name.
func (h *AdminHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	groupID, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("group_id")))
	if err != nil || groupID < 1 {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	newName := strings.TrimSpace(r.PostFormValue("new_name"))
	if newName == "" {
		writeError(w, http.StatusBadRequest, "new_name is required")
		return
	}

	if err := h.groups.Rename(r.Context(), groupID, newName); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "group not found")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusBadRequest, "group already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to rename group")
		}
		return
	}

	h.recordAction(r, "rename_group", newName)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// DeleteGroup removes a group by name. JSON in, JSON out.
func (h *AdminHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	var req deleteGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "name is required"})
		return
	}

	group, err := h.groups.GetByName(r.Context(), req.Name)
	if err != nil {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "Group not found"})
		return
	}

	if err := h.groups.Delete(r.Context(), group.ID); err != nil {
		writeJSON(w, http.StatusOK, successResponse{Success: false, Error: "failed to delete group"})
		return
	}

	h.recordAction(r, "delete_group", req.Name)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteUser removes an account. Administrators cannot delete
// themselves: the self check runs before any lookup or write,
// regardless of authorization.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	if username == actor.Username {
		h.log.Warn(r.Context(), "admin attempted to delete own account", "username", username)
		writeError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	if err := h.users.Delete(r.Context(), username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.recordAction(r, "delete_user", username)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *AdminHandler) lookupMembershipPair(r *http.Request, username, groupName string) (types.User, types.Group, error) {
	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		return types.User{}, types.Group{}, err
	}
	group, err := h.groups.GetByName(r.Context(), groupName)
	if err != nil {
		return types.User{}, types.Group{}, err
	}
	return user, group, nil
}

func (h *AdminHandler) recordAction(r *http.Request, action, target string) {
	actor, err := currentUser(r.Context())
	if err != nil {
		return
	}
	h.log.Info(r.Context(), "admin action", "action", action, "actor", actor.Username, "target", target)
	h.audit.Record(r.Context(), action, actor.Username, target)
}
