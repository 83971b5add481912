package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/userpanel/adminserver/config"
	"github.com/userpanel/adminserver/internal/audit"
	"github.com/userpanel/adminserver/internal/auth"
	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/internal/services"
	"github.com/userpanel/adminserver/internal/store"
	"github.com/userpanel/adminserver/internal/views"
	"github.com/userpanel/adminserver/types"
)

// AuthHandler serves the login, registration, and logout endpoints.
type AuthHandler struct {
	users  *services.UserService
	issuer *auth.Issuer
	views  *views.Renderer
	audit  *audit.Recorder
	cfg    config.AuthConfig
	log    logging.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided
// dependencies.
func NewAuthHandler(
	users *services.UserService,
	issuer *auth.Issuer,
	renderer *views.Renderer,
	recorder *audit.Recorder,
	cfg config.AuthConfig,
	log logging.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:  users,
		issuer: issuer,
		views:  renderer,
		audit:  recorder,
		cfg:    cfg,
		log:    log,
	}
}

// AuthRouter registers login, registration, and logout routes.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/admin", handler.LoginForm)
	r.Post("/admin", handler.Login)
	r.Get("/register", handler.RegisterForm)
	r.Post("/register", handler.Register)
	r.Post("/logout", handler.Logout)
}

type loginPage struct {
	Error     string
	Info      string
	EmailAuth bool
}

type registerPage struct {
	Error             string
	InviteCodeEnabled bool
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "login.html", loginPage{EmailAuth: h.cfg.EmailAuthEnabled})
}

// Login verifies the submitted credential and sets the session cookie.
// Unknown identifier and wrong password produce an identical response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	identifier := strings.TrimSpace(r.PostFormValue("identifier"))
	password := r.PostFormValue("password")

	user, cookieValue, err := h.issuer.Login(r.Context(), identifier, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.views.Render(w, http.StatusOK, "login.html", loginPage{
				Error:     "Invalid credentials",
				EmailAuth: h.cfg.EmailAuthEnabled,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	http.SetCookie(w, auth.SessionCookie(cookieValue))
	h.audit.Record(r.Context(), "login", user.Username, "")
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

// RegisterForm renders the registration page, or 404 when registration
// is disabled.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.RegistrationEnabled {
		writeError(w, http.StatusNotFound, "registration is disabled")
		return
	}
	h.views.Render(w, http.StatusOK, "register.html", registerPage{
		InviteCodeEnabled: h.cfg.InviteCodeEnabled,
	})
}

// Register creates a new account from the submitted form.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.RegistrationEnabled {
		writeError(w, http.StatusNotFound, "registration is disabled")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	fullName := strings.TrimSpace(r.PostFormValue("full_name"))
	password := r.PostFormValue("password")

	if username == "" || password == "" {
		h.renderRegister(w, "Username and password are required")
		return
	}

	if h.cfg.InviteCodeEnabled && r.PostFormValue("invite_code") != h.cfg.InviteCode {
		h.log.Warn(r.Context(), "registration rejected: invalid invite code", "username", username)
		h.renderRegister(w, "Invalid invite code")
		return
	}

	if _, err := h.users.GetByUsername(r.Context(), username); err == nil {
		h.log.Warn(r.Context(), "registration rejected: username taken", "username", username)
		h.renderRegister(w, "Username already taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.users.Create(r.Context(), types.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.renderRegister(w, "Username or email already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.log.Info(r.Context(), "new user registered", "username", user.Username)
	h.views.Render(w, http.StatusOK, "login.html", loginPage{
		Info:      "Registration successful, please log in",
		EmailAuth: h.cfg.EmailAuthEnabled,
	})
}

// Logout deletes the session cookie. Sessions are stateless, so this
// always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie())
	h.log.Info(r.Context(), "session cookie deleted")
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, message string) {
	h.views.Render(w, http.StatusOK, "register.html", registerPage{
		Error:             message,
		InviteCodeEnabled: h.cfg.InviteCodeEnabled,
	})
}
