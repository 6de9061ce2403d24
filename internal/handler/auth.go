package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/session"
	"github.com/go-playground/validator/v10"
)

type loginForm struct {
	Username string `validate:"required,max=100"`
	Password string `validate:"required,max=72"`
}

type signupForm struct {
	Username string `validate:"required,min=3,max=100"`
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

// formError turns the first validation failure into a user-facing message.
func formError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return "Please enter your " + field + "."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return "Your " + field + " must be at least " + fe.Param() + " characters."
	case "max":
		return "Your " + field + " must be at most " + fe.Param() + " characters."
	}
	return "Invalid " + field + "."
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user *domain.User) bool {
	if err := h.sessions.Issue(w, session.Identity{UserID: user.ID, Username: user.Username}); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("[handler] issue session failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	return true
}

// GET, POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "login", map[string]any{"Username": ""})
		return
	}

	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	fail := func(status int, message string) {
		h.render(w, r, status, "login", map[string]any{
			"Username": form.Username,
			"Flash":    session.Flash{Kind: "error", Message: message},
		})
	}

	if err := h.validate.Struct(form); err != nil {
		fail(http.StatusBadRequest, formError(err))
		return
	}

	user, err := h.service.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			fail(http.StatusUnauthorized, "Invalid credentials. Please try again.")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("[handler] login failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if h.signIn(w, r, user) {
		h.redirect(w, r, "/", "success", "Welcome back, "+user.Username+"! 👋")
	}
}

// GET, POST /signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "signup", map[string]any{"Username": "", "Email": ""})
		return
	}

	form := signupForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	fail := func(status int, message string) {
		h.render(w, r, status, "signup", map[string]any{
			"Username": form.Username,
			"Email":    form.Email,
			"Flash":    session.Flash{Kind: "error", Message: message},
		})
	}

	if err := h.validate.Struct(form); err != nil {
		fail(http.StatusBadRequest, formError(err))
		return
	}

	user, err := h.service.Signup(r.Context(), form.Username, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			fail(http.StatusConflict, "Username or email already exists.")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("[handler] signup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if h.signIn(w, r, user) {
		h.redirect(w, r, "/", "success", "Account created! Welcome, "+user.Username+"! 🎉")
	}
}

// GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	h.redirect(w, r, "/", "info", "You've been logged out.")
}
