package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/actuallystonmai/shopwiz/internal/catalog"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/service"
	"github.com/actuallystonmai/shopwiz/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{"index", "products", "product", "recommendations", "login", "signup", "wishlist"}

type Handler struct {
	service   *service.Service
	sessions  *session.Manager
	templates map[string]*template.Template
	validate  *validator.Validate
}

func NewHandler(svc *service.Service, sessions *session.Manager) (*Handler, error) {
	funcs := template.FuncMap{
		"truncate":   truncate,
		"productURL": productURL,
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Handler{
		service:   svc,
		sessions:  sessions,
		templates: templates,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Static serves the embedded JS and images.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// truncate shortens text to length runes, adding an ellipsis when cut.
func truncate(text string, length int) string {
	if utf8.RuneCountInString(text) <= length {
		return text
	}
	return string([]rune(text)[:length]) + "..."
}

func productURL(name string) string {
	return "/product/" + url.PathEscape(name)
}

// render executes a page inside the layout with the session user, flash
// and category list filled in.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if id, err := h.sessions.Current(r); err == nil {
		data["User"] = id.Username
	}
	if _, ok := data["Flash"]; !ok {
		if f, ok := h.sessions.PopFlash(w, r); ok {
			data["Flash"] = f
		}
	}
	data["Categories"] = catalog.Categories

	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("[handler] render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// redirect queues a flash message and redirects with 303.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	if message != "" {
		h.sessions.SetFlash(w, kind, message)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
