package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/query"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	LoginPath       = "/login"
	ProfilePath     = "/profile"
	ProfileEditPath = "/profile-edit"
)

type ProfileHandlers struct {
	users    UserQuerier
	save     SaveExecutor
	drop     DropExecutor
	renderer Renderer
	sessions SessionResolver
	csrf     CSRFVerifier
	logger   core.Logger
}

type ProfileOption func(*ProfileHandlers)

func WithLogger(logger core.Logger) ProfileOption {
	return func(h *ProfileHandlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithCSRFVerifier(verifier CSRFVerifier) ProfileOption {
	return func(h *ProfileHandlers) {
		if verifier != nil {
			h.csrf = verifier
		}
	}
}

func NewProfileHandlers(
	users UserQuerier,
	save SaveExecutor,
	drop DropExecutor,
	renderer Renderer,
	sessions SessionResolver,
	opts ...ProfileOption,
) (*ProfileHandlers, error) {
	if users == nil || save == nil || drop == nil {
		return nil, fmt.Errorf("web: user query and save/drop commands are required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("web: renderer is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("web: session resolver is required")
	}
	h := &ProfileHandlers{
		users:    users,
		save:     save,
		drop:     drop,
		renderer: renderer,
		sessions: sessions,
		csrf:     CrumbVerifier{},
		logger:   glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Register mounts the profile routes on mux.
func (h *ProfileHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+ProfileEditPath, h.ShowEdit)
	mux.HandleFunc("POST "+ProfileEditPath, h.SubmitEdit)
	mux.HandleFunc("GET "+ProfilePath, h.ShowOwn)
	mux.HandleFunc("GET /{handle}", h.ShowPublic)
}

func (h *ProfileHandlers) ShowEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Resolve(r)
	if !ok {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	user, err := h.users.Query(r.Context(), query.GetUserMessage{Name: session.Name, Bearer: session.Bearer})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, TemplateProfileEdit, map[string]any{"profile": user})
}

func (h *ProfileHandlers) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Resolve(r)
	if !ok {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, TemplateProfileEdit, map[string]any{
			"error": &ValidationError{Message: "malformed form body", Details: []ErrorDetail{{Message: err.Error()}}},
		})
		return
	}
	if !h.csrf.Verify(r) {
		h.logger.WithContext(r.Context()).Warn("profile edit rejected, csrf check failed", "name", session.Name)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	payload := formPayload(r.PostForm, CrumbField)
	if invalid := validateProfilePayload(payload); invalid != nil {
		h.render(w, r, http.StatusBadRequest, TemplateProfileEdit, map[string]any{
			"error":   invalid,
			"profile": payload,
		})
		return
	}

	update := core.User{
		Name:      session.Name,
		Email:     session.Email,
		Resources: map[string]string{},
	}
	for _, field := range ProfileFields {
		if value, ok := payload[field].(string); ok {
			update.Resources[field] = value
		}
	}
	if err := h.save.Execute(r.Context(), command.SaveMessage{User: update, Bearer: session.Bearer}); err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.drop.Execute(r.Context(), command.DropMessage{Name: session.Name}); err != nil {
		h.logger.WithContext(r.Context()).Error("could not drop cached profile", "name", session.Name, "error", err)
	}
	http.Redirect(w, r, ProfilePath, http.StatusFound)
}

func (h *ProfileHandlers) ShowOwn(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Resolve(r)
	if !ok {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	h.showProfile(w, r, session.Name, session.Bearer)
}

// ShowPublic serves /~name.
func (h *ProfileHandlers) ShowPublic(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	name, ok := strings.CutPrefix(handle, "~")
	if !ok || strings.TrimSpace(name) == "" {
		h.render(w, r, http.StatusNotFound, TemplateNotFound, map[string]any{"path": r.URL.Path})
		return
	}
	bearer := ""
	if session, ok := h.sessions.Resolve(r); ok {
		bearer = session.Bearer
	}
	h.showProfile(w, r, name, bearer)
}

func (h *ProfileHandlers) showProfile(w http.ResponseWriter, r *http.Request, name, bearer string) {
	user, err := h.users.Query(r.Context(), query.GetUserMessage{
		Name:    name,
		Options: core.GetOptions{Stars: true, Packages: true},
		Bearer:  bearer,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, TemplateProfile, map[string]any{
		"title":   user.Name,
		"profile": user,
	})
}

func (h *ProfileHandlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsNotFound(err) {
		h.render(w, r, http.StatusNotFound, TemplateNotFound, map[string]any{"path": r.URL.Path})
		return
	}
	status := core.StatusCode(err)
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	h.logger.WithContext(r.Context()).Error("profile request failed",
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	h.render(w, r, status, TemplateInternal, map[string]any{"status": status})
}

func (h *ProfileHandlers) render(w http.ResponseWriter, r *http.Request, status int, template string, context map[string]any) {
	if err := h.renderer.Render(w, r, status, template, context); err != nil {
		h.logger.WithContext(r.Context()).Error("render failed", "template", template, "error", err)
	}
}
