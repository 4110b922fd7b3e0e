// Package handler contains the HTTP handlers of the marketplace.
//
// Handlers are the glue between HTTP and the service layer:
// 1. Parse the request (JSON body or query string)
// 2. Call a service
// 3. Write the JSON envelope (see response.go) or render the page
//
// Business rules live in internal/service, never here.
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/giftmarket/internal/auth"
	"github.com/sakif/giftmarket/internal/catalog"
	"github.com/sakif/giftmarket/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const placeholderAvatar = "https://via.placeholder.com/36"

// WebAppHandler serves the mini-app page Telegram loads in its webview.
// Templates are parsed once at startup and reused for every request.
type WebAppHandler struct {
	templates   *template.Template
	users       *service.UserService
	currency    string
	manifestURL string
	logger      *slog.Logger
}

// NewWebAppHandler parses the page templates. base.html holds the page
// skeleton with a {{template "content" .}} placeholder that webapp.html fills.
func NewWebAppHandler(users *service.UserService, currency, manifestURL string, logger *slog.Logger) (*WebAppHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/webapp.html")
	if err != nil {
		return nil, err
	}

	return &WebAppHandler{
		templates:   tmpl,
		users:       users,
		currency:    currency,
		manifestURL: manifestURL,
		logger:      logger,
	}, nil
}

// HandleWebApp renders the page. When Telegram opened it with init data
// (auth.WebAppIdentity put the user in the context) the user is registered
// first. Registration failures are logged and the page renders anyway.
//
// HTTP: GET /webapp?tgWebAppData=...
func (h *WebAppHandler) HandleWebApp(w http.ResponseWriter, r *http.Request) {
	photoURL := placeholderAvatar

	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		if id.PhotoURL != "" {
			photoURL = id.PhotoURL
		}
		if _, err := h.users.Register(r.Context(), id.UserID, id.FirstName, id.LastName, id.Username); err != nil {
			h.logger.Warn("failed to register webapp user",
				slog.String("user_id", id.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	data := map[string]any{
		"Title":       "Gift Market",
		"Collections": catalog.All(),
		"Currency":    h.currency,
		"ManifestURL": h.manifestURL,
		"PhotoURL":    photoURL,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleWebAppData acknowledges a payload the page sent with
// Telegram.WebApp.sendData. Nothing is stored.
//
// HTTP: POST /webapp-data
func (h *WebAppHandler) HandleWebAppData(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if len(payload) == 0 {
		writeJSON(w, http.StatusBadRequest, Envelope{Error: "no data provided"})
		return
	}

	h.logger.Info("webapp data received", slog.Int("fields", len(payload)))
	writeOK(w, nil)
}
