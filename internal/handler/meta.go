package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/giftmarket/internal/catalog"
)

// HandleCollections returns the gift catalogue: every collection and its models.
//
// HTTP: GET /api/collections
func HandleCollections(w http.ResponseWriter, r *http.Request) {
	writeOK(w, catalog.All())
}

// Manifest is the TON Connect app manifest. Wallets fetch it to show the
// user which app is asking to connect.
type Manifest struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
}

// ManifestHandler serves m as /tonconnect-manifest.json. An empty URL is
// filled in from the request, so a local server works without configuration.
func ManifestHandler(m Manifest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := m
		if out.URL == "" {
			scheme := "https"
			if r.TLS == nil && !strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				scheme = "http"
			}
			out.URL = scheme + "://" + r.Host
		}

		w.Header().Set("Access-Control-Allow-Origin", "*")
		writeJSON(w, http.StatusOK, out)
	}
}

// Pinger is satisfied by the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness, and 503 when the database is unreachable.
//
// HTTP: GET /health
func HealthHandler(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
