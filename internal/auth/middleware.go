package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// InitDataHeader is where the page sends its init data on API calls.
const InitDataHeader = "X-Telegram-Init-Data"

// InitDataQueryParam is where Telegram puts the init data when it opens the page.
const InitDataQueryParam = "tgWebAppData"

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the identity.
type contextKey string

const identityKey contextKey = "identity"

// WebAppIdentity is a middleware that extracts the Telegram user from the
// request's init data, if there is any, and stores it in the request context.
//
// It never rejects a request. Handlers that need the user check with
// IdentityFromContext; the marketplace endpoints themselves take the user id
// from the body.
func WebAppIdentity(botToken string, maxAge time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(InitDataHeader)
			if raw == "" {
				raw = r.URL.Query().Get(InitDataQueryParam)
			}

			if raw != "" {
				id, err := ParseInitData(raw, botToken, maxAge)
				if err != nil {
					logger.Warn("ignoring init data",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				} else {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Telegram user stored by WebAppIdentity.
//
// Returns (nil, false) if the request carried no usable init data.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
