package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/giftmarket/internal/handler"
	sqliteRepo "github.com/sakif/giftmarket/internal/repository/sqlite"
	"github.com/sakif/giftmarket/internal/service"
)

// testEnv is the full handler stack on an in-memory database.
type testEnv struct {
	db       *sqliteRepo.DB
	users    *handler.UserHandler
	listings *handler.ListingHandler
	webapp   *handler.WebAppHandler
	userSvc  *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userSvc := service.NewUserService(db, logger)
	listingSvc := service.NewListingService(db, "TON", logger)

	webapp, err := handler.NewWebAppHandler(userSvc, "TON", "/tonconnect-manifest.json", logger)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		users:    handler.NewUserHandler(userSvc, logger),
		listings: handler.NewListingHandler(listingSvc, logger),
		webapp:   webapp,
		userSvc:  userSvc,
	}
}

// response is the decoded JSON envelope.
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// call runs h with a JSON body (or no body when body is nil) and decodes the envelope.
func call(t *testing.T, h http.HandlerFunc, method, target string, body any) (int, response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h(rr, req)

	var res response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res), "body must be a JSON envelope")
	return rr.Code, res
}

// decodeData unmarshals the envelope's data into dst.
func decodeData(t *testing.T, res response, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(res.Data, dst))
}
