package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-bot-token"

const testUserJSON = `{"id":987654321,"first_name":"Ann","last_name":"Lee","username":"annlee","photo_url":"https://t.me/i/userpic/ann.jpg"}`

// signInitData builds init data the way Telegram does: every field except
// hash, sorted, joined by newlines, HMAC'd with a key derived from the token.
func signInitData(t *testing.T, fields map[string]string, token string) string {
	t.Helper()

	pairs := make([]string, 0, len(fields))
	for k, v := range fields {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return q.Encode()
}

func testFields(authDate time.Time) map[string]string {
	return map[string]string{
		"query_id":  "AAHdF6IQAAAAAN0XohDhrOrc",
		"user":      testUserJSON,
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
	}
}

func TestParseInitData_Unsigned(t *testing.T) {
	q := url.Values{}
	q.Set("user", testUserJSON)
	q.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))

	id, err := ParseInitData(q.Encode(), "", 0)
	require.NoError(t, err)

	assert.Equal(t, "987654321", id.UserID)
	assert.Equal(t, "Ann", id.FirstName)
	assert.Equal(t, "Lee", id.LastName)
	assert.Equal(t, "annlee", id.Username)
	assert.Equal(t, "https://t.me/i/userpic/ann.jpg", id.PhotoURL)
}

func TestParseInitData_Signed(t *testing.T) {
	raw := signInitData(t, testFields(time.Now()), testBotToken)

	id, err := ParseInitData(raw, testBotToken, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "987654321", id.UserID)
}

func TestParseInitData_Rejected(t *testing.T) {
	fresh := signInitData(t, testFields(time.Now()), testBotToken)

	tampered, err := url.ParseQuery(fresh)
	require.NoError(t, err)
	tampered.Set("user", strings.Replace(testUserJSON, "987654321", "1", 1))

	tests := []struct {
		name   string
		raw    string
		token  string
		maxAge time.Duration
	}{
		{"empty", "", testBotToken, 0},
		{"signed with another token", signInitData(t, testFields(time.Now()), "999:other"), testBotToken, 0},
		{"tampered user", tampered.Encode(), testBotToken, 0},
		{"expired", signInitData(t, testFields(time.Now().Add(-48*time.Hour)), testBotToken), testBotToken, 24 * time.Hour},
		{"no hash", "user=" + url.QueryEscape(testUserJSON), testBotToken, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInitData(tt.raw, tt.token, tt.maxAge)
			assert.ErrorIs(t, err, ErrInvalidInitData)
		})
	}
}

func TestParseInitData_ExpiryDisabled(t *testing.T) {
	raw := signInitData(t, testFields(time.Now().Add(-72*time.Hour)), testBotToken)

	_, err := ParseInitData(raw, testBotToken, 0)
	assert.NoError(t, err)
}

func TestParseInitData_NoUser(t *testing.T) {
	q := url.Values{}
	q.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	q.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))

	_, err := ParseInitData(q.Encode(), "", 0)
	assert.ErrorIs(t, err, ErrNoUser)
}
