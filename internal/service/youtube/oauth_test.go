package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func writeCredentials(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	body := fmt.Sprintf(`{"installed":{
		"client_id":"client-id.apps.googleusercontent.com",
		"client_secret":"secret",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":%q,
		"redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadOAuthCredentialsWithoutToken(t *testing.T) {
	dir := t.TempDir()
	credPath := writeCredentials(t, dir, "https://oauth2.googleapis.com/token")

	creds, err := LoadOAuthCredentials(credPath, filepath.Join(dir, "token.json"), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, creds.IsAuthorized())

	_, err = creds.ClientOption(context.Background())
	require.Error(t, err)
}

func TestLoadOAuthCredentialsMissingFile(t *testing.T) {
	_, err := LoadOAuthCredentials(filepath.Join(t.TempDir(), "nope.json"), "token.json", nil)
	require.Error(t, err)
}

func TestAuthorizeExchangesAndStoresToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "code-123", r.PostForm.Get("code"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	dir := t.TempDir()
	credPath := writeCredentials(t, dir, tokenServer.URL)
	tokenPath := filepath.Join(dir, "token.json")

	creds, err := LoadOAuthCredentials(credPath, tokenPath, zap.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, creds.Authorize(context.Background(), strings.NewReader("code-123\n"), &out))

	assert.True(t, creds.IsAuthorized())
	assert.Contains(t, out.String(), "accounts.google.com")

	saved, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"refresh_token":"refresh"`)

	reloaded, err := LoadOAuthCredentials(credPath, tokenPath, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, reloaded.IsAuthorized())

	opt, err := reloaded.ClientOption(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, opt)
}

func TestAuthorizeRejectsEmptyCode(t *testing.T) {
	dir := t.TempDir()
	creds, err := LoadOAuthCredentials(writeCredentials(t, dir, "http://127.0.0.1:0"), filepath.Join(dir, "token.json"), nil)
	require.NoError(t, err)

	err = creds.Authorize(context.Background(), strings.NewReader("\n"), &bytes.Buffer{})
	require.Error(t, err)
	assert.False(t, creds.IsAuthorized())
}

func TestTokenSourceSavesRefreshedToken(t *testing.T) {
	var refreshes atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh", r.PostForm.Get("refresh_token"))
		refreshes.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	dir := t.TempDir()
	credPath := writeCredentials(t, dir, tokenServer.URL)
	tokenPath := filepath.Join(dir, "token.json")
	require.NoError(t, saveToken(tokenPath, &oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	creds, err := LoadOAuthCredentials(credPath, tokenPath, zap.NewNop())
	require.NoError(t, err)
	src, err := creds.TokenSource(context.Background())
	require.NoError(t, err)

	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)

	_, err = src.Token()
	require.NoError(t, err)
	assert.Equal(t, int32(1), refreshes.Load())

	saved, err := loadToken(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
	assert.Equal(t, "refresh", saved.RefreshToken)
	assert.True(t, saved.Expiry.After(time.Now()))
}

func TestTokenSourceKeepsValidTokenOnDisk(t *testing.T) {
	dir := t.TempDir()
	credPath := writeCredentials(t, dir, "http://127.0.0.1:0")
	tokenPath := filepath.Join(dir, "token.json")
	require.NoError(t, saveToken(tokenPath, &oauth2.Token{
		AccessToken:  "current",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}))
	before, err := os.ReadFile(tokenPath)
	require.NoError(t, err)

	creds, err := LoadOAuthCredentials(credPath, tokenPath, zap.NewNop())
	require.NoError(t, err)
	src, err := creds.TokenSource(context.Background())
	require.NoError(t, err)

	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "current", token.AccessToken)

	after, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
