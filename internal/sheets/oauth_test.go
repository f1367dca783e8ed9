package sheets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "sheets.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, saveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestGetOrCreateToken_UsesSavedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheets.json")
	require.NoError(t, saveToken(path, &oauth2.Token{RefreshToken: "saved"}))

	token, err := GetOrCreateToken(t.Context(), OAuth2Config{TokenFile: path})
	require.NoError(t, err)
	assert.Equal(t, "saved", token.RefreshToken)
}

func TestLoadToken_Errors(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadToken(path)
	assert.Error(t, err)
}

func TestNewOAuthConfig(t *testing.T) {
	cfg := newOAuthConfig("id", "secret", "http://localhost:9999/callback")
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "http://localhost:9999/callback", cfg.RedirectURL)
	assert.Contains(t, cfg.Scopes[0], "spreadsheets")
}

func TestSaveToken_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheets.json")
	require.NoError(t, saveToken(path, &oauth2.Token{RefreshToken: "first"}))
	require.NoError(t, saveToken(path, &oauth2.Token{RefreshToken: "second"}))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.RefreshToken)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   string
		wantErr    string
		wantStatus int
	}{
		{name: "success", query: "?state=abc&code=xyz", wantCode: "xyz", wantStatus: http.StatusOK},
		{name: "state mismatch", query: "?state=evil&code=xyz", wantErr: "state mismatch", wantStatus: http.StatusBadRequest},
		{name: "denied", query: "?state=abc&error=access_denied", wantErr: "access_denied", wantStatus: http.StatusBadRequest},
		{name: "missing code", query: "?state=abc", wantErr: "no authorization code", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			rec := httptest.NewRecorder()
			callbackHandler("abc", results).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, callbackPath+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			res := <-results
			if tt.wantErr != "" {
				require.Error(t, res.err)
				assert.Contains(t, res.err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, res.err)
			assert.Equal(t, tt.wantCode, res.code)
		})
	}
}

func TestCallbackHandler_OnlyFirstResultKept(t *testing.T) {
	results := make(chan callbackResult, 1)
	h := callbackHandler("abc", results)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, callbackPath+"?state=abc&code=one", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, callbackPath+"?state=abc&code=two", nil))

	res := <-results
	assert.Equal(t, "one", res.code)
	assert.Empty(t, results)
}

func TestNewState(t *testing.T) {
	a, err := newState()
	require.NoError(t, err)
	b, err := newState()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
