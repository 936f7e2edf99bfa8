package teamsnap

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthConfig_AuthCodeURL(t *testing.T) {
	cfg := OAuthConfig("client", "secret", "https://localhost/callback")
	u, err := url.Parse(cfg.AuthCodeURL("state"))
	require.NoError(t, err)

	assert.Equal(t, "auth.teamsnap.com", u.Host)
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "read", u.Query().Get("scope"))
	assert.Equal(t, "https://localhost/callback", u.Query().Get("redirect_uri"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "abc" || r.PostForm.Get("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok-123","token_type":"bearer"}`)
	}))
	defer srv.Close()

	cfg := OAuthConfig("client", "secret", "https://localhost/callback")
	cfg.Endpoint.TokenURL = srv.URL

	token, err := ExchangeCode(t.Context(), cfg, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token.AccessToken)

	_, err = ExchangeCode(t.Context(), cfg, "wrong")
	assert.Error(t, err)
}
