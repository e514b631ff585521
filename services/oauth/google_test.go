package oauthsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/studyhall/studyhall/testutil"
)

func newFakeGoogle(t *testing.T, userinfo string) *GoogleProvider {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewGoogleProvider(testutil.NewConfig())
	p.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.UserInfoURL = srv.URL + "/userinfo"
	return p
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider(testutil.NewConfig())

	u, err := url.Parse(p.AuthCodeURL("some-state"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "select_account", q.Get("prompt"))
}

func TestGoogleProvider_Identity(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		p := newFakeGoogle(t, `{"id":"g-42","email":"alice@test.cd","verified_email":true,"name":"Alice"}`)
		ident, err := p.Identity(ctx, "good-code")
		require.NoError(t, err)
		assert.Equal(t, "g-42", ident.ID)
		assert.Equal(t, "alice@test.cd", ident.Email)
		assert.True(t, ident.EmailVerified)
		assert.Equal(t, "Alice", ident.DisplayName())
	})

	t.Run("bad code", func(t *testing.T) {
		p := newFakeGoogle(t, `{"id":"g-42"}`)
		_, err := p.Identity(ctx, "bad-code")
		assert.Error(t, err)
	})

	t.Run("missing account id", func(t *testing.T) {
		p := newFakeGoogle(t, `{"email":"alice@test.cd"}`)
		_, err := p.Identity(ctx, "good-code")
		assert.Error(t, err)
	})
}
