package tests

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/studyhall/studyhall/apps/api/echo"
	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/testutil"
)

// startLogin hits the login endpoint and returns the state sent to Google along with the state cookie.
func startLogin(t *testing.T, app Server) (string, *http.Cookie) {
	t.Helper()
	req, rec := newRequest(http.MethodGet, "/api/auth/google")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.test", loc.Host)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return loc.Query().Get("state"), cookies[0]
}

func callback(app Server, query url.Values, cookie *http.Cookie) *http.Response {
	req, rec := newRequest(http.MethodGet, "/api/auth/google/callback?"+query.Encode())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	app.ServeHTTP(rec, req)
	return rec.Result()
}

func Test_authApi_googleLogin(t *testing.T) {
	app := setup(t)

	state, cookie := startLogin(t, app)
	assert.Equal(t, "oauth_state", cookie.Name)
	assert.True(t, cookie.HttpOnly)

	assert.NotEmpty(t, state)
	assert.NotEqual(t, state, cookie.Value)

	var stored string
	sc := securecookie.New([]byte(conf.SecretKey), nil)
	require.NoError(t, sc.Decode("oauth_state", cookie.Value, &stored))
	assert.Equal(t, state, stored)

	other, _ := startLogin(t, app)
	assert.NotEqual(t, state, other)
}

func Test_authApi_googleCallback(t *testing.T) {
	app := setup(t)

	identity.identities["new-user"] = user.GoogleIdentity{ID: "g-1", Email: "Alice@Test.cd", Name: "Alice"}
	existing := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.cd")
	identity.identities["existing-user"] = user.GoogleIdentity{ID: "g-2", Email: "bob@test.cd", Name: "Robert"}

	failURL := conf.FrontendBaseURL + "/login?error=true"
	successPrefix := conf.FrontendBaseURL + "/auth-success?token="

	tokenUser := func(t *testing.T, loc string) user.User {
		t.Helper()
		require.True(t, strings.HasPrefix(loc, successPrefix), loc)
		u, err := url.Parse(loc)
		require.NoError(t, err)

		var claims Claims
		_, err = jwt.ParseWithClaims(u.Query().Get("token"), &claims, func(*jwt.Token) (interface{}, error) {
			return []byte(conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(conf.JWTExpirationDelta), time.Unix(claims.ExpiresAt, 0), time.Minute)

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: claims.Subject})
		require.NoError(t, err)
		assert.Equal(t, usr.Email, claims.Email)
		return usr
	}

	t.Run("First login creates the user", func(t *testing.T) {
		state, cookie := startLogin(t, app)
		res := callback(app, url.Values{"state": {state}, "code": {"new-user"}}, cookie)
		assert.Equal(t, http.StatusFound, res.StatusCode)

		usr := tokenUser(t, res.Header.Get("Location"))
		assert.Equal(t, "alice@test.cd", usr.Email)
		assert.Equal(t, "Alice", usr.Name)
		assert.Equal(t, "g-1", usr.GoogleID.String)
		assert.True(t, usr.LastLogin.Valid)
	})

	t.Run("Existing account is linked", func(t *testing.T) {
		state, cookie := startLogin(t, app)
		res := callback(app, url.Values{"state": {state}, "code": {"existing-user"}}, cookie)

		usr := tokenUser(t, res.Header.Get("Location"))
		assert.Equal(t, existing.ID, usr.ID)
		assert.Equal(t, "Bob", usr.Name)
		assert.Equal(t, "g-2", usr.GoogleID.String)
	})

	t.Run("Failures redirect to login", func(t *testing.T) {
		state, cookie := startLogin(t, app)
		tampered := &http.Cookie{Name: cookie.Name, Value: state}
		foreign, err := securecookie.New([]byte("another-secret"), nil).Encode("oauth_state", state)
		require.NoError(t, err)

		tests := []struct {
			name   string
			query  url.Values
			cookie *http.Cookie
		}{
			{name: "consent refused", query: url.Values{"error": {"access_denied"}, "state": {state}}, cookie: cookie},
			{name: "missing cookie", query: url.Values{"state": {state}, "code": {"new-user"}}},
			{name: "missing state", query: url.Values{"code": {"new-user"}}, cookie: cookie},
			{name: "forged state", query: url.Values{"state": {"forged"}, "code": {"new-user"}}, cookie: cookie},
			{name: "unsigned cookie", query: url.Values{"state": {state}, "code": {"new-user"}}, cookie: tampered},
			{name: "foreign cookie", query: url.Values{"state": {state}, "code": {"new-user"}}, cookie: &http.Cookie{Name: cookie.Name, Value: foreign}},
			{name: "missing code", query: url.Values{"state": {state}}, cookie: cookie},
			{name: "bad code", query: url.Values{"state": {state}, "code": {"bad"}}, cookie: cookie},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := callback(app, tt.query, tt.cookie)
				assert.Equal(t, http.StatusFound, res.StatusCode)
				assert.Equal(t, failURL, res.Header.Get("Location"))
			})
		}
	})
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.cd")
	ghost := user.User{ID: "6b1d3f4e-7a5c-4b9e-9a0f-3c2d1e0f9a8b", Email: "ghost@test.cd"}
	expired, err := GenerateToken(conf, &Claims{StandardClaims: jwt.StandardClaims{
		Subject:   alice.ID,
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}})
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Expired token", token: expired, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"})},
		{name: "Unknown user", token: getToken(t, ghost), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "user not authenticated"})},
		{name: "Current user", token: getToken(t, alice), wantCode: http.StatusOK, wantData: marchallObj(t, alice)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
