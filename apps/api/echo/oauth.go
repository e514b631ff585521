package echoapi

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/user"
)

const (
	stateCookieName = "oauth_state"
	stateTTL        = 10 * time.Minute
)

type authApi struct {
	conf     *core.Config
	identity user.IdentityProvider
	usrSvc   user.Service
	cookies  *securecookie.SecureCookie
}

func registerAuthAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	identity user.IdentityProvider,
	usrSvc user.Service,
) {
	api := authApi{
		conf:     conf,
		identity: identity,
		usrSvc:   usrSvc,
		cookies:  securecookie.New([]byte(conf.SecretKey), nil).MaxAge(int(stateTTL.Seconds())),
	}

	// un-authed endpoints
	g.GET("/auth/google", api.googleLogin)
	g.GET("/auth/google/callback", api.googleCallback)

	// authed endpoints
	g.GET("/me", api.me, jwt, callerMiddleware)
}

// Handlers

func (api *authApi) googleLogin(ctx echo.Context) error {
	state := base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
	value, err := api.cookies.Encode(stateCookieName, state)
	if err != nil {
		return errors.Wrap(err, "encoding state cookie")
	}

	ctx.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/api/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   !(api.conf.Debug || api.conf.TestMode),
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.Redirect(http.StatusFound, api.identity.AuthCodeURL(state))
}

func (api *authApi) googleCallback(ctx echo.Context) error {
	// the state cookie is single use
	ctx.SetCookie(&http.Cookie{Name: stateCookieName, Path: "/api/auth", MaxAge: -1, HttpOnly: true})

	token, err := api.login(ctx)
	if err != nil {
		ctx.Logger().Warnf("google login failed: %+v", err)
		return ctx.Redirect(http.StatusFound, api.conf.FrontendBaseURL+"/login?error=true")
	}
	return ctx.Redirect(http.StatusFound, api.conf.FrontendBaseURL+"/auth-success?token="+url.QueryEscape(token))
}

func (api *authApi) login(ctx echo.Context) (string, error) {
	if reason := ctx.QueryParam("error"); reason != "" {
		return "", errors.Errorf("consent refused: %s", reason)
	}
	if err := api.verifyState(ctx); err != nil {
		return "", err
	}

	code := ctx.QueryParam("code")
	if code == "" {
		return "", errors.New("missing authorization code")
	}

	reqCtx := ctx.Request().Context()
	ident, err := api.identity.Identity(reqCtx, code)
	if err != nil {
		return "", errors.Wrap(err, "fetching google identity")
	}
	usr, err := api.usrSvc.LoginWithGoogle(reqCtx, ident)
	if err != nil {
		return "", errors.Wrap(err, "logging in with google")
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	return token, errors.Wrap(err, "generating token")
}

// verifyState checks the state returned by Google against the signed cookie set by googleLogin.
func (api *authApi) verifyState(ctx echo.Context) error {
	cookie, err := ctx.Cookie(stateCookieName)
	if err != nil {
		return errors.Wrap(errInvalidState, "missing state cookie")
	}

	var state string
	if err = api.cookies.Decode(stateCookieName, cookie.Value, &state); err != nil {
		return errors.Wrap(errInvalidState, err.Error())
	}
	if state == "" || ctx.QueryParam("state") != state {
		return errInvalidState
	}
	return nil
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}
