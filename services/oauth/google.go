package oauthsvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/user"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

var _ user.IdentityProvider = (*GoogleProvider)(nil)

func NewGoogleProvider(conf *core.Config) *GoogleProvider {
	return &GoogleProvider{
		Config: &oauth2.Config{
			ClientID:     conf.Google.ClientID,
			ClientSecret: conf.Google.ClientSecret,
			RedirectURL:  conf.Google.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Identity exchanges an authorization code and fetches the profile of the account that granted it.
func (p *GoogleProvider) Identity(ctx context.Context, code string) (user.GoogleIdentity, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return user.GoogleIdentity{}, errors.Wrap(err, "exchanging code")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return user.GoogleIdentity{}, errors.Wrap(err, "building userinfo request")
	}
	res, err := p.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return user.GoogleIdentity{}, errors.Wrap(err, "fetching userinfo")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return user.GoogleIdentity{}, errors.Errorf("fetching userinfo - status: %d", res.StatusCode)
	}

	var ident user.GoogleIdentity
	if err = json.NewDecoder(res.Body).Decode(&ident); err != nil {
		return user.GoogleIdentity{}, errors.Wrap(err, "decoding userinfo")
	}
	if ident.ID == "" {
		return user.GoogleIdentity{}, errors.New("userinfo without account id")
	}
	return ident, nil
}
