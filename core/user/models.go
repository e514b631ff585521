package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
)

type User struct {
	ID        string      `json:"id" db:"id"`
	Email     string      `json:"email" db:"email"`
	Name      string      `json:"name" db:"name"`
	GoogleID  null.String `json:"googleId" db:"google_id"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"` // UTC
	LastLogin null.Time   `json:"lastLogin" db:"last_login"` // UTC
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=254"`
	GoogleID string `json:"googleId" validate:"max=255"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.GoogleID = core.CleanString(nu.GoogleID)
	return validate.Struct(nu)
}

// GoogleIdentity is the profile returned by Google once a login has been authorised.
type GoogleIdentity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// DisplayName falls back on the local part of the email when Google sends no name.
func (gi GoogleIdentity) DisplayName() string {
	if name := core.CleanString(gi.Name); name != "" {
		return name
	}
	if name := core.CleanString(gi.GivenName + " " + gi.FamilyName); name != "" {
		return name
	}
	email := core.CleanString(gi.Email)
	for i, r := range email {
		if r == '@' {
			return email[:i]
		}
	}
	return email
}
