package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
)

var (
	// errors
	ErrNotFound      = errors.New("user not found")
	ErrEmailExists   = errors.New("a user with this email already exists")
	ErrEmailRequired = errors.New("google account has no email")
)

type (
	// GetFilter selects a single User; the first non-empty field is used.
	GetFilter struct {
		ID       string
		Email    string
		GoogleID string
	}

	Repository interface {
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	// IdentityProvider runs the OAuth authorization code flow against an external account provider.
	IdentityProvider interface {
		AuthCodeURL(state string) string
		Identity(ctx context.Context, code string) (GoogleIdentity, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		LoginWithGoogle(ctx context.Context, ident GoogleIdentity) (User, error)
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if _, err := svc.repo.GetUser(ctx, GetFilter{Email: nu.Email}); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	usr := User{
		Email:     nu.Email,
		Name:      nu.Name,
		GoogleID:  null.NewString(nu.GoogleID, nu.GoogleID != ""),
		CreatedAt: core.NowFunc(),
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	return usr, errors.Wrap(err, "creating user")
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{Email: email})
}

// LoginWithGoogle finds the User matching the Google account (by Google ID, then by email),
// creating it on first login, and records the login time.
func (svc *service) LoginWithGoogle(ctx context.Context, ident GoogleIdentity) (User, error) {
	email := core.CleanString(ident.Email, true /* lower */)
	if email == "" {
		return User{}, ErrEmailRequired
	}
	now := core.NowFunc()

	var usr User
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		usr, err = svc.repo.GetUser(ctx, GetFilter{GoogleID: ident.ID}, tx)
		if errors.Cause(err) == ErrNotFound {
			usr, err = svc.repo.GetUser(ctx, GetFilter{Email: email}, tx)
		}

		switch errors.Cause(err) {
		case nil:
			if !usr.GoogleID.Valid {
				usr.GoogleID = null.StringFrom(ident.ID)
			}
			if usr.Name == "" {
				usr.Name = ident.DisplayName()
			}
			usr.LastLogin = null.TimeFrom(now)
			usr, err = svc.repo.UpdateUser(ctx, usr, tx)
			return errors.Wrap(err, "updating user")
		case ErrNotFound:
			usr, err = svc.repo.CreateUser(ctx, User{
				Email:     email,
				Name:      ident.DisplayName(),
				GoogleID:  null.NewString(ident.ID, ident.ID != ""),
				CreatedAt: now,
				LastLogin: null.TimeFrom(now),
			}, tx)
			return errors.Wrap(err, "creating user")
		default:
			return errors.Wrap(err, "finding user")
		}
	})
	return usr, err
}
