package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/user"
)

const userColumns = "id, email, name, google_id, created_at, last_login"

type userRepository struct {
	baseRepository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{baseRepository{exec: exec}}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	db := repo.getExec(exec)

	usr.ID = uuid.New().String()
	usr.CreatedAt = usr.CreatedAt.UTC()
	usr.LastLogin = null.NewTime(usr.LastLogin.Time.UTC(), usr.LastLogin.Valid)

	q := db.Rebind("INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := db.ExecContext(ctx, q, usr.ID, usr.Email, usr.Name, usr.GoogleID, usr.CreatedAt, usr.LastLogin); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	db := repo.getExec(exec)

	var col, val string
	switch {
	case filter.ID != "":
		col, val = "id", filter.ID
	case filter.Email != "":
		col, val = "email", filter.Email
	case filter.GoogleID != "":
		col, val = "google_id", filter.GoogleID
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	q := db.Rebind("SELECT " + userColumns + " FROM users WHERE " + col + " = ?")
	if err := sqlx.GetContext(ctx, db, &usr, q, val); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user by "+col)
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	db := repo.getExec(exec)

	usr.LastLogin = null.NewTime(usr.LastLogin.Time.UTC(), usr.LastLogin.Valid)
	q := db.Rebind("UPDATE users SET email = ?, name = ?, google_id = ?, last_login = ? WHERE id = ?")
	res, err := db.ExecContext(ctx, q, usr.Email, usr.Name, usr.GoogleID, usr.LastLogin, usr.ID)
	if err = checkAffected(res, err, "updating user"); err != nil {
		if err == core.ErrNotFound {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}
