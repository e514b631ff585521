package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/storage/database/sqlxrepos"
	"github.com/studyhall/studyhall/testutil"
)

func Test_service_LoginWithGoogle(t *testing.T) {
	testutil.MockClock(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewUserRepository(db)
	svc := user.NewService(db, repo)

	t.Run("first login creates the user", func(t *testing.T) {
		usr, err := svc.LoginWithGoogle(ctx, user.GoogleIdentity{ID: "g-1", Email: "Alice@Test.cd", Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "alice@test.cd", usr.Email)
		assert.Equal(t, "Alice", usr.Name)
		assert.Equal(t, "g-1", usr.GoogleID.String)
		assert.True(t, usr.LastLogin.Valid)

		again, err := svc.LoginWithGoogle(ctx, user.GoogleIdentity{ID: "g-1", Email: "alice@test.cd"})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, again.ID)
		assert.True(t, again.LastLogin.Time.After(usr.LastLogin.Time))
	})

	t.Run("existing account is linked by email", func(t *testing.T) {
		bob := testutil.CreateUser(t, repo, "", "bob@test.cd")
		usr, err := svc.LoginWithGoogle(ctx, user.GoogleIdentity{ID: "g-2", Email: "bob@test.cd", GivenName: "Bob", FamilyName: "Marley"})
		require.NoError(t, err)
		assert.Equal(t, bob.ID, usr.ID)
		assert.Equal(t, "Bob Marley", usr.Name)
		assert.Equal(t, "g-2", usr.GoogleID.String)
	})

	t.Run("email is required", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, user.GoogleIdentity{ID: "g-3"})
		assert.Equal(t, user.ErrEmailRequired, err)
	})
}

func Test_service_Create(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	svc := user.NewService(db, sqlxrepos.NewUserRepository(db))
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	nu := user.NewUser{Name: "Alice", Email: " ALICE@test.cd"}
	require.NoError(t, nu.Validate(validate))
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)

	got, err := svc.GetByEmail(ctx, "alice@TEST.cd ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.Create(ctx, nu)
	if assert.IsType(t, &core.ValidationError{}, err) {
		assert.Equal(t, user.ErrEmailExists, err.(*core.ValidationError).Err)
	}

	_, err = svc.GetByID(ctx, "not-a-uuid")
	assert.Equal(t, user.ErrNotFound, err)
}
