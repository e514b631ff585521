package group_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/access"
	"github.com/studyhall/studyhall/core/group"
	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/services/email"
	"github.com/studyhall/studyhall/storage/database/sqlxrepos"
	"github.com/studyhall/studyhall/testutil"
)

type fixture struct {
	svc   group.Service
	alice user.User
	bob   user.User
	carol user.User
	seed  *testSubjects
}

type testSubjects struct {
	t  *testing.T
	db core.DB
}

func setup(t *testing.T) fixture {
	testutil.MockClock(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	emailsvc.ResetSentMessages()

	conf := testutil.NewConfig()
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	grpRepo := sqlxrepos.NewGroupRepository(db)
	guard := access.NewGuard(sqlxrepos.NewAccessRepository(db))

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	return fixture{
		svc:   group.NewService(db, grpRepo, usrRepo, guard, emailsvc.NewConsoleServiceMock(conf), validate, conf),
		alice: testutil.CreateUser(t, usrRepo, "Alice", "alice@test.cd"),
		bob:   testutil.CreateUser(t, usrRepo, "Bob", "bob@test.cd"),
		carol: testutil.CreateUser(t, usrRepo, "Carol", "carol@test.cd"),
		seed:  &testSubjects{t: t, db: db},
	}
}

func (ts *testSubjects) note(owner user.User, title string) string {
	subj := testutil.CreateSubject(ts.t, sqlxrepos.NewSubjectRepository(ts.db), owner, "Subject of "+title)
	return testutil.CreateNote(ts.t, sqlxrepos.NewNoteRepository(ts.db), subj, title, "").ID
}

func Test_service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, group.NewGroup{Name: "   "})
	assert.IsType(t, validator.ValidationErrors{}, err)

	grp, err := f.svc.Create(ctx, f.alice.ID, group.NewGroup{Name: " Econ 101 ", Description: "weekly prep"})
	require.NoError(t, err)
	assert.Equal(t, "Econ 101", grp.Name)
	assert.Equal(t, f.alice.ID, grp.CreatedBy)

	members, err := f.svc.ListMembers(ctx, f.alice.ID, grp.ID)
	require.NoError(t, err)
	if assert.Len(t, members, 1) {
		assert.Equal(t, f.alice.ID, members[0].ID)
	}

	groups, err := f.svc.ListForUser(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	groups, err = f.svc.ListForUser(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []group.Group{}, groups)
}

func Test_service_Invite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp, err := f.svc.Create(ctx, f.alice.ID, group.NewGroup{Name: "Econ 101"})
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Invite(ctx, f.alice.ID, grp.ID, group.InviteRequest{Email: "nobody@test.cd"})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := f.svc.Invite(ctx, f.alice.ID, grp.ID, group.InviteRequest{Email: "nobody"})
		assert.IsType(t, validator.ValidationErrors{}, err)
	})

	t.Run("non-member cannot invite", func(t *testing.T) {
		_, err := f.svc.Invite(ctx, f.carol.ID, grp.ID, group.InviteRequest{Email: "bob@test.cd"})
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("member is added and notified", func(t *testing.T) {
		m, err := f.svc.Invite(ctx, f.alice.ID, grp.ID, group.InviteRequest{Email: " BOB@test.cd "})
		require.NoError(t, err)
		assert.Equal(t, f.bob.ID, m.UserID)
		assert.Equal(t, grp.ID, m.GroupID)

		sent := emailsvc.GetSentMessages()
		if assert.Len(t, sent, 1) {
			assert.Equal(t, "bob@test.cd", sent[0].To[0].Address)
			assert.True(t, strings.Contains(sent[0].TextContent, "Alice added you"))
			assert.True(t, strings.Contains(sent[0].HTMLContent, "Econ 101"))
		}
	})

	t.Run("existing member is a no-op", func(t *testing.T) {
		_, err := f.svc.Invite(ctx, f.bob.ID, grp.ID, group.InviteRequest{Email: "bob@test.cd"})
		require.NoError(t, err)

		members, err := f.svc.ListMembers(ctx, f.bob.ID, grp.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2)
		assert.Len(t, emailsvc.GetSentMessages(), 1)
	})
}

func Test_service_ShareNote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp, err := f.svc.Create(ctx, f.alice.ID, group.NewGroup{Name: "Econ 101"})
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, f.alice.ID, grp.ID, group.InviteRequest{Email: "bob@test.cd"})
	require.NoError(t, err)

	aliceNote := f.seed.note(f.alice, "Lecture 1")
	carolNote := f.seed.note(f.carol, "Carol's notes")

	t.Run("share twice creates one share", func(t *testing.T) {
		s1, err := f.svc.ShareNote(ctx, f.alice.ID, aliceNote, group.ShareRequest{GroupID: grp.ID})
		require.NoError(t, err)
		s2, err := f.svc.ShareNote(ctx, f.alice.ID, aliceNote, group.ShareRequest{GroupID: grp.ID})
		require.NoError(t, err)
		assert.Equal(t, s1.NoteID, s2.NoteID)
		assert.True(t, s1.SharedAt.Equal(s2.SharedAt))

		notes, err := f.svc.ListNotes(ctx, f.bob.ID, grp.ID)
		require.NoError(t, err)
		if assert.Len(t, notes, 1) {
			assert.Equal(t, aliceNote, notes[0].ID)
			assert.Equal(t, f.alice.ID, notes[0].SharedBy)
			assert.False(t, notes[0].HasAttachment)
		}
	})

	t.Run("only the note owner may share", func(t *testing.T) {
		_, err := f.svc.ShareNote(ctx, f.bob.ID, aliceNote, group.ShareRequest{GroupID: grp.ID})
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("owner must be a member", func(t *testing.T) {
		_, err := f.svc.ShareNote(ctx, f.carol.ID, carolNote, group.ShareRequest{GroupID: grp.ID})
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := f.svc.ShareNote(ctx, f.alice.ID, aliceNote, group.ShareRequest{GroupID: uuid.New().String()})
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("non-member cannot list", func(t *testing.T) {
		_, err := f.svc.ListNotes(ctx, f.carol.ID, grp.ID)
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("any member may unshare", func(t *testing.T) {
		assert.Equal(t, core.ErrNotFound, f.svc.UnshareNote(ctx, f.carol.ID, aliceNote, grp.ID))
		require.NoError(t, f.svc.UnshareNote(ctx, f.bob.ID, aliceNote, grp.ID))
		assert.Equal(t, core.ErrNotFound, f.svc.UnshareNote(ctx, f.bob.ID, aliceNote, grp.ID))

		notes, err := f.svc.ListNotes(ctx, f.alice.ID, grp.ID)
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}
