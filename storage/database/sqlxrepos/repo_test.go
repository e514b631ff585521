package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/group"
	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/testutil"
)

type repos struct {
	usr   *userRepository
	subj  *subjectRepository
	note  *noteRepository
	grp   *groupRepository
	guard *accessRepository
}

func setup(t *testing.T) repos {
	testutil.MockClock(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	db := testutil.PrepareDB(t)
	return repos{
		usr:   NewUserRepository(db),
		subj:  NewSubjectRepository(db),
		note:  NewNoteRepository(db),
		grp:   NewGroupRepository(db),
		guard: NewAccessRepository(db),
	}
}

func Test_userRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, r.usr, "Alice", "alice@test.cd")

	got, err := r.usr.GetUser(ctx, user.GetFilter{Email: "alice@test.cd"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.False(t, got.GoogleID.Valid)
	assert.False(t, got.LastLogin.Valid)

	_, err = r.usr.GetUser(ctx, user.GetFilter{GoogleID: "g-1"})
	assert.Equal(t, user.ErrNotFound, err)
	_, err = r.usr.GetUser(ctx, user.GetFilter{})
	assert.Equal(t, user.ErrNotFound, err)

	got.GoogleID = null.StringFrom("g-1")
	got.LastLogin = null.TimeFrom(core.NowFunc())
	_, err = r.usr.UpdateUser(ctx, got)
	require.NoError(t, err)

	got, err = r.usr.GetUser(ctx, user.GetFilter{GoogleID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.True(t, got.LastLogin.Valid)

	_, err = r.usr.UpdateUser(ctx, user.User{ID: uuid.New().String(), Email: "ghost@test.cd"})
	assert.Equal(t, user.ErrNotFound, err)
}

func Test_subjectRepository_ordering(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, r.usr, "Alice", "alice@test.cd")
	bob := testutil.CreateUser(t, r.usr, "Bob", "bob@test.cd")
	s1 := testutil.CreateSubject(t, r.subj, alice, "Macroeconomics")
	testutil.CreateSubject(t, r.subj, bob, "Algebra")
	s2 := testutil.CreateSubject(t, r.subj, alice, "Statistics")

	subjects, err := r.subj.QuerySubjects(ctx, alice.ID)
	require.NoError(t, err)
	if assert.Len(t, subjects, 2) {
		assert.Equal(t, s1.ID, subjects[0].ID)
		assert.Equal(t, s2.ID, subjects[1].ID)
	}

	owner, err := r.guard.GetSubjectOwner(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, owner)
}

func Test_subjectRepository_DeleteSubject(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, r.usr, "Alice", "alice@test.cd")
	bob := testutil.CreateUser(t, r.usr, "Bob", "bob@test.cd")
	macro := testutil.CreateSubject(t, r.subj, alice, "Macroeconomics")
	algebra := testutil.CreateSubject(t, r.subj, alice, "Algebra")
	lecture := testutil.CreateNote(t, r.note, macro, "Lecture 1", "exam,important")
	testutil.CreateNote(t, r.note, macro, "Lecture 2", "")
	vectors := testutil.CreateNote(t, r.note, algebra, "Vectors", "")

	grp, err := r.grp.CreateGroup(ctx, group.Group{Name: "Study", CreatedBy: alice.ID, CreatedAt: core.NowFunc()})
	require.NoError(t, err)
	_, err = r.grp.CreateShare(ctx, group.Share{NoteID: lecture.ID, GroupID: grp.ID, SharedBy: alice.ID, SharedAt: core.NowFunc()})
	require.NoError(t, err)
	_, err = r.grp.CreateShare(ctx, group.Share{NoteID: vectors.ID, GroupID: grp.ID, SharedBy: alice.ID, SharedAt: core.NowFunc()})
	require.NoError(t, err)

	// not the owner: nothing is touched
	assert.Equal(t, core.ErrNotFound, r.subj.DeleteSubject(ctx, macro.ID, bob.ID))
	notes, err := r.note.QueryNotes(ctx, macro.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	require.NoError(t, r.subj.DeleteSubject(ctx, macro.ID, alice.ID))

	_, err = r.subj.GetSubject(ctx, macro.ID)
	assert.Equal(t, core.ErrNotFound, err)
	notes, err = r.note.QueryNotes(ctx, macro.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
	_, err = r.guard.GetNoteOwner(ctx, lecture.ID)
	assert.Equal(t, core.ErrNotFound, err)

	shared, err := r.grp.QuerySharedNotes(ctx, grp.ID)
	require.NoError(t, err)
	if assert.Len(t, shared, 1) {
		assert.Equal(t, vectors.ID, shared[0].ID)
	}

	// second delete observes not found
	assert.Equal(t, core.ErrNotFound, r.subj.DeleteSubject(ctx, macro.ID, alice.ID))
}

func Test_noteRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, r.usr, "Alice", "alice@test.cd")
	macro := testutil.CreateSubject(t, r.subj, alice, "Macroeconomics")
	n1 := testutil.CreateNote(t, r.note, macro, "Lecture 1", "exam", "https://files.test/l1.pdf")
	n2 := testutil.CreateNote(t, r.note, macro, "Lecture 2", "")

	notes, err := r.note.QueryNotes(ctx, macro.ID)
	require.NoError(t, err)
	if assert.Len(t, notes, 2) {
		assert.Equal(t, n1.ID, notes[0].ID)
		assert.Equal(t, "https://files.test/l1.pdf", notes[0].AttachmentURL.String)
		assert.Equal(t, n2.ID, notes[1].ID)
		assert.False(t, notes[1].AttachmentURL.Valid)
	}

	owner, err := r.guard.GetNoteOwner(ctx, n2.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, owner)

	n2.Title = "Lecture 2 (revised)"
	_, err = r.note.UpdateNote(ctx, n2)
	require.NoError(t, err)
	got, err := r.note.GetNote(ctx, n2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lecture 2 (revised)", got.Title)

	require.NoError(t, r.note.DeleteNote(ctx, n1.ID))
	assert.Equal(t, core.ErrNotFound, r.note.DeleteNote(ctx, n1.ID))
	_, err = r.note.GetNote(ctx, n1.ID)
	assert.Equal(t, core.ErrNotFound, err)
}

func Test_groupRepository_membersAndShares(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, r.usr, "Alice", "alice@test.cd")
	bob := testutil.CreateUser(t, r.usr, "Bob", "bob@test.cd")
	macro := testutil.CreateSubject(t, r.subj, alice, "Macroeconomics")
	lecture := testutil.CreateNote(t, r.note, macro, "Lecture 1", "exam")

	grp, err := r.grp.CreateGroup(ctx, group.Group{Name: "Study", CreatedBy: alice.ID, CreatedAt: core.NowFunc()})
	require.NoError(t, err)

	_, created, err := r.grp.AddMember(ctx, group.Membership{GroupID: grp.ID, UserID: alice.ID, JoinedAt: core.NowFunc()})
	require.NoError(t, err)
	assert.True(t, created)
	first, created, err := r.grp.AddMember(ctx, group.Membership{GroupID: grp.ID, UserID: bob.ID, JoinedAt: core.NowFunc()})
	require.NoError(t, err)
	assert.True(t, created)
	again, created, err := r.grp.AddMember(ctx, group.Membership{GroupID: grp.ID, UserID: bob.ID, JoinedAt: core.NowFunc()})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, first.JoinedAt.Equal(again.JoinedAt))

	members, err := r.grp.QueryMembers(ctx, grp.ID)
	require.NoError(t, err)
	if assert.Len(t, members, 2) {
		assert.Equal(t, alice.ID, members[0].ID)
		assert.Equal(t, bob.ID, members[1].ID)
	}

	ok, err := r.guard.IsGroupMember(ctx, grp.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.guard.IsGroupMember(ctx, uuid.New().String(), bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	groups, err := r.grp.QueryGroups(ctx, bob.ID)
	require.NoError(t, err)
	if assert.Len(t, groups, 1) {
		assert.Equal(t, grp.ID, groups[0].ID)
	}

	s1, err := r.grp.CreateShare(ctx, group.Share{NoteID: lecture.ID, GroupID: grp.ID, SharedBy: alice.ID, SharedAt: core.NowFunc()})
	require.NoError(t, err)
	s2, err := r.grp.CreateShare(ctx, group.Share{NoteID: lecture.ID, GroupID: grp.ID, SharedBy: bob.ID, SharedAt: core.NowFunc()})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, s2.SharedBy)
	assert.True(t, s1.SharedAt.Equal(s2.SharedAt))

	shared, err := r.grp.QuerySharedNotes(ctx, grp.ID)
	require.NoError(t, err)
	if assert.Len(t, shared, 1) {
		assert.Equal(t, lecture.ID, shared[0].ID)
		assert.Equal(t, "Lecture 1", shared[0].Title)
		assert.Equal(t, alice.ID, shared[0].SharedBy)
		assert.Equal(t, "Alice", shared[0].SharedByName)
	}

	require.NoError(t, r.grp.DeleteShare(ctx, lecture.ID, grp.ID))
	assert.Equal(t, core.ErrNotFound, r.grp.DeleteShare(ctx, lecture.ID, grp.ID))
	_, err = r.note.GetNote(ctx, lecture.ID)
	assert.NoError(t, err)
}
