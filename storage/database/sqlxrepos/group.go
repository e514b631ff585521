package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/group"
	"github.com/studyhall/studyhall/core/user"
)

const groupColumns = "id, name, description, created_by, created_at"

type groupRepository struct {
	baseRepository
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{baseRepository{exec: exec}}
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	db := repo.getExec(exec)

	grp.ID = uuid.New().String()
	grp.CreatedAt = grp.CreatedAt.UTC()

	q := db.Rebind("INSERT INTO study_groups (" + groupColumns + ") VALUES (?, ?, ?, ?, ?)")
	if _, err := db.ExecContext(ctx, q, grp.ID, grp.Name, grp.Description, grp.CreatedBy, grp.CreatedAt); err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) GetGroup(ctx context.Context, id string, exec ...core.DBExecutor) (group.Group, error) {
	db := repo.getExec(exec)

	var grp group.Group
	q := db.Rebind("SELECT " + groupColumns + " FROM study_groups WHERE id = ?")
	if err := sqlx.GetContext(ctx, db, &grp, q, id); err != nil {
		return group.Group{}, trapNoRowsErr(err, core.ErrNotFound, "selecting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryGroups(ctx context.Context, userID string, exec ...core.DBExecutor) ([]group.Group, error) {
	db := repo.getExec(exec)

	groups := make([]group.Group, 0)
	q := db.Rebind(`
		SELECT g.id, g.name, g.description, g.created_by, g.created_at
		FROM study_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at, g.id`)
	if err := sqlx.SelectContext(ctx, db, &groups, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting groups")
	}
	return groups, nil
}

func (repo groupRepository) AddMember(ctx context.Context, m group.Membership, exec ...core.DBExecutor) (group.Membership, bool, error) {
	db := repo.getExec(exec)

	q := db.Rebind("INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING")
	res, err := db.ExecContext(ctx, q, m.GroupID, m.UserID, m.JoinedAt.UTC())
	if err != nil {
		return group.Membership{}, false, errors.Wrap(err, "inserting membership")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return group.Membership{}, false, errors.Wrap(err, "inserting membership")
	}

	var stored group.Membership
	q = db.Rebind("SELECT group_id, user_id, joined_at FROM group_members WHERE group_id = ? AND user_id = ?")
	if err = sqlx.GetContext(ctx, db, &stored, q, m.GroupID, m.UserID); err != nil {
		return group.Membership{}, false, trapNoRowsErr(err, core.ErrNotFound, "selecting membership")
	}
	return stored, n > 0, nil
}

func (repo groupRepository) QueryMembers(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]user.User, error) {
	db := repo.getExec(exec)

	members := make([]user.User, 0)
	q := db.Rebind(`
		SELECT u.id, u.email, u.name, u.google_id, u.created_at, u.last_login
		FROM users u
		JOIN group_members m ON m.user_id = u.id
		WHERE m.group_id = ?
		ORDER BY m.joined_at, u.id`)
	if err := sqlx.SelectContext(ctx, db, &members, q, groupID); err != nil {
		return nil, errors.Wrap(err, "selecting members")
	}
	return members, nil
}

func (repo groupRepository) CreateShare(ctx context.Context, s group.Share, exec ...core.DBExecutor) (group.Share, error) {
	db := repo.getExec(exec)

	q := db.Rebind("INSERT INTO group_notes (group_id, note_id, shared_by, shared_at) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING")
	if _, err := db.ExecContext(ctx, q, s.GroupID, s.NoteID, s.SharedBy, s.SharedAt.UTC()); err != nil {
		return group.Share{}, errors.Wrap(err, "inserting share")
	}

	var stored group.Share
	q = db.Rebind("SELECT note_id, group_id, shared_by, shared_at FROM group_notes WHERE group_id = ? AND note_id = ?")
	if err := sqlx.GetContext(ctx, db, &stored, q, s.GroupID, s.NoteID); err != nil {
		return group.Share{}, trapNoRowsErr(err, core.ErrNotFound, "selecting share")
	}
	return stored, nil
}

func (repo groupRepository) DeleteShare(ctx context.Context, noteID, groupID string, exec ...core.DBExecutor) error {
	db := repo.getExec(exec)

	q := db.Rebind("DELETE FROM group_notes WHERE note_id = ? AND group_id = ?")
	res, err := db.ExecContext(ctx, q, noteID, groupID)
	return checkAffected(res, err, "deleting share")
}

func (repo groupRepository) QuerySharedNotes(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]group.SharedNote, error) {
	db := repo.getExec(exec)

	notes := make([]group.SharedNote, 0)
	q := db.Rebind(`
		SELECT n.id, n.subject_id, n.title, n.content, n.tags, n.attachment_url, n.created_at, n.updated_at,
			gn.shared_by, u.name AS shared_by_name, gn.shared_at
		FROM group_notes gn
		JOIN notes n ON n.id = gn.note_id
		JOIN users u ON u.id = gn.shared_by
		WHERE gn.group_id = ?
		ORDER BY gn.shared_at DESC, n.id`)
	if err := sqlx.SelectContext(ctx, db, &notes, q, groupID); err != nil {
		return nil, errors.Wrap(err, "selecting shared notes")
	}
	return notes, nil
}
