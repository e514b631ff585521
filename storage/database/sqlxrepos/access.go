package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/access"
)

type accessRepository struct {
	baseRepository
}

var _ access.Repository = (*accessRepository)(nil) // interface compliance check

func NewAccessRepository(exec core.DBExecutor) *accessRepository {
	return &accessRepository{baseRepository{exec: exec}}
}

func (repo accessRepository) GetSubjectOwner(ctx context.Context, subjectID string, exec ...core.DBExecutor) (string, error) {
	db := repo.getExec(exec)

	var owner string
	q := db.Rebind("SELECT user_id FROM subjects WHERE id = ?")
	if err := sqlx.GetContext(ctx, db, &owner, q, subjectID); err != nil {
		return "", trapNoRowsErr(err, core.ErrNotFound, "selecting subject owner")
	}
	return owner, nil
}

func (repo accessRepository) GetNoteOwner(ctx context.Context, noteID string, exec ...core.DBExecutor) (string, error) {
	db := repo.getExec(exec)

	var owner string
	q := db.Rebind("SELECT s.user_id FROM notes n JOIN subjects s ON s.id = n.subject_id WHERE n.id = ?")
	if err := sqlx.GetContext(ctx, db, &owner, q, noteID); err != nil {
		return "", trapNoRowsErr(err, core.ErrNotFound, "selecting note owner")
	}
	return owner, nil
}

func (repo accessRepository) IsGroupMember(ctx context.Context, groupID, userID string, exec ...core.DBExecutor) (bool, error) {
	db := repo.getExec(exec)

	var count int
	q := db.Rebind("SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?")
	if err := sqlx.GetContext(ctx, db, &count, q, groupID, userID); err != nil {
		return false, errors.Wrap(err, "counting memberships")
	}
	return count > 0, nil
}
