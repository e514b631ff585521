package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/note"
)

const noteColumns = "id, subject_id, title, content, tags, attachment_url, created_at, updated_at"

type noteRepository struct {
	baseRepository
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(exec core.DBExecutor) *noteRepository {
	return &noteRepository{baseRepository{exec: exec}}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note, exec ...core.DBExecutor) (note.Note, error) {
	db := repo.getExec(exec)

	n.ID = uuid.New().String()
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()

	q := db.Rebind("INSERT INTO notes (" + noteColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	_, err := db.ExecContext(ctx, q,
		n.ID, n.SubjectID, n.Title, n.Content, n.Tags, n.AttachmentURL, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "inserting note")
	}
	return n, nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]note.Note, error) {
	db := repo.getExec(exec)

	notes := make([]note.Note, 0)
	q := db.Rebind("SELECT " + noteColumns + " FROM notes WHERE subject_id = ? ORDER BY created_at, id")
	if err := sqlx.SelectContext(ctx, db, &notes, q, subjectID); err != nil {
		return nil, errors.Wrap(err, "selecting notes")
	}
	return notes, nil
}

func (repo noteRepository) GetNote(ctx context.Context, id string, exec ...core.DBExecutor) (note.Note, error) {
	db := repo.getExec(exec)

	var n note.Note
	q := db.Rebind("SELECT " + noteColumns + " FROM notes WHERE id = ?")
	if err := sqlx.GetContext(ctx, db, &n, q, id); err != nil {
		return note.Note{}, trapNoRowsErr(err, core.ErrNotFound, "selecting note")
	}
	return n, nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note, exec ...core.DBExecutor) (note.Note, error) {
	db := repo.getExec(exec)

	n.UpdatedAt = n.UpdatedAt.UTC()
	q := db.Rebind("UPDATE notes SET title = ?, content = ?, tags = ?, attachment_url = ?, updated_at = ? WHERE id = ?")
	res, err := db.ExecContext(ctx, q, n.Title, n.Content, n.Tags, n.AttachmentURL, n.UpdatedAt, n.ID)
	if err = checkAffected(res, err, "updating note"); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (repo noteRepository) DeleteNote(ctx context.Context, id string, exec ...core.DBExecutor) error {
	db := repo.getExec(exec)

	if _, err := db.ExecContext(ctx, db.Rebind("DELETE FROM group_notes WHERE note_id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting note shares")
	}
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM notes WHERE id = ?"), id)
	return checkAffected(res, err, "deleting note")
}
