package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/subject"
)

const subjectColumns = "id, user_id, name, professor, description, created_at, updated_at"

type subjectRepository struct {
	baseRepository
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(exec core.DBExecutor) *subjectRepository {
	return &subjectRepository{baseRepository{exec: exec}}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	db := repo.getExec(exec)

	subj.ID = uuid.New().String()
	subj.CreatedAt = subj.CreatedAt.UTC()
	subj.UpdatedAt = subj.UpdatedAt.UTC()

	q := db.Rebind("INSERT INTO subjects (" + subjectColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	_, err := db.ExecContext(ctx, q,
		subj.ID, subj.UserID, subj.Name, subj.Professor, subj.Description, subj.CreatedAt, subj.UpdatedAt)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, userID string, exec ...core.DBExecutor) ([]subject.Subject, error) {
	db := repo.getExec(exec)

	subjects := make([]subject.Subject, 0)
	q := db.Rebind("SELECT " + subjectColumns + " FROM subjects WHERE user_id = ? ORDER BY created_at, id")
	if err := sqlx.SelectContext(ctx, db, &subjects, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (subject.Subject, error) {
	db := repo.getExec(exec)

	var subj subject.Subject
	q := db.Rebind("SELECT " + subjectColumns + " FROM subjects WHERE id = ?")
	if err := sqlx.GetContext(ctx, db, &subj, q, id); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, core.ErrNotFound, "selecting subject")
	}
	return subj, nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, subj subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	db := repo.getExec(exec)

	subj.UpdatedAt = subj.UpdatedAt.UTC()
	q := db.Rebind("UPDATE subjects SET name = ?, professor = ?, description = ?, updated_at = ? WHERE id = ?")
	res, err := db.ExecContext(ctx, q, subj.Name, subj.Professor, subj.Description, subj.UpdatedAt, subj.ID)
	if err = checkAffected(res, err, "updating subject"); err != nil {
		return subject.Subject{}, err
	}
	return subj, nil
}

func (repo subjectRepository) DeleteSubject(ctx context.Context, id, userID string, exec ...core.DBExecutor) error {
	db := repo.getExec(exec)

	owned := "SELECT id FROM subjects WHERE id = ? AND user_id = ?"
	q := db.Rebind("DELETE FROM group_notes WHERE note_id IN (SELECT id FROM notes WHERE subject_id IN (" + owned + "))")
	if _, err := db.ExecContext(ctx, q, id, userID); err != nil {
		return errors.Wrap(err, "deleting subject shares")
	}

	q = db.Rebind("DELETE FROM notes WHERE subject_id IN (" + owned + ")")
	if _, err := db.ExecContext(ctx, q, id, userID); err != nil {
		return errors.Wrap(err, "deleting subject notes")
	}

	q = db.Rebind("DELETE FROM subjects WHERE id = ? AND user_id = ?")
	res, err := db.ExecContext(ctx, q, id, userID)
	return checkAffected(res, err, "deleting subject")
}
