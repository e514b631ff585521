package note

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/access"
)

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note, exec ...core.DBExecutor) (Note, error)
		// QueryNotes returns the Subject's Notes in creation order.
		QueryNotes(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]Note, error)
		GetNote(ctx context.Context, id string, exec ...core.DBExecutor) (Note, error)
		UpdateNote(ctx context.Context, n Note, exec ...core.DBExecutor) (Note, error)
		// DeleteNote removes the Note and its Shares. It must run inside a transaction;
		// core.ErrNotFound is returned when nothing was deleted.
		DeleteNote(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		Query(ctx context.Context, callerID, subjectID string, filter QueryFilter) (Page, error)
		Get(ctx context.Context, callerID, id string) (Note, error)
		Create(ctx context.Context, callerID, subjectID string, nn NewNote) (Note, error)
		Update(ctx context.Context, callerID, id string, un UpdateNote) (Note, error)
		Delete(ctx context.Context, callerID, id string) error
	}

	service struct {
		db       core.DB
		repo     Repository
		guard    *access.Guard
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, guard *access.Guard, validate *validator.Validate) Service {
	return &service{
		db:       db,
		repo:     repo,
		guard:    guard,
		validate: validate,
	}
}

// Query searches and paginates the Notes of a Subject owned by the caller.
func (svc *service) Query(ctx context.Context, callerID, subjectID string, filter QueryFilter) (Page, error) {
	if err := filter.Validate(svc.validate); err != nil {
		return Page{}, err
	}
	if err := svc.guard.Authorize(ctx, callerID, access.SubjectRef(subjectID)); err != nil {
		return Page{}, err
	}

	notes, err := svc.repo.QueryNotes(ctx, subjectID)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying notes")
	}
	return Query(notes, filter.Search, filter.Page, filter.Size()), nil
}

func (svc *service) Get(ctx context.Context, callerID, id string) (Note, error) {
	if err := svc.guard.Authorize(ctx, callerID, access.NoteRef(id)); err != nil {
		return Note{}, err
	}
	return svc.repo.GetNote(ctx, id)
}

func (svc *service) Create(ctx context.Context, callerID, subjectID string, nn NewNote) (Note, error) {
	if err := nn.Validate(svc.validate); err != nil {
		return Note{}, err
	}
	if err := svc.guard.Authorize(ctx, callerID, access.SubjectRef(subjectID)); err != nil {
		return Note{}, err
	}

	now := core.NowFunc()
	n, err := svc.repo.CreateNote(ctx, Note{
		SubjectID:     subjectID,
		Title:         nn.Title,
		Content:       nn.Content,
		Tags:          nn.Tags,
		AttachmentURL: null.NewString(nn.Attachment, nn.Attachment != ""),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	return n, errors.Wrap(err, "creating note")
}

func (svc *service) Update(ctx context.Context, callerID, id string, un UpdateNote) (Note, error) {
	if err := un.Validate(svc.validate); err != nil {
		return Note{}, err
	}
	orig, err := svc.Get(ctx, callerID, id)
	if err != nil {
		return Note{}, err
	}

	n := un.Apply(orig)
	n.UpdatedAt = core.NowFunc()
	n, err = svc.repo.UpdateNote(ctx, n)
	return n, errors.Wrap(err, "updating note")
}

func (svc *service) Delete(ctx context.Context, callerID, id string) error {
	if err := svc.guard.Authorize(ctx, callerID, access.NoteRef(id)); err != nil {
		return err
	}
	return core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		return svc.repo.DeleteNote(ctx, id, tx)
	})
}
