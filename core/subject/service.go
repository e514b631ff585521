package subject

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
		CreateSubject(ctx context.Context, subj Subject, exec ...core.DBExecutor) (Subject, error)
		// QuerySubjects returns the User's Subjects in creation order.
		QuerySubjects(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Subject, error)
		GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, subj Subject, exec ...core.DBExecutor) (Subject, error)
		// DeleteSubject removes the Subject owned by userID along with its Notes and their Shares.
		// It must run inside a transaction; core.ErrNotFound is returned when nothing was deleted.
		DeleteSubject(ctx context.Context, id, userID string, exec ...core.DBExecutor) error
	}

	Service interface {
		List(ctx context.Context, callerID string) ([]Subject, error)
		Get(ctx context.Context, callerID, id string) (Subject, error)
		Create(ctx context.Context, callerID string, ns NewSubject) (Subject, error)
		Update(ctx context.Context, callerID, id string, us UpdateSubject) (Subject, error)
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

func (svc *service) List(ctx context.Context, callerID string) ([]Subject, error) {
	subjects, err := svc.repo.QuerySubjects(ctx, callerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []Subject{}
	}
	return subjects, nil
}

func (svc *service) Get(ctx context.Context, callerID, id string) (Subject, error) {
	if err := svc.guard.Authorize(ctx, callerID, access.SubjectRef(id)); err != nil {
		return Subject{}, err
	}
	return svc.repo.GetSubject(ctx, id)
}

func (svc *service) Create(ctx context.Context, callerID string, ns NewSubject) (Subject, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Subject{}, err
	}

	now := core.NowFunc()
	subj, err := svc.repo.CreateSubject(ctx, Subject{
		UserID:      callerID,
		Name:        ns.Name,
		Professor:   null.NewString(ns.Professor, ns.Professor != ""),
		Description: null.NewString(ns.Description, ns.Description != ""),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return subj, errors.Wrap(err, "creating subject")
}

func (svc *service) Update(ctx context.Context, callerID, id string, us UpdateSubject) (Subject, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	orig, err := svc.Get(ctx, callerID, id)
	if err != nil {
		return Subject{}, err
	}

	subj := us.Apply(orig)
	subj.UpdatedAt = core.NowFunc()
	subj, err = svc.repo.UpdateSubject(ctx, subj)
	return subj, errors.Wrap(err, "updating subject")
}

// Delete removes the Subject together with its Notes and their Shares, all or nothing.
func (svc *service) Delete(ctx context.Context, callerID, id string) error {
	if err := svc.guard.Authorize(ctx, callerID, access.SubjectRef(id)); err != nil {
		return err
	}
	return core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		return svc.repo.DeleteSubject(ctx, id, callerID, tx)
	})
}
