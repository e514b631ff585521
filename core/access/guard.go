// Package access decides whether a caller may act on a Subject, a Note or a Group.
//
// Every check fails closed: a missing entity, a foreign entity, a group the caller
// is not a member of and a malformed identifier all yield core.ErrNotFound, so
// callers cannot probe for the existence of other users' data.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
)

type Kind int

const (
	KindSubject Kind = iota + 1
	KindNote
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindSubject:
		return "subject"
	case KindNote:
		return "note"
	case KindGroup:
		return "group"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ref identifies the entity an operation targets.
type Ref struct {
	Kind Kind
	ID   string
}

func SubjectRef(id string) Ref { return Ref{Kind: KindSubject, ID: id} }
func NoteRef(id string) Ref    { return Ref{Kind: KindNote, ID: id} }
func GroupRef(id string) Ref   { return Ref{Kind: KindGroup, ID: id} }

type Repository interface {
	// GetSubjectOwner returns the ID of the User owning the Subject, or core.ErrNotFound.
	GetSubjectOwner(ctx context.Context, subjectID string, exec ...core.DBExecutor) (string, error)
	// GetNoteOwner returns the ID of the User owning the Note's Subject, or core.ErrNotFound.
	GetNoteOwner(ctx context.Context, noteID string, exec ...core.DBExecutor) (string, error)
	IsGroupMember(ctx context.Context, groupID, userID string, exec ...core.DBExecutor) (bool, error)
}

type Guard struct {
	repo Repository
}

func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo}
}

// Authorize returns nil when callerID may act on ref.
func (g *Guard) Authorize(ctx context.Context, callerID string, ref Ref, exec ...core.DBExecutor) error {
	if !validID(callerID) || !validID(ref.ID) {
		return core.ErrNotFound
	}

	switch ref.Kind {
	case KindSubject:
		owner, err := g.repo.GetSubjectOwner(ctx, ref.ID, exec...)
		return checkOwner(owner, callerID, err, "finding subject owner")
	case KindNote:
		owner, err := g.repo.GetNoteOwner(ctx, ref.ID, exec...)
		return checkOwner(owner, callerID, err, "finding note owner")
	case KindGroup:
		ok, err := g.repo.IsGroupMember(ctx, ref.ID, callerID, exec...)
		if err != nil {
			return errors.Wrap(err, "checking group membership")
		}
		if !ok {
			return core.ErrNotFound
		}
		return nil
	}
	return core.ErrNotFound
}

func checkOwner(owner, callerID string, err error, msg string) error {
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.ErrNotFound
		}
		return errors.Wrap(err, msg)
	}
	if owner != callerID {
		return core.ErrNotFound
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
