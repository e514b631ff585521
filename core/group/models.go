package group

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/note"
)

type Group struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   string    `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"` // UTC
}

type Membership struct {
	GroupID  string    `json:"groupId" db:"group_id"`
	UserID   string    `json:"userId" db:"user_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"` // UTC
}

type Share struct {
	NoteID   string    `json:"noteId" db:"note_id"`
	GroupID  string    `json:"groupId" db:"group_id"`
	SharedBy string    `json:"sharedBy" db:"shared_by"`
	SharedAt time.Time `json:"sharedAt" db:"shared_at"` // UTC
}

// SharedNote is a Note as seen by the members of a Group it was shared into.
type SharedNote struct {
	note.Note
	SharedBy      string    `json:"sharedBy" db:"shared_by"`
	SharedByName  string    `json:"sharedByName" db:"shared_by_name"`
	SharedAt      time.Time `json:"sharedAt" db:"shared_at"` // UTC
	HasAttachment bool      `json:"hasAttachment" db:"-"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return validate.Struct(ng)
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (ir *InviteRequest) Validate(validate *validator.Validate) error {
	ir.Email = core.CleanString(ir.Email, true /* lower */)
	return validate.Struct(ir)
}

type ShareRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

func (sr *ShareRequest) Validate(validate *validator.Validate) error {
	sr.GroupID = core.CleanString(sr.GroupID)
	return validate.Struct(sr)
}
