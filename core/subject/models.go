package subject

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
)

type Subject struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"userId" db:"user_id"`
	Name        string      `json:"name" db:"name"`
	Professor   null.String `json:"professor" db:"professor"`
	Description null.String `json:"description" db:"description"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Professor   string `json:"professor" validate:"max=255"`
	Description string `json:"description" validate:"max=5000"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Professor = core.CleanString(ns.Professor)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// A blank Name keeps the stored one; a present Professor or Description replaces it (blank clears it).
type UpdateSubject struct {
	Name        string  `json:"name" validate:"max=255"`
	Professor   *string `json:"professor" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	if us.Professor != nil {
		p := core.CleanString(*us.Professor)
		us.Professor = &p
	}
	if us.Description != nil {
		d := core.CleanString(*us.Description)
		us.Description = &d
	}
	return validate.Struct(us)
}

// Apply returns a copy of orig with the update applied.
func (us UpdateSubject) Apply(orig Subject) Subject {
	if us.Name != "" {
		orig.Name = us.Name
	}
	if us.Professor != nil {
		orig.Professor = null.NewString(*us.Professor, *us.Professor != "")
	}
	if us.Description != nil {
		orig.Description = null.NewString(*us.Description, *us.Description != "")
	}
	return orig
}
