package note

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
)

const (
	DefaultPageSize = 16
	pageSizeAll     = "all"
)

// PageSizes are the page sizes a client may ask for, besides "all".
var PageSizes = []int{8, 16, 24, 32}

type Note struct {
	ID            string      `json:"id" db:"id"`
	SubjectID     string      `json:"subjectId" db:"subject_id"`
	Title         string      `json:"title" db:"title"`
	Content       string      `json:"content" db:"content"`
	Tags          string      `json:"tags" db:"tags"` // comma-separated
	AttachmentURL null.String `json:"attachmentUrl" db:"attachment_url"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"` // UTC
}

func (n Note) TagList() []string {
	return core.CleanList(n.Tags)
}

func (n Note) HasAttachment() bool {
	return n.AttachmentURL.Valid && n.AttachmentURL.String != ""
}

// NewNote contains information needed to create a new Note.
type NewNote struct {
	Title      string `json:"title" validate:"required,notblank,max=255"`
	Content    string `json:"content" validate:"max=1000000"`
	Tags       string `json:"tags" validate:"max=1024"`
	Attachment string `json:"attachment" validate:"max=2048"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Tags = cleanTags(nn.Tags)
	nn.Attachment = core.CleanString(nn.Attachment)
	return validate.Struct(nn)
}

// UpdateNote defines what information may be provided to modify an existing Note.
// Blank Title and Content keep the stored values; present Tags or Attachment replace them.
type UpdateNote struct {
	Title      string  `json:"title" validate:"max=255"`
	Content    string  `json:"content" validate:"max=1000000"`
	Tags       *string `json:"tags" validate:"omitempty,max=1024"`
	Attachment *string `json:"attachment" validate:"omitempty,max=2048"`
}

func (un *UpdateNote) Validate(validate *validator.Validate) error {
	un.Title = core.CleanString(un.Title)
	if un.Tags != nil {
		t := cleanTags(*un.Tags)
		un.Tags = &t
	}
	if un.Attachment != nil {
		a := core.CleanString(*un.Attachment)
		un.Attachment = &a
	}
	return validate.Struct(un)
}

// Apply returns a copy of orig with the update applied.
func (un UpdateNote) Apply(orig Note) Note {
	if un.Title != "" {
		orig.Title = un.Title
	}
	if strings.TrimSpace(un.Content) != "" {
		orig.Content = un.Content
	}
	if un.Tags != nil {
		orig.Tags = *un.Tags
	}
	if un.Attachment != nil {
		orig.AttachmentURL = null.NewString(*un.Attachment, *un.Attachment != "")
	}
	return orig
}

// QueryFilter holds the search and pagination parameters of a note query.
type QueryFilter struct {
	Search   string `query:"search" validate:"max=255"`
	Page     int    `query:"page" validate:"min=0"`
	PageSize string `query:"pageSize" validate:"omitempty,pagesize"`
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	qf.Search = core.CleanString(qf.Search)
	qf.PageSize = core.CleanString(qf.PageSize, true /* lower */)
	if err := validate.Struct(qf); err != nil {
		return err
	}
	if qf.Page == 0 {
		qf.Page = 1
	}
	return nil
}

// Size returns the page size to use; 0 means "all".
func (qf QueryFilter) Size() int {
	switch qf.PageSize {
	case "":
		return DefaultPageSize
	case pageSizeAll:
		return 0
	}
	size, _ := strconv.Atoi(qf.PageSize)
	return size
}

func cleanTags(tags string) string {
	return strings.Join(core.CleanList(tags), ",")
}
