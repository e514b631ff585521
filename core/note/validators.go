package note

import (
	"fmt"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/studyhall/studyhall/core"
)

var (
	pageSizeTag  = "pagesize"
	pageSizeText = fmt.Sprintf("page size must be one of %v or %q", PageSizes, pageSizeAll)
)

// InitValidators registers the note validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(pageSizeTag, pageSizeValidation)
	core.RegisterCustomTranslation(validate, translator, pageSizeTag, pageSizeText)
}

// pageSizeValidation accepts one of PageSizes or "all".
func pageSizeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == pageSizeAll {
		return true
	}
	size, err := strconv.Atoi(val)
	if err != nil {
		return false
	}
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}
