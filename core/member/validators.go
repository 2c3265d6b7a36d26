package member

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/auth"
)

var (
	memberRoleTag  = "memberrole"
	memberRoleText = "invalid role"
)

// InitValidators registers this package's custom validations and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(memberRoleTag, memberRoleValidation)
	core.RegisterCustomTranslation(validate, translator, memberRoleTag, memberRoleText)
}

// memberRoleValidation checks that the provided role is in the closed role set.
func memberRoleValidation(fl validator.FieldLevel) bool {
	return auth.ValidRole(fl.Field().String())
}
