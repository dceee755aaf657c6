package contact

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

// Rule identifies which validation check rejected a draft.
type Rule string

const (
	RuleRequired         Rule = "required"
	RuleTooLong          Rule = "too_long"
	RuleInvalidFormat    Rule = "invalid_format"
	RuleUnknownObjective Rule = "unknown_objective"

	validationTagEmail     = "contact_email"
	validationTagObjective = "contact_objective"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports the first rule a draft violates.
type ValidationError struct {
	Field   Field
	Rule    Rule
	Message string
}

func (validationError *ValidationError) Error() string {
	return fmt.Sprintf("contact: %s %s: %s", validationError.Field, validationError.Rule, validationError.Message)
}

type fieldCheck struct {
	field   Field
	tag     string
	rule    Rule
	message string
}

// checks run in order; the first failure wins.
var checks = []fieldCheck{
	{field: FieldName, tag: "required", rule: RuleRequired, message: "Veuillez indiquer votre nom."},
	{field: FieldName, tag: fmt.Sprintf("max=%d", model.ContactNameMaxLength), rule: RuleTooLong, message: fmt.Sprintf("Le nom ne doit pas dépasser %d caractères.", model.ContactNameMaxLength)},
	{field: FieldEmail, tag: "required", rule: RuleRequired, message: "Veuillez indiquer votre adresse email."},
	{field: FieldEmail, tag: validationTagEmail, rule: RuleInvalidFormat, message: "Veuillez indiquer une adresse email valide."},
	{field: FieldEmail, tag: fmt.Sprintf("max=%d", model.ContactEmailMaxLength), rule: RuleTooLong, message: fmt.Sprintf("L'adresse email ne doit pas dépasser %d caractères.", model.ContactEmailMaxLength)},
	{field: FieldSubject, tag: "required", rule: RuleRequired, message: "Veuillez indiquer le sujet de votre message."},
	{field: FieldSubject, tag: fmt.Sprintf("max=%d", model.ContactSubjectMaxLength), rule: RuleTooLong, message: fmt.Sprintf("Le sujet ne doit pas dépasser %d caractères.", model.ContactSubjectMaxLength)},
	{field: FieldMessage, tag: "required", rule: RuleRequired, message: "Veuillez écrire votre message."},
	{field: FieldMessage, tag: fmt.Sprintf("max=%d", model.ContactMessageMaxLength), rule: RuleTooLong, message: fmt.Sprintf("Le message ne doit pas dépasser %d caractères.", model.ContactMessageMaxLength)},
	{field: FieldPhone, tag: fmt.Sprintf("omitempty,max=%d", model.ContactPhoneMaxLength), rule: RuleTooLong, message: fmt.Sprintf("Le téléphone ne doit pas dépasser %d caractères.", model.ContactPhoneMaxLength)},
	{field: FieldObjective, tag: "omitempty," + validationTagObjective, rule: RuleUnknownObjective, message: "Veuillez choisir un objectif dans la liste."},
}

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation(validationTagEmail, func(fieldLevel validator.FieldLevel) bool {
		return emailPattern.MatchString(fieldLevel.Field().String())
	})
	_ = validate.RegisterValidation(validationTagObjective, func(fieldLevel validator.FieldLevel) bool {
		return model.IsKnownObjective(fieldLevel.Field().String())
	})
	return validate
}

// IsValidEmail reports whether value has the local@domain shape accepted by the contact form.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// Validate checks draft and returns a *ValidationError describing the first failing rule, or nil.
func Validate(draft Draft) error {
	normalized := draft.Normalized()
	for _, check := range checks {
		if fieldValidator.Var(normalized.Value(check.field), check.tag) != nil {
			return &ValidationError{Field: check.field, Rule: check.rule, Message: check.message}
		}
	}
	return nil
}
