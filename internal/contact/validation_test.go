package contact

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Name:      "Awa Touré",
		Email:     "awa@example.com",
		Phone:     "+22890000000",
		Objective: "formation",
		Subject:   "Demande de formation",
		Message:   "Je souhaite une formation.",
	}
}

func requireValidationFailure(testingT *testing.T, draft Draft, expectedField Field, expectedRule Rule) {
	testingT.Helper()
	validationErr := Validate(draft)
	require.Error(testingT, validationErr)
	var fieldErr *ValidationError
	require.True(testingT, errors.As(validationErr, &fieldErr))
	require.Equal(testingT, expectedField, fieldErr.Field)
	require.Equal(testingT, expectedRule, fieldErr.Rule)
	require.NotEmpty(testingT, fieldErr.Message)
}

func TestValidateAcceptsCompleteDraft(testingT *testing.T) {
	require.NoError(testingT, Validate(validDraft()))

	withoutOptional := validDraft()
	withoutOptional.Phone = ""
	withoutOptional.Objective = ""
	require.NoError(testingT, Validate(withoutOptional))
}

func TestValidateRejectsMissingRequiredFields(testingT *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Draft)
		field  Field
	}{
		{name: "missing name", mutate: func(draft *Draft) { draft.Name = "" }, field: FieldName},
		{name: "blank name", mutate: func(draft *Draft) { draft.Name = "   " }, field: FieldName},
		{name: "missing email", mutate: func(draft *Draft) { draft.Email = "" }, field: FieldEmail},
		{name: "missing subject", mutate: func(draft *Draft) { draft.Subject = "" }, field: FieldSubject},
		{name: "missing message", mutate: func(draft *Draft) { draft.Message = "\n\t" }, field: FieldMessage},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			draft := validDraft()
			testCase.mutate(&draft)
			requireValidationFailure(testingT, draft, testCase.field, RuleRequired)
		})
	}
}

func TestValidateReportsFirstFailingRuleInOrder(testingT *testing.T) {
	requireValidationFailure(testingT, Draft{}, FieldName, RuleRequired)
	requireValidationFailure(testingT, Draft{Name: "Awa"}, FieldEmail, RuleRequired)
	requireValidationFailure(testingT, Draft{Name: "Awa", Email: "awa"}, FieldEmail, RuleInvalidFormat)
	requireValidationFailure(testingT, Draft{Name: "Awa", Email: "awa@example.com"}, FieldSubject, RuleRequired)
	requireValidationFailure(testingT, Draft{Name: "Awa", Email: "awa@example.com", Subject: "Sujet"}, FieldMessage, RuleRequired)
}

func TestValidateRejectsMalformedEmails(testingT *testing.T) {
	for _, email := range []string{"awa", "awa@", "@example.com", "awa@example", "awa touré@example.com", "awa@@example.com"} {
		testingT.Run(email, func(testingT *testing.T) {
			draft := validDraft()
			draft.Email = email
			requireValidationFailure(testingT, draft, FieldEmail, RuleInvalidFormat)
		})
	}
	require.True(testingT, IsValidEmail("a.b+c@sub.example.tg"))
}

func TestValidateEnforcesLengthBounds(testingT *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Draft)
		field  Field
	}{
		{name: "name", mutate: func(draft *Draft) { draft.Name = strings.Repeat("é", 101) }, field: FieldName},
		{name: "email", mutate: func(draft *Draft) { draft.Email = strings.Repeat("a", 250) + "@example.com" }, field: FieldEmail},
		{name: "subject", mutate: func(draft *Draft) { draft.Subject = strings.Repeat("s", 201) }, field: FieldSubject},
		{name: "message", mutate: func(draft *Draft) { draft.Message = strings.Repeat("m", 2001) }, field: FieldMessage},
		{name: "phone", mutate: func(draft *Draft) { draft.Phone = strings.Repeat("9", 31) }, field: FieldPhone},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			draft := validDraft()
			testCase.mutate(&draft)
			requireValidationFailure(testingT, draft, testCase.field, RuleTooLong)
		})
	}

	atLimit := validDraft()
	atLimit.Name = strings.Repeat("é", 100)
	atLimit.Message = strings.Repeat("m", 2000)
	require.NoError(testingT, Validate(atLimit))
}

func TestValidateRejectsUnknownObjective(testingT *testing.T) {
	draft := validDraft()
	draft.Objective = "aquarium"
	requireValidationFailure(testingT, draft, FieldObjective, RuleUnknownObjective)
}

func TestParseField(testingT *testing.T) {
	field, parseErr := ParseField(" Subject ")
	require.NoError(testingT, parseErr)
	require.Equal(testingT, FieldSubject, field)

	_, unknownErr := ParseField("company")
	require.ErrorIs(testingT, unknownErr, ErrUnknownField)
}
