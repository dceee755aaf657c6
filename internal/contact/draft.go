package contact

import (
	"errors"
	"fmt"
	"strings"
)

// Field names one attribute of a contact draft.
type Field string

const (
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldObjective Field = "objective"
	FieldSubject   Field = "subject"
	FieldMessage   Field = "message"
)

// ErrUnknownField indicates a field name outside the contact form.
var ErrUnknownField = errors.New("contact: unknown field")

// ParseField resolves a form field name.
func ParseField(rawName string) (Field, error) {
	field := Field(strings.ToLower(strings.TrimSpace(rawName)))
	switch field {
	case FieldName, FieldEmail, FieldPhone, FieldObjective, FieldSubject, FieldMessage:
		return field, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, rawName)
	}
}

// Draft is the editable, not yet persisted content of a contact request.
type Draft struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Objective string `json:"objective,omitempty"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (draft Draft) Normalized() Draft {
	return Draft{
		Name:      strings.TrimSpace(draft.Name),
		Email:     strings.TrimSpace(draft.Email),
		Phone:     strings.TrimSpace(draft.Phone),
		Objective: strings.TrimSpace(draft.Objective),
		Subject:   strings.TrimSpace(draft.Subject),
		Message:   strings.TrimSpace(draft.Message),
	}
}

// IsEmpty reports whether no field carries content.
func (draft Draft) IsEmpty() bool {
	return draft.Normalized() == Draft{}
}

// Value returns the current value of field.
func (draft Draft) Value(field Field) string {
	switch field {
	case FieldName:
		return draft.Name
	case FieldEmail:
		return draft.Email
	case FieldPhone:
		return draft.Phone
	case FieldObjective:
		return draft.Objective
	case FieldSubject:
		return draft.Subject
	case FieldMessage:
		return draft.Message
	default:
		return ""
	}
}

func (draft *Draft) set(field Field, value string) {
	switch field {
	case FieldName:
		draft.Name = value
	case FieldEmail:
		draft.Email = value
	case FieldPhone:
		draft.Phone = value
	case FieldObjective:
		draft.Objective = value
	case FieldSubject:
		draft.Subject = value
	case FieldMessage:
		draft.Message = value
	}
}
