package contact

// NoticeKind classifies a visitor-facing notice.
type NoticeKind string

const (
	NoticeKindSuccess NoticeKind = "success"
	NoticeKindError   NoticeKind = "error"

	successNoticeTitle       = "Message envoyé !"
	successNoticeDescription = "Nous vous répondrons dans les plus brefs délais."
	failureNoticeTitle       = "Envoi impossible"
	failureNoticeDescription = "Votre message n'a pas pu être envoyé. Vos informations sont conservées, veuillez réessayer."
	validationNoticeTitle    = "Formulaire incomplet"
)

// Notice is the toast shown to the visitor after a submission attempt.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// IsZero reports whether the notice carries nothing to show.
func (notice Notice) IsZero() bool {
	return notice.Kind == "" && notice.Title == "" && notice.Description == ""
}

func successNotice() Notice {
	return Notice{Kind: NoticeKindSuccess, Title: successNoticeTitle, Description: successNoticeDescription}
}

func failureNotice() Notice {
	return Notice{Kind: NoticeKindError, Title: failureNoticeTitle, Description: failureNoticeDescription}
}

func validationNotice(validationError *ValidationError) Notice {
	return Notice{Kind: NoticeKindError, Title: validationNoticeTitle, Description: validationError.Message}
}
