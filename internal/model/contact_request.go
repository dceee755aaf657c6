package model

import (
	"strings"
	"time"
)

const (
	NotificationStatusPending   = "pending"
	NotificationStatusDelivered = "delivered"
	NotificationStatusPartial   = "partial"
	NotificationStatusFailed    = "failed"

	ContactNameMaxLength    = 100
	ContactEmailMaxLength   = 255
	ContactPhoneMaxLength   = 30
	ContactSubjectMaxLength = 200
	ContactMessageMaxLength = 2000
)

// ContactRequest is a visitor inquiry submitted through the contact form.
type ContactRequest struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	Name               string    `gorm:"not null;size:100" json:"name"`
	Email              string    `gorm:"not null;size:255;index" json:"email"`
	Phone              string    `gorm:"size:30" json:"phone,omitempty"`
	Objective          string    `gorm:"size:40" json:"objective,omitempty"`
	Subject            string    `gorm:"not null;size:200" json:"subject"`
	Message            string    `gorm:"not null;size:2000" json:"message"`
	SubmittedAt        time.Time `gorm:"not null;index" json:"submittedAt"`
	NotificationStatus string    `gorm:"not null;size:16;index;default:pending" json:"notificationStatus"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"-"`
}

// IsKnownNotificationStatus reports whether status is one of the recorded notification states.
func IsKnownNotificationStatus(status string) bool {
	switch strings.TrimSpace(status) {
	case NotificationStatusPending, NotificationStatusDelivered, NotificationStatusPartial, NotificationStatusFailed:
		return true
	default:
		return false
	}
}
