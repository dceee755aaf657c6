package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

const (
	teamNotificationTemplateName    = "team_notification.html.tmpl"
	visitorConfirmationTemplateName = "visitor_confirmation.html.tmpl"
)

//go:embed templates/*.tmpl
var emailTemplateFiles embed.FS

var emailTemplates = template.Must(template.ParseFS(emailTemplateFiles, "templates/*.tmpl"))

// Branding holds the company details printed in the visitor confirmation.
type Branding struct {
	Name         string
	Tagline      string
	Location     string
	SupportEmail string
	SupportPhone string
}

type teamNotificationData struct {
	Name      string
	Email     string
	Phone     string
	PhoneHref template.URL
	Objective string
	Subject   string
	Message   string
}

type visitorConfirmationData struct {
	Name             string
	Subject          string
	BrandName        string
	BrandTagline     string
	BrandLocation    string
	SupportEmail     string
	SupportPhone     string
	SupportPhoneHref template.URL
}

// RenderTeamNotification renders the internal notification body. Empty optional fields produce no row.
func RenderTeamNotification(payload ContactPayload) (string, error) {
	normalized := payload.Normalized()
	data := teamNotificationData{
		Name:      normalized.Name,
		Email:     normalized.Email,
		Phone:     normalized.Phone,
		PhoneHref: telephoneURL(normalized.Phone),
		Subject:   normalized.Subject,
		Message:   normalized.Message,
	}
	if normalized.Objective != "" {
		data.Objective = model.ObjectiveLabel(normalized.Objective)
	}
	return executeEmailTemplate(teamNotificationTemplateName, data)
}

// RenderVisitorConfirmation renders the acknowledgement sent to the visitor.
func RenderVisitorConfirmation(payload ContactPayload, branding Branding) (string, error) {
	normalized := payload.Normalized()
	data := visitorConfirmationData{
		Name:             normalized.Name,
		Subject:          normalized.Subject,
		BrandName:        strings.TrimSpace(branding.Name),
		BrandTagline:     strings.TrimSpace(branding.Tagline),
		BrandLocation:    strings.TrimSpace(branding.Location),
		SupportEmail:     strings.TrimSpace(branding.SupportEmail),
		SupportPhone:     strings.TrimSpace(branding.SupportPhone),
		SupportPhoneHref: telephoneURL(branding.SupportPhone),
	}
	return executeEmailTemplate(visitorConfirmationTemplateName, data)
}

func executeEmailTemplate(name string, data any) (string, error) {
	var buffer bytes.Buffer
	if executeErr := emailTemplates.ExecuteTemplate(&buffer, name, data); executeErr != nil {
		return "", fmt.Errorf("notifications: render %s: %w", name, executeErr)
	}
	return buffer.String(), nil
}

// telephoneURL keeps only dialable characters so the tel: link is safe to emit unescaped.
func telephoneURL(phone string) template.URL {
	var builder strings.Builder
	for _, character := range strings.TrimSpace(phone) {
		if (character >= '0' && character <= '9') || (character == '+' && builder.Len() == 0) {
			builder.WriteRune(character)
		}
	}
	if builder.Len() == 0 {
		return ""
	}
	return template.URL("tel:" + builder.String())
}
