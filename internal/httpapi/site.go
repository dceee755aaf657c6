package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/contact"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/site"
)

const (
	SiteRootPath        = "/"
	SiteContactFormPath = "/contact"
	HealthPath          = "/healthz"

	siteTemplateName       = "site"
	siteHTMLContentType    = "text/html; charset=utf-8"
	galleryQueryParameter  = "galerie"
	galleryQueryShowAll    = "tout"
	galleryAnchor          = "#galerie"
	contactAnchor          = "#contact"
	rateLimitedNoticeTitle = "Trop de tentatives"
	rateLimitedNoticeBody  = "Veuillez patienter quelques instants avant de renvoyer votre message."

	formFieldName      = "name"
	formFieldEmail     = "email"
	formFieldPhone     = "phone"
	formFieldObjective = "objective"
	formFieldSubject   = "subject"
	formFieldMessage   = "message"

	logEventLoadSiteSession = "load_site_session"
	logEventSaveSiteSession = "save_site_session"
	logEventRenderSite      = "render_site_page"
	logEventRenderFooter    = "render_site_footer"
	logEventContactSubmit   = "contact_form_submitted"
)

// ErrMissingSessionStore indicates SiteHandlers were built without a session store.
var ErrMissingSessionStore = errors.New("httpapi: missing session store")

type phoneLink struct {
	Display string
	Href    template.URL
}

type fieldLimits struct {
	Name    int
	Email   int
	Phone   int
	Subject int
	Message int
}

type sitePageData struct {
	Content            site.Content
	GalleryItems       []site.GalleryItem
	ShowAllGallery     bool
	HasMoreGallery     bool
	HiddenGalleryCount int
	GalleryToggleURL   string
	Objectives         []model.Objective
	Draft              contact.Draft
	Notice             contact.Notice
	HasNotice          bool
	Limits             fieldLimits
	PhoneLinks         []phoneLink
	EmailHref          template.URL
	WhatsAppURL        string
	ContactFormAction  string
	ChatEndpoint       string
	FooterHTML         template.HTML
}

// SiteHandlers renders the single-page website and processes its contact form.
type SiteHandlers struct {
	logger       *zap.Logger
	content      site.Content
	template     *template.Template
	sessionStore sessions.Store
	controllers  *controllerRegistry
	rateLimiter  *ipRateLimiter
	now          func() time.Time
}

var siteTemplateFuncs = template.FuncMap{
	"ordinal": func(index int) int { return index + 1 },
}

// NewSiteHandlers constructs the site handlers. Each visitor session gets its own contact.Controller.
func NewSiteHandlers(logger *zap.Logger, content site.Content, sessionStore sessions.Store, persister contact.Persister, notifier contact.Notifier) (*SiteHandlers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionStore == nil {
		return nil, ErrMissingSessionStore
	}
	compiledTemplate, parseErr := template.New(siteTemplateName).Funcs(siteTemplateFuncs).Parse(siteTemplateHTML)
	if parseErr != nil {
		return nil, fmt.Errorf("httpapi: parse site template: %w", parseErr)
	}
	return &SiteHandlers{
		logger:       logger,
		content:      content,
		template:     compiledTemplate,
		sessionStore: sessionStore,
		controllers: newControllerRegistry(func() *contact.Controller {
			return contact.NewController(persister, notifier, logger)
		}),
		rateLimiter: newIPRateLimiter(defaultRateWindow, defaultMaxRequestsPerIPPerWindow),
		now:         time.Now,
	}, nil
}

// RenderHome renders the page, prefilling the form with a retained draft and showing a pending toast once.
// The first visit assigns the visitor identifier so that later form posts share one controller.
func (handlers *SiteHandlers) RenderHome(context *gin.Context) {
	session := handlers.loadSession(context)
	draft := decodeSessionDraft(handlers.logger, session)
	notice, hasNotice := popSessionNotice(session)
	_, visitorAssigned := ensureVisitorID(session)
	if hasNotice || visitorAssigned {
		handlers.saveSession(context, session)
	}

	showAllGallery := context.Query(galleryQueryParameter) == galleryQueryShowAll
	data := handlers.pageData(showAllGallery, draft, notice, hasNotice)

	var buffer bytes.Buffer
	if executeErr := handlers.template.Execute(&buffer, data); executeErr != nil {
		handlers.logger.Error(logEventRenderSite, zap.Error(executeErr))
		context.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{jsonKeyError: "site_render_failed"})
		return
	}
	context.Data(http.StatusOK, siteHTMLContentType, buffer.Bytes())
}

// SubmitContactForm submits the posted form through the visitor's controller and redirects back to the form.
// Failed submissions keep the entered values in the session. A submission posted while another one from the
// same session is pending changes nothing.
func (handlers *SiteHandlers) SubmitContactForm(context *gin.Context) {
	session := handlers.loadSession(context)
	formDraft := contact.Draft{
		Name:      context.PostForm(formFieldName),
		Email:     context.PostForm(formFieldEmail),
		Phone:     context.PostForm(formFieldPhone),
		Objective: context.PostForm(formFieldObjective),
		Subject:   context.PostForm(formFieldSubject),
		Message:   context.PostForm(formFieldMessage),
	}

	if handlers.rateLimiter.isRateLimited(context.ClientIP()) {
		storeSessionDraft(session, formDraft)
		storeSessionNotice(session, contact.Notice{Kind: contact.NoticeKindError, Title: rateLimitedNoticeTitle, Description: rateLimitedNoticeBody})
		handlers.saveSession(context, session)
		context.Redirect(http.StatusSeeOther, SiteRootPath+contactAnchor)
		return
	}

	visitorID, _ := ensureVisitorID(session)

	controller := handlers.controllers.acquire(visitorID)
	if controller.Submitting() {
		context.Redirect(http.StatusSeeOther, SiteRootPath+contactAnchor)
		return
	}
	controller.SetDraft(formDraft)
	outcome, submitErr := controller.Submit(context.Request.Context())
	if errors.Is(submitErr, contact.ErrSubmissionInProgress) {
		context.Redirect(http.StatusSeeOther, SiteRootPath+contactAnchor)
		return
	}

	if submitErr != nil {
		storeSessionDraft(session, formDraft)
	} else {
		storeSessionDraft(session, contact.Draft{})
		handlers.logger.Info(logEventContactSubmit,
			zap.String("contact_request_id", outcome.RecordID),
			zap.String("notification_status", outcome.NotificationStatus),
		)
	}
	storeSessionNotice(session, outcome.Notice)
	handlers.saveSession(context, session)
	context.Redirect(http.StatusSeeOther, SiteRootPath+contactAnchor)
}

// Health reports liveness.
func Health(context *gin.Context) {
	context.JSON(http.StatusOK, gin.H{"status": statusValueOK})
}

func (handlers *SiteHandlers) loadSession(context *gin.Context) *sessions.Session {
	session, sessionErr := handlers.sessionStore.Get(context.Request, siteSessionName)
	if sessionErr != nil {
		handlers.logger.Warn(logEventLoadSiteSession, zap.Error(sessionErr))
	}
	if session == nil {
		session = sessions.NewSession(handlers.sessionStore, siteSessionName)
	}
	return session
}

func (handlers *SiteHandlers) saveSession(context *gin.Context, session *sessions.Session) {
	if saveErr := session.Save(context.Request, context.Writer); saveErr != nil {
		handlers.logger.Warn(logEventSaveSiteSession, zap.Error(saveErr))
	}
}

func (handlers *SiteHandlers) pageData(showAllGallery bool, draft contact.Draft, notice contact.Notice, hasNotice bool) sitePageData {
	footerHTML, footerErr := renderSiteFooter(handlers.content, handlers.now().Year())
	if footerErr != nil {
		handlers.logger.Error(logEventRenderFooter, zap.Error(footerErr))
		footerHTML = template.HTML("")
	}

	phoneLinks := make([]phoneLink, 0, len(handlers.content.Contact.Phones))
	for _, phone := range handlers.content.Contact.Phones {
		link := phoneLink{Display: phone}
		if dialNumber := site.DialNumber(phone); dialNumber != "" {
			link.Href = template.URL("tel:" + dialNumber)
		}
		phoneLinks = append(phoneLinks, link)
	}

	var emailHref template.URL
	if handlers.content.Contact.Email != "" {
		emailHref = template.URL("mailto:" + handlers.content.Contact.Email)
	}

	galleryToggleURL := "?" + galleryQueryParameter + "=" + galleryQueryShowAll + galleryAnchor
	if showAllGallery {
		galleryToggleURL = SiteRootPath + galleryAnchor
	}

	return sitePageData{
		Content:            handlers.content,
		GalleryItems:       handlers.content.VisibleGallery(showAllGallery),
		ShowAllGallery:     showAllGallery,
		HasMoreGallery:     handlers.content.HasMoreGallery(),
		HiddenGalleryCount: handlers.content.HiddenGalleryCount(),
		GalleryToggleURL:   galleryToggleURL,
		Objectives:         model.Objectives(),
		Draft:              draft,
		Notice:             notice,
		HasNotice:          hasNotice,
		Limits: fieldLimits{
			Name:    model.ContactNameMaxLength,
			Email:   model.ContactEmailMaxLength,
			Phone:   model.ContactPhoneMaxLength,
			Subject: model.ContactSubjectMaxLength,
			Message: model.ContactMessageMaxLength,
		},
		PhoneLinks:        phoneLinks,
		EmailHref:         emailHref,
		WhatsAppURL:       handlers.content.WhatsAppURL(""),
		ContactFormAction: SiteContactFormPath,
		ChatEndpoint:      ChatAPIRoutePath,
		FooterHTML:        footerHTML,
	}
}
