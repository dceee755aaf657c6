package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/chat"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/contact"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/httpapi"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/notifications"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/site"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/storage"
)

const (
	dispatchClientTimeoutMargin = 5 * time.Second
	logEventProviderMissing     = "email_provider_not_configured"
	logFieldCredentialKey       = "credential_key"
	logEventRemoteDispatcher    = "remote_dispatcher_configured"
	logFieldDispatchURL         = "dispatch_url"
)

var errMissingDatabase = errors.New("site routes require a database")

// buildRouter assembles the gin engine for the configured serve mode.
func buildRouter(logger *zap.Logger, serverConfig ServerConfig, database *gorm.DB) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))
	router.GET(httpapi.HealthPath, httpapi.Health)

	var dispatcher *notifications.Dispatcher
	if serverConfig.ServeMode.servesDispatcher() || serverConfig.DispatchURL == "" {
		localDispatcher, dispatcherErr := newDispatcher(logger, serverConfig)
		if dispatcherErr != nil {
			return nil, dispatcherErr
		}
		dispatcher = localDispatcher
	}

	if serverConfig.ServeMode.servesDispatcher() {
		registerDispatcherRoutes(router, httpapi.NewDispatchHandlers(logger, dispatcher), serverConfig.DispatchToken)
	}

	if serverConfig.ServeMode.servesSite() {
		if database == nil {
			return nil, errMissingDatabase
		}
		notifier, notifierErr := newContactNotifier(logger, serverConfig, dispatcher)
		if notifierErr != nil {
			return nil, notifierErr
		}
		if siteErr := registerSiteRoutes(router, logger, serverConfig, storage.NewContactRequestStore(database), notifier); siteErr != nil {
			return nil, siteErr
		}
	}

	return router, nil
}

func registerSiteRoutes(router *gin.Engine, logger *zap.Logger, serverConfig ServerConfig, persister contact.Persister, notifier contact.Notifier) error {
	content, contentErr := site.DefaultContent()
	if contentErr != nil {
		return contentErr
	}

	sessionStore := httpapi.NewSessionStore(serverConfig.SessionSecret, serverConfig.SecureCookies)
	siteHandlers, siteErr := httpapi.NewSiteHandlers(logger, content, sessionStore, persister, notifier)
	if siteErr != nil {
		return siteErr
	}
	contactHandlers := httpapi.NewContactAPIHandlers(logger, persister, notifier)
	chatHandlers := httpapi.NewChatHandlers(logger, chat.NewContentResponder(content), content)

	router.GET(httpapi.SiteRootPath, siteHandlers.RenderHome)
	router.POST(httpapi.SiteContactFormPath, siteHandlers.SubmitContactForm)
	router.POST(httpapi.ContactAPIRoutePath, contactHandlers.CreateContactRequest)
	router.POST(httpapi.ChatAPIRoutePath, chatHandlers.Reply)
	router.GET(httpapi.ChatWhatsAppRoutePath, chatHandlers.RedirectToWhatsApp)
	return nil
}

func registerDispatcherRoutes(router *gin.Engine, dispatchHandlers *httpapi.DispatchHandlers, bearerToken string) {
	dispatchGroup := router.Group("/")
	dispatchGroup.Use(httpapi.DispatchCORS())
	dispatchGroup.Use(httpapi.BearerTokenMiddleware(bearerToken))
	dispatchGroup.OPTIONS(httpapi.DispatchRoutePath, dispatchHandlers.Preflight)
	dispatchGroup.POST(httpapi.DispatchRoutePath, dispatchHandlers.SendContactNotification)
}

// newDispatcher builds the local dispatcher. A missing credential is logged and reported per request instead of failing startup.
func newDispatcher(logger *zap.Logger, serverConfig ServerConfig) (*notifications.Dispatcher, error) {
	providerConfig := notifications.ProviderConfig{
		Name:                 serverConfig.EmailProvider,
		ResendAPIKey:         serverConfig.ResendAPIKey,
		PostmarkServerToken:  serverConfig.PostmarkServerToken,
		PostmarkAccountToken: serverConfig.PostmarkAccountToken,
	}

	provider, providerErr := notifications.NewEmailProvider(providerConfig)
	switch {
	case errors.Is(providerErr, notifications.ErrMissingCredential):
		logger.Warn(logEventProviderMissing, zap.String(logFieldCredentialKey, providerConfig.CredentialKey()))
		provider = nil
	case providerErr != nil:
		return nil, fmt.Errorf("%s: %w", flagNameEmailProvider, providerErr)
	}

	return notifications.NewDispatcher(logger, provider, notifications.DispatcherConfig{
		TeamRecipient:      serverConfig.ContactTeamEmail,
		TeamSender:         serverConfig.ContactTeamSender,
		ConfirmationSender: serverConfig.ContactConfirmationSender,
		CredentialKey:      providerConfig.CredentialKey(),
		SendTimeout:        serverConfig.EmailSendTimeout,
	}), nil
}

// newContactNotifier calls the remote dispatcher in web mode when one is configured and the local dispatcher otherwise.
func newContactNotifier(logger *zap.Logger, serverConfig ServerConfig, dispatcher *notifications.Dispatcher) (contact.Notifier, error) {
	if serverConfig.ServeMode == ServeModeWeb && serverConfig.DispatchURL != "" {
		client, clientErr := notifications.NewClient(notifications.ClientConfig{
			Endpoint:  serverConfig.DispatchURL,
			AuthToken: serverConfig.DispatchToken,
			Timeout:   serverConfig.EmailSendTimeout + dispatchClientTimeoutMargin,
		})
		if clientErr != nil {
			return nil, clientErr
		}
		logger.Info(logEventRemoteDispatcher, zap.String(logFieldDispatchURL, serverConfig.DispatchURL))
		return client, nil
	}
	return notifications.NewLocalNotifier(dispatcher), nil
}
