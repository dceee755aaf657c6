package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/chat"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/contact"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/httpapi"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/notifications"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/site"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/storage"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/testutil"
)

const testSessionSecret = "0123456789abcdef0123456789abcdef"

type stubNotifier struct {
	mutex    sync.Mutex
	status   string
	err      error
	requests []model.ContactRequest
}

func (notifier *stubNotifier) NotifyContactRequest(ctx context.Context, request model.ContactRequest) (string, error) {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	notifier.requests = append(notifier.requests, request)
	return notifier.status, notifier.err
}

func (notifier *stubNotifier) calls() []model.ContactRequest {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	result := make([]model.ContactRequest, len(notifier.requests))
	copy(result, notifier.requests)
	return result
}

type failingPersister struct{}

func (failingPersister) CreateContactRequest(context.Context, *model.ContactRequest) error {
	return errors.New("database unavailable")
}

func (failingPersister) UpdateNotificationStatus(context.Context, string, string) error {
	return errors.New("database unavailable")
}

type blockingPersister struct {
	mutex       sync.Mutex
	createCalls int
	started     chan struct{}
	release     chan struct{}
}

func newBlockingPersister(capacity int) *blockingPersister {
	return &blockingPersister{
		started: make(chan struct{}, capacity),
		release: make(chan struct{}),
	}
}

func (persister *blockingPersister) CreateContactRequest(ctx context.Context, request *model.ContactRequest) error {
	persister.mutex.Lock()
	persister.createCalls++
	persister.mutex.Unlock()
	persister.started <- struct{}{}
	<-persister.release
	request.ID = storage.NewID()
	return nil
}

func (persister *blockingPersister) UpdateNotificationStatus(context.Context, string, string) error {
	return nil
}

func (persister *blockingPersister) calls() int {
	persister.mutex.Lock()
	defer persister.mutex.Unlock()
	return persister.createCalls
}

type stubEmailProvider struct {
	mutex    sync.Mutex
	messages []notifications.EmailMessage
}

func (provider *stubEmailProvider) SendEmail(ctx context.Context, message notifications.EmailMessage) (string, error) {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.messages = append(provider.messages, message)
	return "email-" + message.Tag, nil
}

func (provider *stubEmailProvider) sentCount() int {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	return len(provider.messages)
}

type appHarness struct {
	router   *gin.Engine
	database *gorm.DB
	notifier *stubNotifier
	content  site.Content
}

func buildAppHarness(testingT *testing.T, persister contact.Persister) appHarness {
	testingT.Helper()

	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	database := testutil.OpenMigratedDatabase(testingT)
	if persister == nil {
		persister = storage.NewContactRequestStore(database)
	}
	notifier := &stubNotifier{status: model.NotificationStatusDelivered}

	content, contentErr := site.DefaultContent()
	require.NoError(testingT, contentErr)

	siteHandlers, siteErr := httpapi.NewSiteHandlers(logger, content, httpapi.NewSessionStore([]byte(testSessionSecret), false), persister, notifier)
	require.NoError(testingT, siteErr)
	contactHandlers := httpapi.NewContactAPIHandlers(logger, persister, notifier)
	chatHandlers := httpapi.NewChatHandlers(logger, chat.NewContentResponder(content), content)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))
	router.GET(httpapi.SiteRootPath, siteHandlers.RenderHome)
	router.POST(httpapi.SiteContactFormPath, siteHandlers.SubmitContactForm)
	router.GET(httpapi.HealthPath, httpapi.Health)
	router.POST(httpapi.ContactAPIRoutePath, contactHandlers.CreateContactRequest)
	router.POST(httpapi.ChatAPIRoutePath, chatHandlers.Reply)
	router.GET(httpapi.ChatWhatsAppRoutePath, chatHandlers.RedirectToWhatsApp)

	return appHarness{router: router, database: database, notifier: notifier, content: content}
}

func buildDispatchRouter(dispatcher httpapi.ContactDispatcher, bearerToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := httpapi.NewDispatchHandlers(zap.NewNop(), dispatcher)
	group := router.Group("/")
	group.Use(httpapi.DispatchCORS())
	group.Use(httpapi.BearerTokenMiddleware(bearerToken))
	group.OPTIONS(httpapi.DispatchRoutePath, handlers.Preflight)
	group.POST(httpapi.DispatchRoutePath, handlers.SendContactNotification)
	return router
}

func performJSONRequest(testingT *testing.T, router *gin.Engine, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var requestBody io.Reader
	if body != nil {
		if raw, isRaw := body.(string); isRaw {
			requestBody = strings.NewReader(raw)
		} else {
			encoded, encodeErr := json.Marshal(body)
			require.NoError(testingT, encodeErr)
			requestBody = bytes.NewReader(encoded)
		}
	}
	request := httptest.NewRequest(method, path, requestBody)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		request.Header.Set(name, value)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func performFormRequest(router *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func performPageRequest(router *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// mergeCookies returns previous updated with the cookies set by recorder.
func mergeCookies(previous []*http.Cookie, recorder *httptest.ResponseRecorder) []*http.Cookie {
	byName := make(map[string]*http.Cookie)
	var order []string
	for _, cookie := range previous {
		if _, seen := byName[cookie.Name]; !seen {
			order = append(order, cookie.Name)
		}
		byName[cookie.Name] = cookie
	}
	for _, cookie := range recorder.Result().Cookies() {
		if _, seen := byName[cookie.Name]; !seen {
			order = append(order, cookie.Name)
		}
		byName[cookie.Name] = cookie
	}
	merged := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		merged = append(merged, byName[name])
	}
	return merged
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	testingT.Helper()
	var body map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func validContactForm() url.Values {
	return url.Values{
		"name":      {"Awa Touré"},
		"email":     {"awa@example.com"},
		"phone":     {"+228 90 00 00 00"},
		"objective": {model.ObjectiveTraining},
		"subject":   {"Demande de formation"},
		"message":   {"Je souhaite une formation en pisciculture."},
	}
}

func countContactRequests(testingT *testing.T, database *gorm.DB) int64 {
	testingT.Helper()
	var count int64
	require.NoError(testingT, database.Model(&model.ContactRequest{}).Count(&count).Error)
	return count
}
