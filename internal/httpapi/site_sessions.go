package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/contact"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/storage"
)

const (
	siteSessionName        = "aquabrain_site"
	sessionKeyVisitorID    = "visitor_id"
	sessionKeyContactDraft = "contact_draft"
	sessionKeyNotice       = "contact_notice"
	siteSessionMaxAge      = 24 * time.Hour
	controllerIdleTTL      = 30 * time.Minute
)

// NewSessionStore returns the cookie store that keeps the contact draft and toast between requests.
func NewSessionStore(secret []byte, secureCookies bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(siteSessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func extractString(value interface{}) string {
	if typed, ok := value.(string); ok {
		return typed
	}
	return ""
}

func decodeSessionDraft(logger *zap.Logger, session *sessions.Session) contact.Draft {
	encoded := extractString(session.Values[sessionKeyContactDraft])
	if encoded == "" {
		return contact.Draft{}
	}
	var draft contact.Draft
	if decodeErr := json.Unmarshal([]byte(encoded), &draft); decodeErr != nil {
		logger.Warn("decode_session_draft", zap.Error(decodeErr))
		return contact.Draft{}
	}
	return draft
}

func storeSessionDraft(session *sessions.Session, draft contact.Draft) {
	if draft.IsEmpty() {
		delete(session.Values, sessionKeyContactDraft)
		return
	}
	encoded, encodeErr := json.Marshal(draft)
	if encodeErr != nil {
		return
	}
	session.Values[sessionKeyContactDraft] = string(encoded)
}

// popSessionNotice returns the pending toast and removes it from the session.
func popSessionNotice(session *sessions.Session) (contact.Notice, bool) {
	encoded := extractString(session.Values[sessionKeyNotice])
	if encoded == "" {
		return contact.Notice{}, false
	}
	delete(session.Values, sessionKeyNotice)
	var notice contact.Notice
	if json.Unmarshal([]byte(encoded), &notice) != nil || notice.IsZero() {
		return contact.Notice{}, false
	}
	return notice, true
}

func storeSessionNotice(session *sessions.Session, notice contact.Notice) {
	encoded, encodeErr := json.Marshal(notice)
	if encodeErr != nil {
		return
	}
	session.Values[sessionKeyNotice] = string(encoded)
}

// ensureVisitorID returns the session's visitor identifier, assigning one when absent.
// The boolean reports whether the session was changed and needs saving.
func ensureVisitorID(session *sessions.Session) (string, bool) {
	if visitorID := extractString(session.Values[sessionKeyVisitorID]); visitorID != "" {
		return visitorID, false
	}
	visitorID := storage.NewID()
	session.Values[sessionKeyVisitorID] = visitorID
	return visitorID, true
}

type controllerEntry struct {
	controller *contact.Controller
	lastUsed   time.Time
}

// controllerRegistry keeps one contact.Controller per visitor session so that concurrent submissions
// from the same visitor share a single in-flight guard.
type controllerRegistry struct {
	mutex   sync.Mutex
	entries map[string]*controllerEntry
	idleTTL time.Duration
	now     func() time.Time
	factory func() *contact.Controller
}

func newControllerRegistry(factory func() *contact.Controller) *controllerRegistry {
	return &controllerRegistry{
		entries: make(map[string]*controllerEntry),
		idleTTL: controllerIdleTTL,
		now:     time.Now,
		factory: factory,
	}
}

func (registry *controllerRegistry) acquire(visitorID string) *contact.Controller {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	currentTime := registry.now()
	for key, entry := range registry.entries {
		if currentTime.Sub(entry.lastUsed) > registry.idleTTL && !entry.controller.Submitting() {
			delete(registry.entries, key)
		}
	}

	entry, found := registry.entries[visitorID]
	if !found {
		entry = &controllerEntry{controller: registry.factory()}
		registry.entries[visitorID] = entry
	}
	entry.lastUsed = currentTime
	return entry.controller
}

func (registry *controllerRegistry) size() int {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	return len(registry.entries)
}
