package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/contact"
)

func TestIPRateLimiterResetsOnNewWindow(testingT *testing.T) {
	currentTime := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(30*time.Second, 2)
	limiter.now = func() time.Time { return currentTime }

	require.False(testingT, limiter.isRateLimited("192.0.2.1"))
	require.False(testingT, limiter.isRateLimited("192.0.2.1"))
	require.True(testingT, limiter.isRateLimited("192.0.2.1"))
	require.False(testingT, limiter.isRateLimited("192.0.2.2"))

	currentTime = currentTime.Add(30 * time.Second)
	require.False(testingT, limiter.isRateLimited("192.0.2.1"))
}

func TestIPRateLimiterDefaults(testingT *testing.T) {
	limiter := newIPRateLimiter(0, 0)
	require.Equal(testingT, defaultRateWindow, limiter.window)
	require.Equal(testingT, defaultMaxRequestsPerIPPerWindow, limiter.limit)
}

func TestControllerRegistryReusesControllerPerVisitor(testingT *testing.T) {
	created := 0
	registry := newControllerRegistry(func() *contact.Controller {
		created++
		return contact.NewController(nil, nil, zap.NewNop())
	})

	first := registry.acquire("visitor-a")
	again := registry.acquire("visitor-a")
	other := registry.acquire("visitor-b")

	require.Same(testingT, first, again)
	require.NotSame(testingT, first, other)
	require.Equal(testingT, 2, created)
	require.Equal(testingT, 2, registry.size())
}

func TestControllerRegistrySweepsIdleEntries(testingT *testing.T) {
	currentTime := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	registry := newControllerRegistry(func() *contact.Controller {
		return contact.NewController(nil, nil, zap.NewNop())
	})
	registry.now = func() time.Time { return currentTime }

	registry.acquire("visitor-a")
	currentTime = currentTime.Add(controllerIdleTTL + time.Minute)
	registry.acquire("visitor-b")

	require.Equal(testingT, 1, registry.size())
}
