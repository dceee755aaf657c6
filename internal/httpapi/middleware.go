package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	jsonKeyError          = "error"
	bearerPrefix          = "Bearer "
	errorValueMissingAuth = "missing_bearer"
	errorValueForbidden   = "forbidden"
)

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		start := time.Now()
		context.Next()
		logger.Info("http",
			zap.String("method", context.Request.Method),
			zap.String("path", context.Request.URL.Path),
			zap.Int("status", context.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", context.ClientIP()),
			zap.String("ua", context.Request.UserAgent()),
		)
	}
}

// BearerTokenMiddleware requires "Authorization: Bearer <expectedToken>" when expectedToken is set.
// An empty expectedToken leaves the route open. Preflight requests always pass.
func BearerTokenMiddleware(expectedToken string) gin.HandlerFunc {
	trimmedToken := strings.TrimSpace(expectedToken)
	return func(context *gin.Context) {
		if trimmedToken == "" || context.Request.Method == http.MethodOptions {
			context.Next()
			return
		}
		authorizationHeader := strings.TrimSpace(context.GetHeader("Authorization"))
		if !strings.HasPrefix(authorizationHeader, bearerPrefix) {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueMissingAuth})
			return
		}
		provided := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, bearerPrefix))
		if provided != trimmedToken {
			context.AbortWithStatusJSON(http.StatusForbidden, gin.H{jsonKeyError: errorValueForbidden})
			return
		}
		context.Next()
	}
}
