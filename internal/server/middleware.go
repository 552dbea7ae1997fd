package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/rentaldesk/internal/auth/domain"
	"github.com/smallbiznis/rentaldesk/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	contextAdminIDKey = "admin_id"
	bearerPrefix      = "bearer "
)

// AdminRequired verifies the bearer token and exposes its claims on the
// request context.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(authdomain.WithClaims(c.Request.Context(), *claims))
		c.Set(contextAdminIDKey, claims.AdminID.String())
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// SubmissionRateLimit throttles public form posts per client IP. It is a
// no-op when no limiter is configured.
func (s *Server) SubmissionRateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		decision := s.limiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if decision.Allowed {
			c.Next()
			return
		}

		logger.FromContext(c.Request.Context()).Warn("submission rate limit exceeded",
			zap.String("scope", scope),
			zap.String("route", c.FullPath()),
		)
		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		AbortWithError(c, ErrRateLimited)
	}
}
