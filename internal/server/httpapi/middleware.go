package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/server/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// gin context keys
const (
	requestIDKey   = "request_id"
	callerEmailKey = "caller_email"
)

const maxRequestIDLen = 128

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		s.fail(c, fmt.Errorf("%w: panic: %v", common.ErrorInternal, rec))
	})
}

func securityHeaders(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		if production {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		c.Next()
	}
}

// corsMiddleware allows the configured browser origins with credentials.
// A "*" entry opens the API to every origin without credentials. It
// returns nil when no origin is configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type", common.AuthorizationHeaderName, common.RequestIDHeaderName},
		ExposeHeaders:             []string{common.RequestIDHeaderName},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}

	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}

// authenticate resolves the bearer token into the caller's email. With
// token enforcement off it lets every request through anonymously.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.opts.RequireToken {
			c.Next()
			return
		}

		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			s.fail(c, fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized))
			return
		}

		email, err := auth.GetEmailFromToken(token, s.opts.SecretKey)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.Set(callerEmailKey, email)
		c.Next()
	}
}

// requireAdmin rejects callers that are not administrators when token
// enforcement is on.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.opts.RequireToken {
			c.Next()
			return
		}

		if err := s.accounts.CheckAdminRole(c.Request.Context(), c.GetString(callerEmailKey)); err != nil {
			if statusFor(err) != http.StatusInternalServerError {
				err = fmt.Errorf("%w: administrator token required", common.ErrForbidden)
			}
			s.fail(c, err)
			return
		}
		c.Next()
	}
}

// authorizeFor checks that the caller may act on target: itself, or anyone
// when the caller is an administrator. It writes the failure response.
func (s *Server) authorizeFor(c *gin.Context, target string) bool {
	if !s.opts.RequireToken {
		return true
	}

	caller := c.GetString(callerEmailKey)
	if target == "" || caller == target {
		return true
	}

	if err := s.accounts.CheckAdminRole(c.Request.Context(), caller); err != nil {
		if statusFor(err) != http.StatusInternalServerError {
			err = fmt.Errorf("%w: token does not grant access to %s", common.ErrForbidden, target)
		}
		s.fail(c, err)
		return false
	}
	return true
}
