package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// health always answers 200; the body says whether the store responds.
func (s *Server) health(c *gin.Context) {
	status, database := "ok", "ok"

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if s.store == nil {
		database = "unknown"
	} else if err := s.store.PingContext(ctx); err != nil {
		s.log.Warn(ctx, "health check: store unreachable", "error", err)
		status, database = "degraded", "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "database": database})
}

func (s *Server) exportReport(c *gin.Context) {
	res, err := s.reports.ExportReport(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Report exported successfully", "key": res.Key, "url": res.URL})
}
