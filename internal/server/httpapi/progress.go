package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/gin-gonic/gin"
)

type progressUpdateRequest struct {
	UserEmail string `json:"user_email"`
	Score     int    `json:"score"`
	Drag      bool   `json:"drag"`
	Fill      bool   `json:"fill"`
	Mult      bool   `json:"mult"`
}

type progressResetRequest struct {
	Email string `json:"email"`
}

func (s *Server) updateProgress(c *gin.Context) {
	var req progressUpdateRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.authorizeFor(c, req.UserEmail) {
		return
	}

	created, err := s.progress.UpsertProgress(c.Request.Context(), models.ProgressUpdate{
		UserEmail: req.UserEmail,
		Score:     req.Score,
		Drag:      req.Drag,
		Fill:      req.Fill,
		Mult:      req.Mult,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Progress created successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Progress updated successfully"})
}

func (s *Server) getProgress(c *gin.Context) {
	email := c.Query("email")
	if !s.authorizeFor(c, email) {
		return
	}

	p, err := s.progress.GetProgress(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (s *Server) resetProgress(c *gin.Context) {
	var req progressResetRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.authorizeFor(c, req.Email) {
		return
	}

	if err := s.progress.ResetProgress(c.Request.Context(), req.Email); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Progress reset successfully"})
}

func (s *Server) getCompletionStatus(c *gin.Context) {
	email := c.Query("email")
	if !s.authorizeFor(c, email) {
		return
	}

	st, err := s.progress.GetCompletionStatus(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}
