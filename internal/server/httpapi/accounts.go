package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !s.bindJSON(c, &req) {
		return
	}

	account, err := s.accounts.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userEmail": account.Email})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !s.bindJSON(c, &req) {
		return
	}

	token, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

func (s *Server) getUserData(c *gin.Context) {
	email := c.Query("email")
	if !s.authorizeFor(c, email) {
		return
	}

	view, err := s.accounts.GetAccount(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) updateAccount(c *gin.Context) {
	email := c.Query("email")
	if !s.authorizeFor(c, email) {
		return
	}

	var req updateAccountRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if err := s.accounts.UpdateAccount(c.Request.Context(), email, req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (s *Server) getAllUsers(c *gin.Context) {
	list, err := s.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (s *Server) checkAdminRole(c *gin.Context) {
	email := c.Query("email")
	if !s.authorizeFor(c, email) {
		return
	}

	if err := s.accounts.CheckAdminRole(c.Request.Context(), email); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Admin role verified", "isAdmin": true})
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.accounts.DeleteAccount(c.Request.Context(), c.Query("email")); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
