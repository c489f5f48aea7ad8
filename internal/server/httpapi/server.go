// Package httpapi exposes the account and progress services as a JSON REST
// API built on gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/dmitrijs2005/learnprogress/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AccountService is the account surface the handlers call.
type AccountService interface {
	Register(ctx context.Context, email, username, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdateAccount(ctx context.Context, email, username, currentPassword, newPassword string) error
	GetAccount(ctx context.Context, email string) (models.AccountView, error)
	ListAccounts(ctx context.Context) ([]*models.AccountSummary, error)
	CheckAdminRole(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context, email string) error
}

// ProgressService is the progress surface the handlers call.
type ProgressService interface {
	UpsertProgress(ctx context.Context, upd models.ProgressUpdate) (bool, error)
	GetProgress(ctx context.Context, email string) (*models.Progress, error)
	ResetProgress(ctx context.Context, email string) error
	GetCompletionStatus(ctx context.Context, email string) (models.CompletionStatus, error)
}

// ReportExporter uploads account reports.
type ReportExporter interface {
	ExportReport(ctx context.Context) (*services.ExportedReport, error)
}

// Pinger reports store reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tune the router.
type Options struct {
	// Production hides internal error details from responses.
	Production bool
	// RequireToken enforces bearer tokens on every non-public route.
	RequireToken bool
	// SecretKey verifies bearer tokens.
	SecretKey   []byte
	CORSOrigins []string
}

// Server holds the handler dependencies.
type Server struct {
	accounts AccountService
	progress ProgressService
	reports  ReportExporter
	store    Pinger
	opts     Options
	log      logging.Logger
}

// NewServer wires the handlers. reports may be nil, in which case the
// export route is not registered.
func NewServer(accounts AccountService, progress ProgressService, reports ReportExporter, store Pinger, opts Options, log logging.Logger) *Server {
	return &Server{
		accounts: accounts,
		progress: progress,
		reports:  reports,
		store:    store,
		opts:     opts,
		log:      log.With("module", "http"),
	}
}

// Handler builds the gin engine with middleware and routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		s.requestID(),
		s.accessLog(),
		s.recovery(),
		securityHeaders(s.opts.Production),
	)
	if mw := corsMiddleware(s.opts.CORSOrigins); mw != nil {
		r.Use(mw)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "method not allowed"})
	})

	// public
	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.GET("/health", s.health)

	auth := r.Group("/", s.authenticate())

	auth.GET("/getUserData", s.getUserData)
	auth.POST("/updateAccount", s.updateAccount)
	auth.GET("/checkAdminRole", s.checkAdminRole)

	admin := auth.Group("/", s.requireAdmin())
	admin.GET("/getAllUsers", s.getAllUsers)
	admin.DELETE("/deleteUser", s.deleteUser)
	if s.reports != nil {
		admin.POST("/exportReport", s.exportReport)
	}

	progress := auth.Group("/progress")
	progress.POST("/update", s.updateProgress)
	progress.GET("", s.getProgress)
	progress.POST("/reset", s.resetProgress)
	progress.GET("/completion", s.getCompletionStatus)

	return r
}
