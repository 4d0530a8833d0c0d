// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/application/service"
	"github.com/spicon/registration/internal/infrastructure/auth"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UploadDir    string
}

// Services bundles the application services the server exposes
type Services struct {
	Registration service.RegistrationService
	Registrar    service.RegistrarService
	Expense      service.ExpenseService
	Summary      service.SummaryService
	Import       service.ImportService
	Auth         service.AuthService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	files      port.FileStorage
	tokens     *auth.JWTService
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	services Services,
	files port.FileStorage,
	tokens *auth.JWTService,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		files:    files,
		tokens:   tokens,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
	s.router.MaxMultipartMemory = 16 << 20
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.files, s.logger)
	authed := authMiddleware(s.tokens)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// Uploaded screenshots and proof images
	if s.config.UploadDir != "" {
		s.router.Static("/uploads", s.config.UploadDir)
	}

	api := s.router.Group("/api")
	{
		// Public: the registration form and login
		api.POST("/auth/signup", handlers.Signup)
		api.POST("/auth/login", handlers.Login)
		api.POST("/registrations", handlers.Register)
		api.POST("/registrations/:id/screenshot", handlers.UploadScreenshot)

		// Committee endpoints
		api.GET("/auth/me", authed, handlers.CurrentUser)
		api.GET("/users", authed, requirePermission(auth.PermUsersManage), handlers.ListUsers)

		registrations := api.Group("/registrations", authed)
		{
			registrations.GET("", requirePermission(auth.PermRegistrationsRead), handlers.ListRegistrations)
			registrations.GET("/:id", requirePermission(auth.PermRegistrationsRead), handlers.GetRegistration)
			registrations.PUT("/:id", requirePermission(auth.PermRegistrationsWrite), handlers.UpdateRegistration)
			registrations.DELETE("/:id", requirePermission(auth.PermRegistrationsWrite), handlers.DeleteRegistration)
			registrations.POST("/:id/transactions", requirePermission(auth.PermRegistrationsWrite), handlers.AddTransaction)
			registrations.POST("/:id/approve", requirePermission(auth.PermRegistrationsApprove), handlers.ApproveRegistration)
			registrations.POST("/:id/reject", requirePermission(auth.PermRegistrationsApprove), handlers.RejectRegistration)
		}
		api.POST("/import", authed, requirePermission(auth.PermRegistrationsImport), handlers.ImportWorkbook)

		requests := api.Group("/requests", authed)
		{
			requests.POST("", requirePermission(auth.PermExpensesSubmit), handlers.SubmitRequest)
			requests.GET("", requirePermission(auth.PermExpensesRead), handlers.ListRequests)
			requests.GET("/:id", requirePermission(auth.PermExpensesRead), handlers.GetRequest)
			requests.POST("/:id/approve", requirePermission(auth.PermExpensesApprove), handlers.ApproveRequest)
			requests.POST("/:id/reject", requirePermission(auth.PermExpensesApprove), handlers.RejectRequest)
			requests.POST("/:id/pay", requirePermission(auth.PermExpensesPay), handlers.PayRequest)
			requests.POST("/:id/receive", requirePermission(auth.PermExpensesSubmit), handlers.ConfirmReceived)
			requests.POST("/:id/extra", requirePermission(auth.PermExpensesSubmit), handlers.RequestExtra)
			requests.POST("/:id/return", requirePermission(auth.PermExpensesSubmit), handlers.RequestReturn)
		}

		summary := api.Group("/summary", authed, requirePermission(auth.PermSummaryRead))
		{
			summary.GET("/payments", handlers.PaymentSummary)
			summary.GET("/expenses", handlers.ExpenseSummary)
		}
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
