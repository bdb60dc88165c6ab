package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/effect-crf-validators/internal/audit"
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/middleware"
	"github.com/effect-crf-validators/internal/service"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// summaryLimit caps how many records the summary endpoint aggregates.
const summaryLimit = 10000

// HealthCheck checks one dependency of the server.
type HealthCheck func(ctx context.Context) error

// EligibilityCacheAdmin is the administrative side of the eligibility resolver.
type EligibilityCacheAdmin interface {
	InvalidateCache(ctx context.Context, subject string) error
	GetCacheStats() service.CacheStats
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	validator     *service.ValidationService
	store         audit.Store
	eligibility   EligibilityCacheAdmin
	checks        map[string]HealthCheck
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance. store may be nil when
// auditing is disabled; the audit endpoints then answer 404.
func NewServer(
	configManager domain.ConfigManager,
	logger *logrus.Logger,
	validator *service.ValidationService,
	store audit.Store,
) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(middleware.RateLimit(limiter))
	}

	server := &Server{
		configManager: configManager,
		logger:        logger,
		validator:     validator,
		store:         store,
		checks:        make(map[string]HealthCheck),
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// AddHealthCheck registers a dependency check reported by /health.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// SetEligibilityCache enables the eligibility cache endpoints.
func (s *Server) SetEligibilityCache(cache EligibilityCacheAdmin) {
	s.eligibility = cache
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.WithField("addr", addr).Info("HTTP server listening")

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/forms", s.handleListForms)
		v1.POST("/forms/:form/validate", s.handleValidate)
		v1.POST("/validate/batch", s.handleValidateBatch)

		v1.GET("/audit", s.handleListAudit)
		v1.GET("/audit/summary", s.handleAuditSummary)
		v1.GET("/audit/export", s.handleAuditExport)
		v1.GET("/audit/:id", s.handleGetAudit)

		v1.GET("/eligibility/cache/stats", s.handleEligibilityCacheStats)
		v1.DELETE("/eligibility/:subject/cache", s.handleInvalidateEligibility)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(c.Request.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"checks":    checks,
	})
}

type formInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	RequireVisit bool   `json:"require_visit"`
}

func (s *Server) handleListForms(c *gin.Context) {
	rules := s.validator.Forms()
	forms := make([]formInfo, 0, len(rules))
	for _, rs := range rules {
		forms = append(forms, formInfo{Name: rs.Name, Title: rs.Title, RequireVisit: rs.RequireVisit})
	}
	c.JSON(http.StatusOK, gin.H{"forms": forms})
}

// handleValidate validates one submission. A protocol violation is a 200
// with valid false; error statuses are reserved for requests that could not
// be validated at all.
func (s *Server) handleValidate(c *gin.Context) {
	var sub domain.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err)
		return
	}
	sub.Form = c.Param("form")

	result, err := s.validator.Validate(c.Request.Context(), &sub, middleware.GetCorrelationID(c))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type batchRequest struct {
	Submissions []*domain.Submission `json:"submissions"`
}

func (s *Server) handleValidateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err)
		return
	}

	items, err := s.validator.ValidateBatch(c.Request.Context(), req.Submissions, middleware.GetCorrelationID(c))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(items),
		"results": items,
	})
}

func (s *Server) handleListAudit(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid query parameters", err)
		return
	}

	ctx := c.Request.Context()
	records, err := s.store.List(ctx, filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "Failed to list audit records", err)
		return
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "Failed to count audit records", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (s *Server) handleGetAudit(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "Failed to get audit record", err)
		return
	}
	if rec == nil {
		s.respondError(c, http.StatusNotFound, domain.ErrInvalidInput, "Audit record not found", nil)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleAuditSummary(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid query parameters", err)
		return
	}
	if c.Query("limit") == "" {
		filter.Limit = summaryLimit
	}

	records, err := s.store.List(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "Failed to list audit records", err)
		return
	}
	summary, err := audit.Summarize(records)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Failed to summarize audit records", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleAuditExport(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid query parameters", err)
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="audit-export.json"`)
	if err := s.store.ExportJSON(c.Request.Context(), filter, c.Writer); err != nil {
		s.logger.WithError(err).Error("Audit export failed")
		if !c.Writer.Written() {
			s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "Failed to export audit records", err)
		}
	}
}

func (s *Server) handleEligibilityCacheStats(c *gin.Context) {
	if !s.requireEligibilityCache(c) {
		return
	}
	c.JSON(http.StatusOK, s.eligibility.GetCacheStats())
}

// handleInvalidateEligibility drops a subject from every cache tier so a
// corrected screening record is read on the next validation.
func (s *Server) handleInvalidateEligibility(c *gin.Context) {
	if !s.requireEligibilityCache(c) {
		return
	}
	subject := strings.TrimSpace(c.Param("subject"))
	if subject == "" {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Subject identifier is required", nil)
		return
	}
	if err := s.eligibility.InvalidateCache(c.Request.Context(), subject); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrContextUnavailable, "Failed to invalidate eligibility cache", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) requireEligibilityCache(c *gin.Context) bool {
	if s.eligibility != nil {
		return true
	}
	s.respondError(c, http.StatusNotFound, domain.ErrInvalidInput, "Eligibility cache is not configured", nil)
	return false
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.store != nil {
		return true
	}
	s.respondError(c, http.StatusNotFound, domain.ErrInvalidInput, "Auditing is disabled", nil)
	return false
}

// handleServiceError maps validation service failures to HTTP statuses.
func (s *Server) handleServiceError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, validationErr.Error(), nil)
	case errors.Is(err, service.ErrBatchTooLarge):
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Batch too large", err)
	case errors.Is(err, domain.ErrUnknownForm):
		s.respondError(c, http.StatusNotFound, domain.ErrUnknownFormCode, "Unknown form", err)
	case errors.Is(err, domain.ErrNotFound):
		s.respondError(c, http.StatusUnprocessableEntity, domain.ErrContextUnavailable, "Subject context not found", err)
	case errors.Is(err, domain.ErrNoProvider),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrContextUnavailable, "Validation context unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(c, http.StatusGatewayTimeout, domain.ErrInternalServer, "Validation timed out", err)
	default:
		s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Validation failed", err)
	}
}

func (s *Server) respondError(c *gin.Context, status int, code, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"correlation_id": middleware.GetCorrelationID(c),
			"code":           code,
		}).WithError(err).Error(message)
	}
	c.AbortWithStatusJSON(status, domain.NewServiceError(code, message, details, middleware.GetCorrelationID(c)))
}

// parseFilter reads audit filters from the query string.
func parseFilter(c *gin.Context) (audit.Filter, error) {
	filter := audit.Filter{
		Form:              c.Query("form"),
		SubjectIdentifier: c.Query("subject"),
		VisitCode:         c.Query("visit_code"),
	}

	if v := c.Query("valid"); v != "" {
		valid, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("valid: %w", err)
		}
		filter.Valid = &valid
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			if since, err = time.Parse(domain.DateLayout, v); err != nil {
				return filter, fmt.Errorf("since: expected RFC3339 or %s", domain.DateLayout)
			}
		}
		filter.Since = since
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	if filter.Limit == 0 {
		filter.Limit = audit.DefaultListLimit
	}
	return filter, nil
}

// corsMiddleware adds CORS headers for the configured origins.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[strings.TrimSuffix(origin, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+middleware.CorrelationIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.CorrelationIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
