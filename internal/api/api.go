// Package api serves the vocabulary REST API consumed by the admin UI:
// languages and their vocabulary under /api, JSON in and out.
package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tphakala/vocab-manager/internal/api/middleware"
	"github.com/tphakala/vocab-manager/internal/datastore"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/events"
	"github.com/tphakala/vocab-manager/internal/logger"
)

// RoutePrefix is the API root.
const RoutePrefix = "/api"

// Controller owns the API routes.
type Controller struct {
	Echo   *echo.Echo
	Group  *echo.Group
	DS     datastore.Interface
	events events.Publisher
	log    logger.Logger

	rateLimit *middleware.RateLimitConfig
}

// Option customizes a Controller.
type Option func(*Controller)

// WithEvents publishes a change event after every successful mutation.
func WithEvents(p events.Publisher) Option {
	return func(c *Controller) { c.events = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithRateLimit enables per-client rate limiting.
func WithRateLimit(cfg middleware.RateLimitConfig) Option {
	return func(c *Controller) { c.rateLimit = &cfg }
}

// New registers the API routes on e.
func New(e *echo.Echo, ds datastore.Interface, opts ...Option) *Controller {
	c := &Controller{Echo: e, DS: ds}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Global("api")
	}
	c.log = c.log.Module("api")

	var groupMiddleware []echo.MiddlewareFunc
	if c.rateLimit != nil {
		groupMiddleware = append(groupMiddleware, middleware.NewRateLimiter(*c.rateLimit))
	}
	c.Group = e.Group(RoutePrefix, groupMiddleware...)
	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.Group.GET("/languages", c.ListLanguages)
	c.Group.POST("/languages", c.CreateLanguage)
	c.Group.PUT("/languages/:id", c.UpdateLanguage)
	c.Group.DELETE("/languages/:id", c.DeleteLanguage)

	c.Group.GET("/languages/:id/vocabulary", c.ListVocabulary)
	c.Group.POST("/languages/:id/vocabulary", c.CreateVocabulary)
	c.Group.PUT("/languages/:id/vocabulary/:wordId", c.UpdateVocabulary)
	c.Group.DELETE("/languages/:id/vocabulary/:wordId", c.DeleteVocabulary)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an ErrorResponse with a fresh correlation id.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString()[:8],
	}
}

// HandleError logs err and writes it as JSON with code.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)

	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	log := c.log.WithContext(ctx.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Info("API request rejected", fields...)
	}

	return ctx.JSON(code, resp)
}

// handleStoreError maps datastore error categories onto status codes
func (c *Controller) handleStoreError(ctx echo.Context, err error, message string) error {
	switch {
	case errors.IsNotFound(err):
		return c.HandleError(ctx, err, message, http.StatusNotFound)
	case errors.IsValidation(err):
		return c.HandleError(ctx, err, message, http.StatusBadRequest)
	case errors.IsCategory(err, errors.CategoryConflict):
		return c.HandleError(ctx, err, message, http.StatusConflict)
	default:
		return c.HandleError(ctx, err, message, http.StatusInternalServerError)
	}
}

func (c *Controller) publish(resource, action string, id, languageID int64, data any) {
	if c.events == nil {
		return
	}
	if !c.events.TryPublish(events.NewChangeEvent(resource, action, id, languageID, data)) {
		c.log.Debug("change event not published",
			logger.String("resource", resource),
			logger.String("action", action))
	}
}
