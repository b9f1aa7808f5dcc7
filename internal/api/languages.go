package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/vocab-manager/internal/events"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
)

// DeleteResponse is returned by successful deletes.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ListLanguages handles GET /api/languages.
func (c *Controller) ListLanguages(ctx echo.Context) error {
	langs, err := c.DS.ListLanguages(ctx.Request().Context())
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list languages")
	}
	return ctx.JSON(http.StatusOK, langs)
}

// CreateLanguage handles POST /api/languages.
func (c *Controller) CreateLanguage(ctx echo.Context) error {
	var fields model.LanguageFields
	if err := ctx.Bind(&fields); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if err := fields.Validate(); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	lang, err := c.DS.CreateLanguage(ctx.Request().Context(), fields)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to create language")
	}
	c.publish(events.ResourceLanguage, events.ActionCreated, lang.ID, lang.ID, lang)
	return ctx.JSON(http.StatusCreated, lang)
}

// UpdateLanguage handles PUT /api/languages/:id.
func (c *Controller) UpdateLanguage(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid language ID", http.StatusBadRequest)
	}
	var fields model.LanguageFields
	if err := ctx.Bind(&fields); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if err := fields.Validate(); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	lang, err := c.DS.UpdateLanguage(ctx.Request().Context(), id, fields)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to update language")
	}
	c.publish(events.ResourceLanguage, events.ActionUpdated, lang.ID, lang.ID, lang)
	return ctx.JSON(http.StatusOK, lang)
}

// DeleteLanguage handles DELETE /api/languages/:id. The language's
// vocabulary is deleted with it.
func (c *Controller) DeleteLanguage(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid language ID", http.StatusBadRequest)
	}

	removed, err := c.DS.DeleteLanguage(ctx.Request().Context(), id)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to delete language")
	}
	if removed > 0 {
		c.log.Info("language vocabulary removed with language",
			logger.Int64("language_id", id),
			logger.Int64("entries", removed))
	}
	c.publish(events.ResourceLanguage, events.ActionDeleted, id, id, nil)
	return ctx.JSON(http.StatusOK, DeleteResponse{Success: true})
}

// pathID parses a positive integer path parameter
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
