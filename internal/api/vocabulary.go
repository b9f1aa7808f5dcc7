package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/events"
	"github.com/tphakala/vocab-manager/internal/model"
)

// ListVocabulary handles GET /api/languages/:id/vocabulary.
func (c *Controller) ListVocabulary(ctx echo.Context) error {
	languageID, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid language ID", http.StatusBadRequest)
	}
	entries, err := c.DS.ListEntries(ctx.Request().Context(), languageID)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list vocabulary")
	}
	return ctx.JSON(http.StatusOK, entries)
}

// CreateVocabulary handles POST /api/languages/:id/vocabulary. The path
// language wins over any language_id in the body.
func (c *Controller) CreateVocabulary(ctx echo.Context) error {
	languageID, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid language ID", http.StatusBadRequest)
	}
	var payload model.NewEntryPayload
	if err := ctx.Bind(&payload); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if err := validateEntry(payload.EntryFields); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	entry, err := c.DS.CreateEntry(ctx.Request().Context(), languageID, payload.EntryFields)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to create vocabulary entry")
	}
	c.publish(events.ResourceVocabulary, events.ActionCreated, entry.ID, languageID, entry)
	return ctx.JSON(http.StatusCreated, entry)
}

// UpdateVocabulary handles PUT /api/languages/:id/vocabulary/:wordId.
func (c *Controller) UpdateVocabulary(ctx echo.Context) error {
	languageID, wordID, err := entryPath(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vocabulary path", http.StatusBadRequest)
	}
	var fields model.EntryFields
	if err := ctx.Bind(&fields); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if err := validateEntry(fields); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	entry, err := c.DS.UpdateEntry(ctx.Request().Context(), languageID, wordID, fields)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to update vocabulary entry")
	}
	c.publish(events.ResourceVocabulary, events.ActionUpdated, entry.ID, languageID, entry)
	return ctx.JSON(http.StatusOK, entry)
}

// DeleteVocabulary handles DELETE /api/languages/:id/vocabulary/:wordId.
func (c *Controller) DeleteVocabulary(ctx echo.Context) error {
	languageID, wordID, err := entryPath(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid vocabulary path", http.StatusBadRequest)
	}
	if err := c.DS.DeleteEntry(ctx.Request().Context(), languageID, wordID); err != nil {
		return c.handleStoreError(ctx, err, "Failed to delete vocabulary entry")
	}
	c.publish(events.ResourceVocabulary, events.ActionDeleted, wordID, languageID, nil)
	return ctx.JSON(http.StatusOK, DeleteResponse{Success: true})
}

// validateEntry adds the part-of-speech membership check to the
// required-field check
func validateEntry(fields model.EntryFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	if !fields.PartOfSpeech.Valid() {
		return errors.Newf("unknown part_of_speech %q", fields.PartOfSpeech).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

func entryPath(ctx echo.Context) (languageID, wordID int64, err error) {
	if languageID, err = pathID(ctx, "id"); err != nil {
		return 0, 0, err
	}
	if wordID, err = pathID(ctx, "wordId"); err != nil {
		return 0, 0, err
	}
	return languageID, wordID, nil
}
