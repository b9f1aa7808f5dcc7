package httpcontroller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	vmw "github.com/tphakala/vocab-manager/internal/api/middleware"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/panel"
	"github.com/tphakala/vocab-manager/internal/shell"
)

// panelHandlers maps form posts onto the operations of one panel kind.
type panelHandlers[E panel.Entity[F], F panel.Fields] struct {
	server  *Server
	prefix  string
	get     func(*shell.Shell) *panel.Panel[E, F]
	subject func(E) string
}

func newLanguageHandlers(s *Server) *panelHandlers[model.Language, model.LanguageFields] {
	return &panelHandlers[model.Language, model.LanguageFields]{
		server:  s,
		prefix:  "/languages",
		get:     (*shell.Shell).Languages,
		subject: func(l model.Language) string { return l.DisplayName() },
	}
}

func newVocabularyHandlers(s *Server) *panelHandlers[model.VocabularyEntry, model.EntryFields] {
	return &panelHandlers[model.VocabularyEntry, model.EntryFields]{
		server:  s,
		prefix:  "/vocabulary",
		get:     (*shell.Shell).Vocabulary,
		subject: func(e model.VocabularyEntry) string { return e.Lemma },
	}
}

func (h *panelHandlers[E, F]) register(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST(h.prefix, h.Submit, m...)
	g.POST(h.prefix+"/refresh", h.Refresh, m...)
	g.POST(h.prefix+"/cancel", h.Cancel, m...)
	g.POST(h.prefix+"/:id/edit", h.Edit, m...)
	g.GET(h.prefix+"/:id/delete", h.ConfirmDelete, m...)
	g.POST(h.prefix+"/:id/delete", h.Delete, m...)
}

// Submit creates or updates from the posted form.
func (h *panelHandlers[E, F]) Submit(c echo.Context) error {
	var fields F
	if err := (&echo.DefaultBinder{}).BindBody(c, &fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}
	p := h.get(shellFrom(c))
	return h.finish(c, p, p.Submit(c.Request().Context(), fields))
}

// Refresh re-lists the collection.
func (h *panelHandlers[E, F]) Refresh(c echo.Context) error {
	err := h.get(shellFrom(c)).Refresh(c.Request().Context())
	return h.server.redirectHome(c, err)
}

// Cancel leaves edit mode.
func (h *panelHandlers[E, F]) Cancel(c echo.Context) error {
	h.get(shellFrom(c)).CancelEdit()
	return h.server.redirectHome(c, nil)
}

// Edit loads a listed item into the form.
func (h *panelHandlers[E, F]) Edit(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if !h.get(shellFrom(c)).BeginEditByID(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Item is not listed")
	}
	return h.server.redirectHome(c, nil)
}

// ConfirmDelete asks before deleting.
func (h *panelHandlers[E, F]) ConfirmDelete(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	p := h.get(shellFrom(c))
	subject := fmt.Sprintf("#%d", id)
	for _, item := range p.Snapshot().Items {
		if item.Key() == id {
			subject = h.subject(item)
			break
		}
	}
	return c.Render(http.StatusOK, "confirm", ConfirmData{
		Title:     pageTitle,
		CSRFToken: vmw.CSRFToken(c),
		Prompt:    p.ConfirmPrompt(),
		Subject:   subject,
		Action:    fmt.Sprintf("%s/%d/delete", h.prefix, id),
		Cancel:    "/",
	})
}

// Delete removes the item when the confirmation form answered yes.
func (h *panelHandlers[E, F]) Delete(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	answer := c.FormValue("confirm") == "yes"
	p := h.get(shellFrom(c))
	return h.finish(c, p, p.Remove(c.Request().Context(), id, func(string) bool { return answer }))
}

// finish redirects home. A write on an unbound panel fails with a
// conflict page, since the panel it reports on is not on screen.
func (h *panelHandlers[E, F]) finish(c echo.Context, p *panel.Panel[E, F], err error) error {
	if errors.Is(err, panel.ErrNotBound) {
		return echo.NewHTTPError(http.StatusConflict, p.Snapshot().ErrorMessage)
	}
	return h.server.redirectHome(c, err)
}
