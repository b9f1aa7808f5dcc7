package httpcontroller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	vmw "github.com/tphakala/vocab-manager/internal/api/middleware"
	"github.com/tphakala/vocab-manager/internal/buildinfo"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/shell"
)

const (
	shellContextKey = "shell"
	pageTitle       = "Vocabulary Manager"
)

// withShell resolves the session shell and stores it on the context. A new
// session's shell is mounted before the request proceeds.
func (s *Server) withShell(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sh, created, err := s.Sessions.Shell(c.Response(), c.Request())
		if err != nil {
			return err
		}
		if created {
			// fetch failures are shown in the panel
			if err := sh.Mount(c.Request().Context()); err != nil {
				s.log.WithContext(c.Request().Context()).Debug("initial mount failed", logger.Error(err))
			}
		}
		c.Set(shellContextKey, sh)
		return next(c)
	}
}

func shellFrom(c echo.Context) *shell.Shell {
	return c.Get(shellContextKey).(*shell.Shell)
}

// Index renders the shell page.
func (s *Server) Index(c echo.Context) error {
	sh := shellFrom(c)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Render(http.StatusOK, "index", PageData{
		Title:         pageTitle,
		CSRFToken:     vmw.CSRFToken(c),
		State:         sh.State(),
		Languages:     sh.Languages().Snapshot(),
		Vocabulary:    sh.Vocabulary().Snapshot(),
		PartsOfSpeech: model.PartsOfSpeech(),
	})
}

// ShowView switches the active tab.
func (s *Server) ShowView(c echo.Context) error {
	view, err := shell.ParseView(c.Param("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	err = shellFrom(c).ShowView(c.Request().Context(), view)
	if errors.Is(err, shell.ErrNoLanguageSelected) {
		return echo.NewHTTPError(http.StatusConflict, "Select a language first")
	}
	return s.redirectHome(c, err)
}

// SelectLanguage scopes the vocabulary view to a listed language.
func (s *Server) SelectLanguage(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	err = shellFrom(c).SelectLanguage(c.Request().Context(), id)
	if errors.IsNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, "Language is not listed")
	}
	return s.redirectHome(c, err)
}

// Healthz reports liveness of the admin UI itself.
func (s *Server) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.Sessions.Count(),
		"version":  buildinfo.Current().GetVersion(),
	})
}

// redirectHome completes a form post. Operation failures are already part
// of the panel state, so they are logged and the page shows them.
func (s *Server) redirectHome(c echo.Context, err error) error {
	if err != nil {
		s.log.WithContext(c.Request().Context()).Debug("operation failed",
			logger.String("path", c.Path()),
			logger.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// itemID parses the :id path parameter
func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// errorHandler renders HTTP errors as a page
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		s.log.WithContext(c.Request().Context()).Error("request failed",
			logger.String("path", c.Request().URL.Path),
			logger.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.Render(code, "error", ErrorData{Title: pageTitle, Code: code, Message: message})
	}
	if err != nil {
		s.log.Error("failed to write error response", logger.Error(err))
	}
}
