package httpcontroller

import (
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) initRoutes() {
	assets, err := fs.Sub(AssetsFs, "assets")
	if err != nil {
		panic(err)
	}
	s.Echo.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))))
	s.Echo.GET("/healthz", s.Healthz)
	if s.metrics != nil && s.Settings.Metrics.Enabled {
		s.Echo.GET(s.Settings.Metrics.Path, echo.WrapHandler(s.metrics.Handler()))
	}

	// only UI routes resolve a session; unknown paths never create one
	ui := s.Echo.Group("")
	ui.GET("/", s.Index, s.withShell)
	ui.POST("/views/:view", s.ShowView, s.withShell)
	ui.POST("/languages/:id/select", s.SelectLanguage, s.withShell)

	newLanguageHandlers(s).register(ui, s.withShell)
	newVocabularyHandlers(s).register(ui, s.withShell)
}
