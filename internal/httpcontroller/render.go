package httpcontroller

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/panel"
	"github.com/tphakala/vocab-manager/internal/shell"
)

//go:embed views/*.html
var ViewsFs embed.FS

//go:embed assets
var AssetsFs embed.FS

// PageData is the data of the shell page.
type PageData struct {
	Title         string
	CSRFToken     string
	State         shell.State
	Languages     panel.LanguageSnapshot
	Vocabulary    panel.VocabularySnapshot
	PartsOfSpeech []model.PartOfSpeechOption
}

// ConfirmData is the data of the delete confirmation page.
type ConfirmData struct {
	Title     string
	CSRFToken string
	Prompt    string
	Subject   string
	Action    string
	Cancel    string
}

// ErrorData is the data of the error page.
type ErrorData struct {
	Title   string
	Code    int
	Message string
}

// TemplateRenderer renders the embedded views.
type TemplateRenderer struct {
	templates *template.Template
	log       logger.Logger
}

// NewTemplateRenderer parses the embedded views.
func NewTemplateRenderer(log logger.Logger) (*TemplateRenderer, error) {
	tmpl, err := template.New("").Funcs(templateFunctions()).ParseFS(ViewsFs, "views/*.html")
	if err != nil {
		return nil, errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryConfiguration).
			Context("operation", "parse_templates").
			Build()
	}
	return &TemplateRenderer{templates: tmpl, log: log}, nil
}

// Render executes the template into a buffer first so that a failing
// template never leaves a half written page.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		t.log.Error("template execution failed", logger.String("template", name), logger.Error(err))
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
