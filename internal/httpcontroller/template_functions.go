package httpcontroller

import (
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tphakala/vocab-manager/internal/model"
)

func templateFunctions() template.FuncMap {
	return template.FuncMap{
		"title":    cases.Title(language.English).String,
		"upper":    cases.Upper(language.Und).String,
		"posLabel": func(p model.PartOfSpeech) string { return p.Label() },
		"selected": func(a, b model.PartOfSpeech) bool { return a == b },
		"orDash":   orDash,
		"excerpt":  excerpt,
	}
}

// orDash renders empty optional fields as a dash
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// excerpt shortens long free text for the list view
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
