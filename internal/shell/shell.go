// Package shell holds the navigation state of one admin session: which view
// is active and which language scopes the vocabulary panel.
package shell

import (
	"context"
	"sync"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/panel"
)

// View identifies the active tab.
type View string

const (
	ViewLanguages  View = "languages"
	ViewVocabulary View = "vocabulary"
)

// ErrNoLanguageSelected is returned when the vocabulary view is requested
// before a language was selected.
var ErrNoLanguageSelected = errors.NewStd("select a language first")

// ParseView maps a route value onto a View.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewLanguages, ViewVocabulary:
		return View(s), nil
	}
	return "", errors.Newf("unknown view %q", s).
		Component("shell").
		Category(errors.CategoryValidation).
		Build()
}

// VocabularyFactory returns the entry resource scoped to one language.
type VocabularyFactory func(languageID int64) panel.VocabularyResource

// State is a copy of the shell state for rendering.
type State struct {
	ActiveView        View
	SelectedLanguage  *model.Language
	VocabularyEnabled bool
}

// Shell composes the language and vocabulary panels.
type Shell struct {
	languages  *panel.LanguagePanel
	vocabulary *panel.VocabularyPanel
	scoped     VocabularyFactory
	log        logger.Logger

	mu       sync.Mutex
	active   View
	selected *model.Language
}

// New creates a shell showing the language view with no language selected.
func New(languages panel.LanguageResource, scoped VocabularyFactory, opts panel.Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = logger.Global("shell")
	}
	return &Shell{
		languages:  panel.NewLanguagePanel(languages, opts),
		vocabulary: panel.NewVocabularyPanel(opts),
		scoped:     scoped,
		log:        opts.Logger,
		active:     ViewLanguages,
	}
}

// Languages returns the language panel.
func (s *Shell) Languages() *panel.LanguagePanel { return s.languages }

// Vocabulary returns the vocabulary panel.
func (s *Shell) Vocabulary() *panel.VocabularyPanel { return s.vocabulary }

// State returns the current view and selection. The selected language is
// taken from the latest language list when it is still present there.
func (s *Shell) State() State {
	s.mu.Lock()
	st := State{ActiveView: s.active, VocabularyEnabled: s.selected != nil}
	var selected model.Language
	if s.selected != nil {
		selected = *s.selected
	}
	s.mu.Unlock()

	if st.VocabularyEnabled {
		for _, l := range s.languages.Snapshot().Items {
			if l.ID == selected.ID {
				selected = l
				break
			}
		}
		st.SelectedLanguage = &selected
	}
	return st
}

// Mount mounts the panel of the active view.
func (s *Shell) Mount(ctx context.Context) error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	return s.mount(ctx, active)
}

// ShowView switches tabs and mounts the panel of the new view. The
// vocabulary view requires a selected language. Switching never clears the
// selection.
func (s *Shell) ShowView(ctx context.Context, view View) error {
	s.mu.Lock()
	if view == ViewVocabulary && s.selected == nil {
		s.mu.Unlock()
		return ErrNoLanguageSelected
	}
	s.active = view
	s.mu.Unlock()

	s.log.Debug("view changed", logger.String("view", string(view)))
	return s.mount(ctx, view)
}

// SelectLanguage scopes the vocabulary panel to the listed language id and
// makes the vocabulary view active.
func (s *Shell) SelectLanguage(ctx context.Context, id int64) error {
	var found *model.Language
	for _, l := range s.languages.Snapshot().Items {
		if l.ID == id {
			found = &l
			break
		}
	}
	if found == nil {
		return errors.NotFoundError("language", id)
	}

	s.mu.Lock()
	s.selected = found
	s.active = ViewVocabulary
	s.mu.Unlock()

	s.log.Info("language selected", logger.Int64("language_id", id), logger.String("iso", found.ISO))
	return s.vocabulary.Rebind(ctx, s.scoped(id), id)
}

// Close releases both panels.
func (s *Shell) Close() {
	s.languages.Close()
	s.vocabulary.Close()
}

func (s *Shell) mount(ctx context.Context, view View) error {
	if view == ViewVocabulary {
		return s.vocabulary.Mount(ctx)
	}
	return s.languages.Mount(ctx)
}
