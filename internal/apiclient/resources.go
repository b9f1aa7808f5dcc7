package apiclient

import (
	"context"

	"github.com/tphakala/vocab-manager/internal/model"
)

// Languages adapts the language operations to the panel resource shape.
type Languages struct {
	client *Client
}

// Languages returns the language resource.
func (c *Client) Languages() Languages {
	return Languages{client: c}
}

func (r Languages) List(ctx context.Context) ([]model.Language, error) {
	return r.client.ListLanguages(ctx)
}

func (r Languages) Create(ctx context.Context, fields model.LanguageFields) (model.Language, error) {
	return r.client.CreateLanguage(ctx, fields)
}

func (r Languages) Update(ctx context.Context, id int64, fields model.LanguageFields) (model.Language, error) {
	return r.client.UpdateLanguage(ctx, id, fields)
}

func (r Languages) Delete(ctx context.Context, id int64) error {
	return r.client.DeleteLanguage(ctx, id)
}

// Vocabulary adapts entry operations scoped to one language.
type Vocabulary struct {
	client     *Client
	languageID int64
}

// Vocabulary returns the entry resource scoped to languageID.
func (c *Client) Vocabulary(languageID int64) Vocabulary {
	return Vocabulary{client: c, languageID: languageID}
}

// LanguageID returns the scoping language.
func (r Vocabulary) LanguageID() int64 {
	return r.languageID
}

func (r Vocabulary) List(ctx context.Context) ([]model.VocabularyEntry, error) {
	return r.client.ListEntries(ctx, r.languageID)
}

func (r Vocabulary) Create(ctx context.Context, fields model.EntryFields) (model.VocabularyEntry, error) {
	return r.client.CreateEntry(ctx, r.languageID, fields)
}

func (r Vocabulary) Update(ctx context.Context, id int64, fields model.EntryFields) (model.VocabularyEntry, error) {
	return r.client.UpdateEntry(ctx, r.languageID, id, fields)
}

func (r Vocabulary) Delete(ctx context.Context, id int64) error {
	return r.client.DeleteEntry(ctx, r.languageID, id)
}
