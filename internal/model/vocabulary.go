package model

import "github.com/tphakala/vocab-manager/internal/errors"

// EntryFields are the user-editable attributes of a VocabularyEntry.
type EntryFields struct {
	PartOfSpeech    PartOfSpeech `json:"part_of_speech" form:"part_of_speech"`
	Lemma           string       `json:"lemma" form:"lemma"`
	Transliteration string       `json:"transliteration" form:"transliteration"`
	Definition      string       `json:"definition" form:"definition"`
	OriginLang      string       `json:"origin_lang" form:"origin_lang"`
	Process         string       `json:"process" form:"process"` // formation process, e.g. borrowing
	EtymologyNotes  string       `json:"etymology_notes" form:"etymology_notes"`
	Tag             string       `json:"tag" form:"tag"`
	Notes           string       `json:"notes" form:"notes"`
}

// BlankEntryFields returns the empty form used for create mode and resets.
func BlankEntryFields() EntryFields {
	return EntryFields{}
}

// Validate reports whether the required fields are present. Membership of
// the part of speech is checked by the store, not here.
func (f EntryFields) Validate() error {
	if f.PartOfSpeech == "" || f.Lemma == "" {
		return errors.New(errors.NewStd(MsgEntryRequired)).
			Component("model").
			Category(errors.CategoryValidation).
			Context("entity", "vocabulary").
			Build()
	}
	return nil
}

// VocabularyEntry is one lexical item owned by a Language.
type VocabularyEntry struct {
	ID         int64 `json:"word_id,omitempty"`
	LanguageID int64 `json:"language_id"`
	EntryFields
}

// Key returns the store-assigned identifier.
func (v VocabularyEntry) Key() int64 { return v.ID }

// Editable returns a copy of the editable fields.
func (v VocabularyEntry) Editable() EntryFields { return v.EntryFields }

// NewEntryPayload is the body of a create request; it carries the owning
// language alongside the fields.
type NewEntryPayload struct {
	LanguageID int64 `json:"language_id"`
	EntryFields
}
