// Package model defines the language catalog and vocabulary entities shared
// by the admin UI, the API client and the reference API.
package model

import "github.com/tphakala/vocab-manager/internal/errors"

// Required-field messages shown to the user.
const (
	MsgLanguageRequired = "ISO and Endonym are required"
	MsgEntryRequired    = "Part of speech and Lemma are required"
)

// LanguageFields are the user-editable attributes of a Language.
type LanguageFields struct {
	ISO            string `json:"iso" form:"iso"`
	Script         string `json:"script" form:"script"`
	Endonym        string `json:"endonym" form:"endonym"`
	ExonymEN       string `json:"exonym_en" form:"exonym_en"`
	Stage          string `json:"stage" form:"stage"` // free text, e.g. proto, classical, modern
	LanguageFamily string `json:"language_family" form:"language_family"`
	AreaUsed       string `json:"area_used" form:"area_used"`
}

// BlankLanguageFields returns the empty form used for create mode and resets.
func BlankLanguageFields() LanguageFields {
	return LanguageFields{}
}

// Validate reports whether the required fields are present.
func (f LanguageFields) Validate() error {
	if f.ISO == "" || f.Endonym == "" {
		return errors.New(errors.NewStd(MsgLanguageRequired)).
			Component("model").
			Category(errors.CategoryValidation).
			Context("entity", "language").
			Build()
	}
	return nil
}

// Language is one catalog entry. ID is assigned by the store.
type Language struct {
	ID int64 `json:"language_id,omitempty"`
	LanguageFields
}

// Key returns the store-assigned identifier.
func (l Language) Key() int64 { return l.ID }

// Editable returns a copy of the editable fields.
func (l Language) Editable() LanguageFields { return l.LanguageFields }

// DisplayName prefers the English exonym alongside the endonym.
func (l Language) DisplayName() string {
	if l.ExonymEN != "" && l.ExonymEN != l.Endonym {
		return l.Endonym + " (" + l.ExonymEN + ")"
	}
	return l.Endonym
}
