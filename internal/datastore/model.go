package datastore

import (
	"time"

	"github.com/tphakala/vocab-manager/internal/model"
)

// LanguageRow is the persisted form of a Language.
type LanguageRow struct {
	ID             int64  `gorm:"column:language_id;primaryKey;autoIncrement"`
	ISO            string `gorm:"column:iso;size:16;not null;index"`
	Script         string `gorm:"column:script;size:16"`
	Endonym        string `gorm:"column:endonym;size:255;not null;index"`
	ExonymEN       string `gorm:"column:exonym_en;size:255"`
	Stage          string `gorm:"column:stage;size:64"`
	LanguageFamily string `gorm:"column:language_family;size:255"`
	AreaUsed       string `gorm:"column:area_used;size:255"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Entries []VocabularyRow `gorm:"foreignKey:LanguageID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the gorm default.
func (LanguageRow) TableName() string { return "languages" }

// VocabularyRow is the persisted form of a VocabularyEntry.
type VocabularyRow struct {
	ID              int64  `gorm:"column:word_id;primaryKey;autoIncrement"`
	LanguageID      int64  `gorm:"column:language_id;not null;index:idx_vocabulary_language_lemma,priority:1"`
	PartOfSpeech    string `gorm:"column:part_of_speech;size:32;not null"`
	Lemma           string `gorm:"column:lemma;size:255;not null;index:idx_vocabulary_language_lemma,priority:2"`
	Transliteration string `gorm:"column:transliteration;size:255"`
	Definition      string `gorm:"column:definition;type:text"`
	OriginLang      string `gorm:"column:origin_lang;size:255"`
	Process         string `gorm:"column:process;size:64"`
	EtymologyNotes  string `gorm:"column:etymology_notes;type:text"`
	Tag             string `gorm:"column:tag;size:64"`
	Notes           string `gorm:"column:notes;type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the gorm default.
func (VocabularyRow) TableName() string { return "vocabulary" }

func (r *LanguageRow) apply(f model.LanguageFields) {
	r.ISO = f.ISO
	r.Script = f.Script
	r.Endonym = f.Endonym
	r.ExonymEN = f.ExonymEN
	r.Stage = f.Stage
	r.LanguageFamily = f.LanguageFamily
	r.AreaUsed = f.AreaUsed
}

func (r *LanguageRow) toModel() model.Language {
	return model.Language{
		ID: r.ID,
		LanguageFields: model.LanguageFields{
			ISO:            r.ISO,
			Script:         r.Script,
			Endonym:        r.Endonym,
			ExonymEN:       r.ExonymEN,
			Stage:          r.Stage,
			LanguageFamily: r.LanguageFamily,
			AreaUsed:       r.AreaUsed,
		},
	}
}

func (r *VocabularyRow) apply(f model.EntryFields) {
	r.PartOfSpeech = string(f.PartOfSpeech)
	r.Lemma = f.Lemma
	r.Transliteration = f.Transliteration
	r.Definition = f.Definition
	r.OriginLang = f.OriginLang
	r.Process = f.Process
	r.EtymologyNotes = f.EtymologyNotes
	r.Tag = f.Tag
	r.Notes = f.Notes
}

func (r *VocabularyRow) toModel() model.VocabularyEntry {
	return model.VocabularyEntry{
		ID:         r.ID,
		LanguageID: r.LanguageID,
		EntryFields: model.EntryFields{
			PartOfSpeech:    model.PartOfSpeech(r.PartOfSpeech),
			Lemma:           r.Lemma,
			Transliteration: r.Transliteration,
			Definition:      r.Definition,
			OriginLang:      r.OriginLang,
			Process:         r.Process,
			EtymologyNotes:  r.EtymologyNotes,
			Tag:             r.Tag,
			Notes:           r.Notes,
		},
	}
}
