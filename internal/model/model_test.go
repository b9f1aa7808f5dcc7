package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/vocab-manager/internal/errors"
)

func TestLanguageFieldsValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  LanguageFields
		wantErr bool
	}{
		{"iso and endonym present", LanguageFields{ISO: "lat", Endonym: "Latīna"}, false},
		{"missing iso", LanguageFields{Endonym: "Latīna"}, true},
		{"missing endonym", LanguageFields{ISO: "lat"}, true},
		{"whitespace counts as present", LanguageFields{ISO: " ", Endonym: "Latīna"}, false},
		{"blank", BlankLanguageFields(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, MsgLanguageRequired, err.Error())
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestEntryFieldsValidate(t *testing.T) {
	assert.NoError(t, EntryFields{PartOfSpeech: Noun, Lemma: "aqua"}.Validate())

	assert.NoError(t, EntryFields{PartOfSpeech: Noun, Lemma: " "}.Validate(), "whitespace counts as present")

	err := EntryFields{Lemma: "aqua"}.Validate()
	require.Error(t, err)
	assert.Equal(t, MsgEntryRequired, err.Error())

	// Unknown parts of speech are the store's concern
	assert.NoError(t, EntryFields{PartOfSpeech: "gerund", Lemma: "x"}.Validate())
}

func TestLanguageJSONShape(t *testing.T) {
	lang := Language{ID: 4, LanguageFields: LanguageFields{ISO: "lat", Endonym: "Latīna", ExonymEN: "Latin"}}

	data, err := json.Marshal(lang)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"language_id": 4, "iso": "lat", "script": "", "endonym": "Latīna", "exonym_en": "Latin",
		"stage": "", "language_family": "", "area_used": ""
	}`, string(data))

	var decoded Language
	require.NoError(t, json.Unmarshal([]byte(`{"language_id":9,"iso":"got","endonym":"Gutisk","script":null}`), &decoded))
	assert.Equal(t, int64(9), decoded.Key())
	assert.Equal(t, "got", decoded.Editable().ISO)
	assert.Empty(t, decoded.Script)
}

func TestNewLanguageOmitsID(t *testing.T) {
	data, err := json.Marshal(Language{LanguageFields: LanguageFields{ISO: "lat"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "language_id")
}

func TestEntryJSONShape(t *testing.T) {
	var entry VocabularyEntry
	require.NoError(t, json.Unmarshal([]byte(`{"word_id":3,"language_id":1,"part_of_speech":"noun","lemma":"aqua","notes":null}`), &entry))
	assert.Equal(t, int64(3), entry.Key())
	assert.Equal(t, int64(1), entry.LanguageID)
	assert.Equal(t, Noun, entry.PartOfSpeech)
	assert.Equal(t, "aqua", entry.Editable().Lemma)

	data, err := json.Marshal(NewEntryPayload{LanguageID: 1, EntryFields: EntryFields{PartOfSpeech: Noun, Lemma: "aqua"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"language_id":1`)
	assert.Contains(t, string(data), `"lemma":"aqua"`)
	assert.NotContains(t, string(data), "word_id")
}

func TestPartsOfSpeech(t *testing.T) {
	options := PartsOfSpeech()
	require.Len(t, options, 25)
	assert.Equal(t, Noun, options[0].Value)
	assert.Equal(t, OtherPartOfSpeech, options[len(options)-1].Value)

	assert.True(t, IntransVerb.Valid())
	assert.Equal(t, "Intransitive Verb", IntransVerb.Label())
	assert.Equal(t, "Proper Noun", PartOfSpeech("propn.").Label())
	assert.False(t, PartOfSpeech("gerund").Valid())
	assert.Equal(t, "gerund", PartOfSpeech("gerund").Label())

	options[0].Label = "mutated"
	assert.Equal(t, "Noun", Noun.Label(), "returned slice is a copy")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Latīna (Latin)", Language{LanguageFields: LanguageFields{Endonym: "Latīna", ExonymEN: "Latin"}}.DisplayName())
	assert.Equal(t, "Latīna", Language{LanguageFields: LanguageFields{Endonym: "Latīna"}}.DisplayName())
}
