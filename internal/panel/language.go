package panel

import "github.com/tphakala/vocab-manager/internal/model"

// LanguageMessages are the texts of the language panel.
var LanguageMessages = Messages{
	FetchError:    "Error fetching languages: %s",
	SaveError:     "Error: %s",
	DeleteError:   "Error deleting language: %s",
	Created:       "Language created successfully!",
	Updated:       "Language updated successfully!",
	Deleted:       "Language deleted successfully!",
	ConfirmDelete: "Are you sure you want to delete this language?",
}

// LanguageResource is the remote language collection.
type LanguageResource = Resource[model.Language, model.LanguageFields]

// LanguagePanel manages the language catalog.
type LanguagePanel = Panel[model.Language, model.LanguageFields]

// LanguageSnapshot is the rendered state of a LanguagePanel.
type LanguageSnapshot = Snapshot[model.Language, model.LanguageFields]

// NewLanguagePanel returns a language panel bound to res.
func NewLanguagePanel(res LanguageResource, opts Options) *LanguagePanel {
	return New("languages", res, model.BlankLanguageFields, LanguageMessages, opts)
}
