package panel

import "github.com/tphakala/vocab-manager/internal/model"

// VocabularyMessages are the texts of the vocabulary panel.
var VocabularyMessages = Messages{
	FetchError:    "Error fetching vocabulary: %s",
	SaveError:     "Error: %s",
	DeleteError:   "Error deleting vocabulary: %s",
	Created:       "Vocabulary entry created successfully!",
	Updated:       "Vocabulary entry updated successfully!",
	Deleted:       "Vocabulary entry deleted successfully!",
	ConfirmDelete: "Are you sure you want to delete this vocabulary entry?",
	NotBound:      "Select a language first",
}

// VocabularyResource is the entry collection of one language.
type VocabularyResource = Resource[model.VocabularyEntry, model.EntryFields]

// VocabularyPanel manages the entries of the selected language.
type VocabularyPanel = Panel[model.VocabularyEntry, model.EntryFields]

// VocabularySnapshot is the rendered state of a VocabularyPanel.
type VocabularySnapshot = Snapshot[model.VocabularyEntry, model.EntryFields]

// NewVocabularyPanel returns an unbound vocabulary panel. It lists nothing
// until Rebind scopes it to a language.
func NewVocabularyPanel(opts Options) *VocabularyPanel {
	return New[model.VocabularyEntry, model.EntryFields]("vocabulary", nil, model.BlankEntryFields, VocabularyMessages, opts)
}
