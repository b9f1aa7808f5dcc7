// Package events delivers change notifications from the reference API to
// asynchronous consumers such as the MQTT publisher.
package events

import (
	"path"
	"time"
)

// Resource kinds.
const (
	ResourceLanguage   = "languages"
	ResourceVocabulary = "vocabulary"
)

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	ID         int64     `json:"id"`
	LanguageID int64     `json:"language_id,omitempty"`
	Data       any       `json:"data,omitempty"` // entity after create/update
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(resource, action string, id, languageID int64, data any) ChangeEvent {
	return ChangeEvent{
		Resource:   resource,
		Action:     action,
		ID:         id,
		LanguageID: languageID,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

// Topic returns prefix/resource/action.
func (e ChangeEvent) Topic(prefix string) string {
	return path.Join(prefix, e.Resource, e.Action)
}

// Consumer processes events taken off the bus.
type Consumer interface {
	Name() string
	ProcessEvent(event ChangeEvent) error
}

// Publisher accepts events without blocking.
type Publisher interface {
	TryPublish(event ChangeEvent) bool
}
