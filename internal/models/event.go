package models

import "time"

// CharacterEventType names a change made to the catalog.
type CharacterEventType string

const (
	CharacterCreated CharacterEventType = "character.created"
	CharacterUpdated CharacterEventType = "character.updated"
	CharacterDeleted CharacterEventType = "character.deleted"
)

// CharacterEvent is published to the broker after every successful write.
type CharacterEvent struct {
	Type        CharacterEventType `json:"type"`
	CharacterID string             `json:"character_id"`
	Name        string             `json:"name"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// NewCharacterEvent builds an event for c stamped with the current time.
func NewCharacterEvent(t CharacterEventType, c Character) CharacterEvent {
	return CharacterEvent{
		Type:        t,
		CharacterID: c.ID,
		Name:        c.Name,
		OccurredAt:  time.Now().UTC(),
	}
}
