package models

import "time"

// Status is the life status of a character.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDead     Status = "DEAD"
)

// Statuses lists every defined status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusDead}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDead:
		return true
	}
	return false
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	case StatusDead:
		return "Dead"
	}
	return string(s)
}

// Alignment is the moral alignment of a character.
type Alignment string

const (
	AlignmentHero     Alignment = "HERO"
	AlignmentVillain  Alignment = "VILLAIN"
	AlignmentAntihero Alignment = "ANTIHERO"
	AlignmentNeutral  Alignment = "NEUTRAL"
)

// Alignments lists every defined alignment in display order.
var Alignments = []Alignment{AlignmentHero, AlignmentVillain, AlignmentAntihero, AlignmentNeutral}

// Valid reports whether a is one of the defined alignments.
func (a Alignment) Valid() bool {
	switch a {
	case AlignmentHero, AlignmentVillain, AlignmentAntihero, AlignmentNeutral:
		return true
	}
	return false
}

// Label returns the human readable name of the alignment.
func (a Alignment) Label() string {
	switch a {
	case AlignmentHero:
		return "Hero"
	case AlignmentVillain:
		return "Villain"
	case AlignmentAntihero:
		return "Antihero"
	case AlignmentNeutral:
		return "Neutral"
	}
	return string(a)
}

// Character represents a catalog entry.
type Character struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string    `json:"name" gorm:"type:varchar(100);not null;index" validate:"notblank,max=100"`
	RealName        string    `json:"real_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Origin          string    `json:"origin" gorm:"type:varchar(150)" validate:"omitempty,max=150"`
	Universe        string    `json:"universe" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Powers          string    `json:"powers" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Affiliation     string    `json:"affiliation" gorm:"type:varchar(100);index" validate:"omitempty,max=100"`
	FirstAppearance string    `json:"first_appearance" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Status          Status    `json:"status" gorm:"type:varchar(20);index" validate:"required,oneof=ACTIVE INACTIVE DEAD"`
	Alignment       Alignment `json:"alignment" gorm:"type:varchar(20)" validate:"required,oneof=HERO VILLAIN ANTIHERO NEUTRAL"`
	Description     string    `json:"description" gorm:"type:varchar(1000)" validate:"omitempty,max=1000"`
	ImageURL        string    `json:"image_url" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewCharacter returns the empty draft used when adding a character.
// Status defaults to ACTIVE; alignment is left unset.
func NewCharacter() Character {
	return Character{Status: StatusActive}
}

// Clone returns an independent copy suitable as an edit draft.
func (c Character) Clone() Character {
	return c
}

// IsNew reports whether the record has not been persisted yet.
func (c Character) IsNew() bool {
	return c.ID == ""
}

// ApplyChanges copies every user editable field of src onto c.
// Identity and timestamps are left untouched.
func (c *Character) ApplyChanges(src Character) {
	c.Name = src.Name
	c.RealName = src.RealName
	c.Origin = src.Origin
	c.Universe = src.Universe
	c.Powers = src.Powers
	c.Affiliation = src.Affiliation
	c.FirstAppearance = src.FirstAppearance
	c.Status = src.Status
	c.Alignment = src.Alignment
	c.Description = src.Description
	c.ImageURL = src.ImageURL
}
