package model

import (
	"time"

	"gorm.io/datatypes"
)

// Transition records one state change of one character.
type Transition struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID   string         `gorm:"index:idx_transition_char;size:36;not null" json:"character_id"`
	CharacterName string         `gorm:"size:64" json:"character_name"`
	Team          string         `gorm:"size:64" json:"team"`
	FromState     string         `gorm:"size:32" json:"from_state"`
	ToState       string         `gorm:"size:32;not null" json:"to_state"`
	Forced        bool           `json:"forced"`
	Tick          uint64         `gorm:"index:idx_transition_tick" json:"tick"`
	Snapshot      datatypes.JSON `json:"snapshot"`
	CreatedAt     time.Time      `gorm:"index:idx_transition_created;autoCreateTime:milli" json:"created_at"`
}
