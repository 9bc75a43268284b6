// file: models/puzzle.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PuzzleType string

const (
	PuzzleTypeStaticFlag  PuzzleType = "static_flag"
	PuzzleTypeInteractive PuzzleType = "interactive"
	PuzzleTypeQuestion    PuzzleType = "question"
)

type Puzzle struct {
	ID           string     `gorm:"size:36;primarykey" json:"id"`
	RoomID       string     `gorm:"size:36;not null;index" json:"room_id"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Type         PuzzleType `gorm:"size:20;default:'static_flag'" json:"type"`
	Description  string     `gorm:"type:text" json:"description"`
	FlagHash     string     `gorm:"size:255;not null" json:"-"`
	PointsReward float64    `gorm:"default:100" json:"points_reward"`
	IsActive     bool       `gorm:"default:1" json:"is_active"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`

	Clues []Clue `gorm:"foreignKey:PuzzleID" json:"clues,omitempty"`
}

func (Puzzle) TableName() string {
	return "ectf_puzzle"
}

func (p *Puzzle) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}
