// file: models/submission.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission 只追加的提交审计记录。
// 每个 (team, puzzle) 至多一条 is_correct=true —— 不可重复计分。
type Submission struct {
	ID             string    `gorm:"size:36;primarykey" json:"id"`
	TeamID         string    `gorm:"size:36;not null;index" json:"team_id"`
	PuzzleID       string    `gorm:"size:36;not null;index" json:"puzzle_id"`
	SubmittedFlag  string    `gorm:"size:255;not null" json:"-"`
	IsCorrect      bool      `gorm:"default:0" json:"is_correct"`
	SubmissionTime time.Time `gorm:"autoCreateTime" json:"submission_time"`
	IPAddress      string    `gorm:"size:45" json:"ip_address,omitempty"`
}

func (Submission) TableName() string {
	return "ectf_submission"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return
}
