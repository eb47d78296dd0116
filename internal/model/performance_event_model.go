package model

import (
	"time"

	"github.com/google/uuid"
)

type PerformanceEvent struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index:idx_perf_user_time"`
	QuestionId       string    `gorm:"type:text;not null"`
	QuestionType     string    `gorm:"type:varchar(32);not null"`
	Subject          string    `gorm:"type:varchar(64);not null"`
	SkillId          string    `gorm:"type:varchar(64);index"`
	Difficulty       string    `gorm:"type:varchar(16)"`
	Correct          bool      `gorm:"not null"`
	TimeSpentSeconds float64   `gorm:"not null"`
	HintsUsed        int       `gorm:"not null;default:0"`
	AttemptCount     int       `gorm:"not null;default:1"`
	ContainerId      string    `gorm:"type:varchar(128)"`
	XpAwarded        int       `gorm:"not null;default:0"`
	Timestamp        time.Time `gorm:"not null;index:idx_perf_user_time"`
}

func (PerformanceEvent) TableName() string {
	return "performance_events"
}
