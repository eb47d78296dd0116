package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionArchive struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Reason       string         `gorm:"type:varchar(16);not null"`
	Metrics      datatypes.JSON `gorm:"type:jsonb"`
	Containers   datatypes.JSON `gorm:"type:jsonb"`
	ExpectedPath datatypes.JSON `gorm:"type:jsonb"`
	ActualPath   datatypes.JSON `gorm:"type:jsonb"`
	StartedAt    time.Time      `gorm:"not null"`
	ArchivedAt   time.Time      `gorm:"not null;index"`
}

func (SessionArchive) TableName() string {
	return "session_archives"
}
