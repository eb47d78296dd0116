package dto

import (
	"time"

	"jit-learning-be/internal/entity"

	"github.com/google/uuid"
)

type InitializeSessionRequest struct {
	ExpectedPath []string `json:"expected_path"`
}

type EnterContainerRequest struct {
	ContainerId   string `json:"container_id" validate:"required"`
	ContainerType string `json:"container_type" validate:"required,oneof=learn experience discover"`
	Subject       string `json:"subject" validate:"required"`
}

type RecordAnswerRequest struct {
	QuestionId       string  `json:"question_id" validate:"required"`
	QuestionType     string  `json:"question_type" validate:"required"`
	SkillId          string  `json:"skill_id"`
	Difficulty       string  `json:"difficulty"`
	Correct          bool    `json:"correct"`
	TimeSpentSeconds float64 `json:"time_spent_seconds" validate:"min=0"`
	HintsUsed        int     `json:"hints_used" validate:"min=0"`
	AttemptCount     int     `json:"attempt_count" validate:"min=0"`
	XpAwarded        int     `json:"xp_awarded" validate:"min=0"`
}

type CompleteContainerRequest struct {
	ContainerId string `json:"container_id" validate:"required"`
}

type ValidateProgressionRequest struct {
	TargetContainerId string `json:"target_container_id" validate:"required"`
}

type ValidateProgressionResponse struct {
	Allowed            bool   `json:"allowed"`
	Reason             string `json:"reason,omitempty"`
	SuggestedContainer string `json:"suggested_container,omitempty"`
}

type SessionResponse struct {
	SessionId       uuid.UUID                 `json:"session_id"`
	Current         *entity.ContainerRecord   `json:"current"`
	Active          []*entity.ContainerRecord `json:"active"`
	Completed       []*entity.ContainerRecord `json:"completed"`
	Metrics         entity.PerformanceMetrics `json:"metrics"`
	ExpectedPath    []string                  `json:"expected_path"`
	ActualPath      []string                  `json:"actual_path"`
	AdaptationLevel string                    `json:"adaptation_level"`
	StartedAt       time.Time                 `json:"started_at"`
	LastActivityAt  time.Time                 `json:"last_activity_at"`
}

type SessionArchiveResponse struct {
	SessionId      uuid.UUID                 `json:"session_id"`
	Reason         string                    `json:"reason"`
	Metrics        entity.PerformanceMetrics `json:"metrics"`
	ContainersSeen int                       `json:"containers_seen"`
	StartedAt      time.Time                 `json:"started_at"`
	ArchivedAt     time.Time                 `json:"archived_at"`
}
