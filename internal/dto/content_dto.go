package dto

import (
	"jit-learning-be/internal/entity"
)

type GenerateContentRequest struct {
	ContainerId   string `json:"container_id" validate:"required"`
	ContainerType string `json:"container_type" validate:"required,oneof=learn experience discover"`
	Subject       string `json:"subject" validate:"required"`
	Force         bool   `json:"force"`
}

type GenerateContentResponse struct {
	ContainerId   string                 `json:"container_id"`
	ContainerType string                 `json:"container_type"`
	Subject       string                 `json:"subject"`
	Title         string                 `json:"title"`
	Instructions  string                 `json:"instructions"`
	Questions     entity.QuestionSet     `json:"questions"`
	Metadata      entity.ContentMetadata `json:"metadata"`
}

type InvalidateCacheResponse struct {
	Removed int `json:"removed"`
}

type CacheStatsResponse struct {
	HotEntries  int `json:"hot_entries"`
	WarmEntries int `json:"warm_entries"`
}

type SetDailyContextRequest struct {
	Career     entity.Career    `json:"career" validate:"required"`
	Skill      entity.Skill     `json:"skill" validate:"required"`
	Companion  entity.Companion `json:"companion" validate:"required"`
	GradeLevel int              `json:"grade_level" validate:"required,min=1,max=12"`
	Subjects   []string         `json:"subjects" validate:"required,min=1"`
	TTLMinutes int              `json:"ttl_minutes" validate:"omitempty,min=1"`
}

type DailyContextResponse struct {
	SessionId  string           `json:"session_id"`
	Career     entity.Career    `json:"career"`
	Skill      entity.Skill     `json:"skill"`
	Companion  entity.Companion `json:"companion"`
	GradeLevel int              `json:"grade_level"`
	Subjects   []string         `json:"subjects"`
	ExpiresAt  string           `json:"expires_at"`
}

type BatchConsistencyRequest struct {
	ContainerIds []string `json:"container_ids" validate:"required,min=1"`
	Subject      string   `json:"subject"`
}
