package dto

import (
	"time"

	"jit-learning-be/internal/entity"

	"github.com/google/uuid"
)

type PerformanceReportResponse struct {
	UserId          uuid.UUID                          `json:"user_id"`
	GeneratedAt     time.Time                          `json:"generated_at"`
	TotalEvents     int                                `json:"total_events"`
	OverallAccuracy float64                            `json:"overall_accuracy"`
	AverageTime     float64                            `json:"average_time_seconds"`
	HintRate        float64                            `json:"hint_rate"`
	OverallTrend    string                             `json:"overall_trend"`
	Masteries       map[string]*entity.SkillMastery    `json:"masteries"`
	Patterns        []*entity.DetectedPattern          `json:"patterns"`
	Recommendations []*entity.AdaptationRecommendation `json:"recommendations"`
}

type PerformanceContextResponse struct {
	AdaptationLevel    string  `json:"adaptation_level"`
	RecentAccuracy     float64 `json:"recent_accuracy"`
	AverageTimeSeconds float64 `json:"average_time_seconds"`
	HintRate           float64 `json:"hint_rate"`
	Streak             int     `json:"streak"`
}

type TimeAnalysisResponse struct {
	AverageSeconds float64            `json:"average_seconds"`
	PerType        map[string]float64 `json:"per_type"`
	FastestType    string             `json:"fastest_type"`
	SlowestType    string             `json:"slowest_type"`
}

type ErrorAnalysisResponse struct {
	TotalErrors     int                `json:"total_errors"`
	ErrorRate       float64            `json:"error_rate"`
	RatePerType     map[string]float64 `json:"rate_per_type"`
	ErrorsBySubject map[string]int     `json:"errors_by_subject"`
}
