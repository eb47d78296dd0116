package entity

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceEvent is the immutable record of one answered question.
type PerformanceEvent struct {
	Id               uuid.UUID `json:"id"`
	UserId           uuid.UUID `json:"user_id"`
	QuestionId       string    `json:"question_id"`
	QuestionType     string    `json:"question_type"`
	Subject          string    `json:"subject"`
	SkillId          string    `json:"skill_id"`
	Difficulty       string    `json:"difficulty"`
	Correct          bool      `json:"correct"`
	TimeSpentSeconds float64   `json:"time_spent_seconds"`
	HintsUsed        int       `json:"hints_used"`
	AttemptCount     int       `json:"attempt_count"`
	ContainerId      string    `json:"container_id"`
	XpAwarded        int       `json:"xp_awarded"`
	Timestamp        time.Time `json:"timestamp"`
}

// SkillMastery is the per (user, skill) proficiency estimate.
type SkillMastery struct {
	SkillId            string    `json:"skill_id"`
	Level              float64   `json:"level"`        // 0-100, ELO-style
	Trend              string    `json:"trend"`        // improving | stable | declining
	SuccessRate        float64   `json:"success_rate"` // 0-100 rolling
	AverageTimeSeconds float64   `json:"average_time_seconds"`
	LastPracticedAt    time.Time `json:"last_practiced_at"`
	AttemptCount       int       `json:"attempt_count"`
}

// DetectedPattern is one behavioral pattern found in a user's recent history.
type DetectedPattern struct {
	Kind           string   `json:"kind"`
	Target         string   `json:"target,omitempty"` // e.g. the weak question type
	Description    string   `json:"description"`
	Frequency      int      `json:"frequency"`
	Confidence     float64  `json:"confidence"` // 0-1
	Impact         string   `json:"impact"`     // positive | negative | neutral
	Recommendation string   `json:"recommendation"`
	ExampleIds     []string `json:"example_ids"` // question ids evidencing the pattern
}

// Pattern kinds.
const (
	PatternRushing        = "rushing"
	PatternOverthinking   = "overthinking"
	PatternLowAccuracy    = "low_accuracy"
	PatternHighAccuracy   = "high_accuracy"
	PatternWeakType       = "weak_question_type"
	PatternHintDependency = "hint_dependency"
	PatternHotStreak      = "hot_streak"
)

// Impact signs.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// AdaptationRecommendation maps analytics onto a generation adjustment.
type AdaptationRecommendation struct {
	Action     string  `json:"action"`
	Target     string  `json:"target,omitempty"` // e.g. the weak question type
	Reason     string  `json:"reason"`
	Priority   string  `json:"priority"` // low | medium | high
	Confidence float64 `json:"confidence"`
}

// Recommendation actions.
const (
	ActionIncreaseDifficulty = "increase_difficulty"
	ActionDecreaseDifficulty = "decrease_difficulty"
	ActionIncreaseQuantity   = "increase_quantity"
	ActionDecreaseQuantity   = "decrease_quantity"
	ActionSwapQuestionType   = "swap_question_type"
	ActionIncreaseHints      = "increase_hints"
	ActionIncreaseVisual     = "increase_visual"
)

// Recommendation priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// PerformanceReport is the full cached analytics output for one user.
type PerformanceReport struct {
	UserId          uuid.UUID                   `json:"user_id"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	TotalEvents     int                         `json:"total_events"`
	OverallAccuracy float64                     `json:"overall_accuracy"`
	AverageTime     float64                     `json:"average_time_seconds"`
	HintRate        float64                     `json:"hint_rate"` // fraction of events with hints
	OverallTrend    string                      `json:"overall_trend"`
	Masteries       map[string]*SkillMastery    `json:"masteries"`
	Patterns        []*DetectedPattern          `json:"patterns"`
	Recommendations []*AdaptationRecommendation `json:"recommendations"`
}

// PerformanceContext is the compact slice of analytics the orchestrator
// folds into cache keys and generation parameters.
type PerformanceContext struct {
	AdaptationLevel    string  `json:"adaptation_level"`
	RecentAccuracy     float64 `json:"recent_accuracy"` // 0-100
	AverageTimeSeconds float64 `json:"average_time_seconds"`
	HintRate           float64 `json:"hint_rate"`
	Streak             int     `json:"streak"`
}
