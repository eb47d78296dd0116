package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContainerRecord tracks one learning container within a session. A record
// is created when the container is first entered and closed when the session
// moves away from it or completes it.
type ContainerRecord struct {
	Id                string     `json:"id"`
	Type              string     `json:"type"` // learn | experience | discover
	Subject           string     `json:"subject"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           *time.Time `json:"ended_at"`
	QuestionsAnswered int        `json:"questions_answered"`
	CorrectAnswers    int        `json:"correct_answers"`
	IncorrectAnswers  int        `json:"incorrect_answers"`
	TimeSpentSeconds  float64    `json:"time_spent_seconds"`
	HintsUsed         int        `json:"hints_used"`
	XpEarned          int        `json:"xp_earned"`
	CompletionRate    float64    `json:"completion_rate"` // 0-100
}

// PerformanceMetrics are the aggregate counters a session carries.
type PerformanceMetrics struct {
	TotalQuestions     int     `json:"total_questions"`
	CorrectAnswers     int     `json:"correct_answers"`
	IncorrectAnswers   int     `json:"incorrect_answers"`
	OverallAccuracy    float64 `json:"overall_accuracy"` // 0-100
	AverageTimeSeconds float64 `json:"average_time_seconds"`
	CurrentStreak      int     `json:"current_streak"`
	BestStreak         int     `json:"best_streak"`
	HintsUsed          int     `json:"hints_used"`
	XpEarned           int     `json:"xp_earned"`
}

// SessionState is the live progression state of one user session.
//
// Invariant: at most one container is current, and a container id appears in
// at most one of {current, active, completed} at any instant.
type SessionState struct {
	SessionId        uuid.UUID          `json:"session_id"`
	UserId           uuid.UUID          `json:"user_id"`
	ContextSessionId uuid.UUID          `json:"context_session_id"` // link to the daily context
	Current          *ContainerRecord   `json:"current"`
	Active           []*ContainerRecord `json:"active"` // entered but neither current nor completed
	Completed        []*ContainerRecord `json:"completed"`
	Metrics          PerformanceMetrics `json:"metrics"`
	StartedAt        time.Time          `json:"started_at"`
	LastActivityAt   time.Time          `json:"last_activity_at"`
	ExpectedPath     []string           `json:"expected_path"`
	ActualPath       []string           `json:"actual_path"`
	AdaptationLevel  string             `json:"adaptation_level"` // easy | medium | hard
	IsActive         bool               `json:"is_active"`
}

// SessionArchive is the persisted summary of a session after it leaves live
// memory (inactivity timeout or explicit clear).
type SessionArchive struct {
	Id           uuid.UUID
	SessionId    uuid.UUID
	UserId       uuid.UUID
	Reason       string // timeout | clear
	Metrics      PerformanceMetrics
	Containers   []*ContainerRecord
	ExpectedPath []string
	ActualPath   []string
	StartedAt    time.Time
	ArchivedAt   time.Time
}
