package entity

import (
	"time"

	"github.com/google/uuid"
)

// Career is the professional theme fixed for a learning day.
type Career struct {
	Id     string   `json:"id"`
	Title  string   `json:"title"`
	Skills []string `json:"skills"`
}

// Skill is the primary skill the day's content is anchored to.
type Skill struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
}

// Companion is the guide character whose voice generated content must keep.
type Companion struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

// DailyContext is the immutable (career, skill, companion, grade) tuple
// fixed for a learning session. Every container generated for the day must
// stay aligned with it.
type DailyContext struct {
	SessionId  uuid.UUID `json:"session_id"`
	UserId     uuid.UUID `json:"user_id"`
	Career     Career    `json:"career"`
	Skill      Skill     `json:"skill"`
	Companion  Companion `json:"companion"`
	GradeLevel int       `json:"grade_level"`
	Subjects   []string  `json:"subjects"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the context is no longer usable for generation.
func (c *DailyContext) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
