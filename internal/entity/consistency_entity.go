package entity

import "time"

// Violation severities.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// Violation kinds.
const (
	ViolationCareerDrift      = "career_drift"
	ViolationCareerMissing    = "career_missing"
	ViolationSkillMissing     = "skill_missing"
	ViolationSkillDilution    = "skill_dilution"
	ViolationCompanionDrift   = "companion_drift"
	ViolationCompanionWeak    = "companion_weak"
	ViolationBatchCareerDrift = "batch_career_drift"
	ViolationBatchSkillSpread = "batch_skill_spread"
)

// Violation is one consistency problem found in a content item.
type Violation struct {
	Kind         string `json:"kind"`
	Severity     string `json:"severity"` // critical | major | minor
	Location     string `json:"location"` // metadata | text | batch
	Expected     string `json:"expected"`
	Actual       string `json:"actual"`
	SuggestedFix string `json:"suggested_fix"`
}

// ConsistencyReport scores one content item against the daily context.
// IsConsistent requires no critical violation and an aggregate score at or
// above the acceptance threshold.
type ConsistencyReport struct {
	CareerScore    float64     `json:"career_score"`    // 0-100
	SkillScore     float64     `json:"skill_score"`     // 0-100
	CompanionScore float64     `json:"companion_score"` // 0-100
	Aggregate      float64     `json:"aggregate"`       // mean of the three
	Violations     []Violation `json:"violations"`
	IsConsistent   bool        `json:"is_consistent"`
	CheckedAt      time.Time   `json:"checked_at"`
}

// HasCritical reports whether any violation carries critical severity.
func (r *ConsistencyReport) HasCritical() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// BatchConsistencyReport aggregates per-subject reports across a day's
// containers and flags cross-subject drift.
type BatchConsistencyReport struct {
	PerSubject   map[string]*ConsistencyReport `json:"per_subject"`
	Aggregate    float64                       `json:"aggregate"`
	Violations   []Violation                   `json:"violations"`
	IsConsistent bool                          `json:"is_consistent"`
	CheckedAt    time.Time                     `json:"checked_at"`
}
