package constant

import "time"

const (
	ContainerTypeLearn      = "learn"
	ContainerTypeExperience = "experience"
	ContainerTypeDiscover   = "discover"

	AdaptationLevelEasy   = "easy"
	AdaptationLevelMedium = "medium"
	AdaptationLevelHard   = "hard"

	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeNumeric        = "numeric"
	QuestionTypeCounting       = "counting"
	QuestionTypeFillBlank      = "fill_blank"

	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"

	// Session lifecycle
	SessionInactivityTimeout    = 4 * time.Hour
	SessionArchiveReasonTimeout = "timeout"
	SessionArchiveReasonClear   = "clear"
)

// Mastery update constants. The ELO K factor controls how fast a single
// answer can move an established mastery estimate.
const (
	MasteryKFactor     = 32.0
	MasteryInitial     = 50.0
	MasteryMin         = 0.0
	MasteryMax         = 100.0
	TrendWindowSize    = 5
	TrendDeltaPoints   = 10.0
	TrendMinimumEvents = 20
)

// Progression gates (tracker validateProgression).
const (
	ProgressionMinCompletionRate = 80.0
	ProgressionMinAccuracy       = 60.0
)

// Adaptation level thresholds.
const (
	AdaptationHardMinAccuracy   = 85.0
	AdaptationHardMaxAvgSeconds = 30.0
	AdaptationEasyMaxAccuracy   = 60.0
	AdaptationEasyMinAvgSeconds = 90.0
)

// Pattern detection thresholds.
const (
	PatternMinFrequency       = 3
	PatternRushingMaxSeconds  = 10.0
	PatternOverthinkMinSecs   = 120.0
	PatternLowAccuracyBand    = 50.0
	PatternHighAccuracyBand   = 90.0
	PatternWeakTypeAccuracy   = 50.0
	PatternHintDependencyRate = 0.6
	PatternHotStreakLength    = 5
)

// Event history per user is bounded; the oldest events fall off first.
const PerformanceHistoryCapacity = 1000

// Question generation limits.
const (
	QuestionCountMin          = 1
	QuestionCountMax          = 10
	GradeDifficultyClampBelow = 3
	GenerationAttemptBudget   = 3
)
