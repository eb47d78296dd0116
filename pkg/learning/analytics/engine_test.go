package analytics

import (
	"context"
	"testing"
	"time"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"

	"github.com/google/uuid"
)

func newTestEngine() *Engine {
	return NewEngine(nil, nil, logger.NewNopLogger(), 5*time.Minute)
}

func event(userID uuid.UUID, skillID, qType string, correct bool, seconds float64) *entity.PerformanceEvent {
	return &entity.PerformanceEvent{
		Id:               uuid.New(),
		UserId:           userID,
		QuestionId:       uuid.New().String(),
		QuestionType:     qType,
		Subject:          "math",
		SkillId:          skillID,
		Difficulty:       "medium",
		Correct:          correct,
		TimeSpentSeconds: seconds,
		ContainerId:      "learn-math",
		Timestamp:        time.Now(),
	}
}

func TestMasteryRisesOnCorrectAndFallsOnIncorrect(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 15))
	report := engine.Report(ctx, userID)
	m, ok := report.Masteries["addition"]
	if !ok {
		t.Fatal("expected a mastery entry for the skill")
	}
	// 50 + 32*(1 - 0.5) = 66
	if m.Level != 66 {
		t.Errorf("mastery after one correct = %v, want 66", m.Level)
	}

	engine.Record(ctx, event(userID, "addition", "multiple_choice", false, 15))
	report = engine.Report(ctx, userID)
	m = report.Masteries["addition"]
	// 66 + 32*(0 - 0.66) = 44.88
	if m.Level < 44.8 || m.Level > 45 {
		t.Errorf("mastery after one incorrect = %v, want ~44.88", m.Level)
	}
	if m.AttemptCount != 2 {
		t.Errorf("attempt count = %d, want 2", m.AttemptCount)
	}
}

func TestMasteryStaysWithinBounds(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	winner := uuid.New()
	for i := 0; i < 50; i++ {
		engine.Record(ctx, event(winner, "addition", "multiple_choice", true, 15))
	}
	m := engine.Report(ctx, winner).Masteries["addition"]
	if m.Level > constant.MasteryMax {
		t.Errorf("mastery = %v, exceeds upper bound", m.Level)
	}

	loser := uuid.New()
	for i := 0; i < 50; i++ {
		engine.Record(ctx, event(loser, "addition", "multiple_choice", false, 15))
	}
	m = engine.Report(ctx, loser).Masteries["addition"]
	if m.Level < constant.MasteryMin {
		t.Errorf("mastery = %v, below lower bound", m.Level)
	}
}

func TestEventWithoutSkillDoesNotCreateMastery(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	engine.Record(ctx, event(userID, "", "multiple_choice", true, 15))
	report := engine.Report(ctx, userID)
	if len(report.Masteries) != 0 {
		t.Errorf("masteries = %v, want none for skill-less events", report.Masteries)
	}
	if report.TotalEvents != 1 {
		t.Errorf("total events = %d, want 1", report.TotalEvents)
	}
}

func TestRushingPatternDetected(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	// Three sub-10-second wrong answers meet the frequency threshold.
	for i := 0; i < 3; i++ {
		engine.Record(ctx, event(userID, "addition", "multiple_choice", false, 5))
	}
	report := engine.Report(ctx, userID)

	var rushing *entity.DetectedPattern
	for _, p := range report.Patterns {
		if p.Kind == entity.PatternRushing {
			rushing = p
		}
	}
	if rushing == nil {
		t.Fatalf("expected a rushing pattern, got %+v", report.Patterns)
	}
	if rushing.Impact != entity.ImpactNegative {
		t.Errorf("rushing impact = %q, want negative", rushing.Impact)
	}
	if rushing.Frequency != 3 {
		t.Errorf("rushing frequency = %d, want 3", rushing.Frequency)
	}
}

func TestHotStreakPatternDetected(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	engine.Record(ctx, event(userID, "addition", "multiple_choice", false, 30))
	for i := 0; i < constant.PatternHotStreakLength; i++ {
		engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 30))
	}
	report := engine.Report(ctx, userID)

	var streak *entity.DetectedPattern
	for _, p := range report.Patterns {
		if p.Kind == entity.PatternHotStreak {
			streak = p
		}
	}
	if streak == nil {
		t.Fatalf("expected a hot streak pattern, got %+v", report.Patterns)
	}
	if streak.Impact != entity.ImpactPositive {
		t.Errorf("hot streak impact = %q, want positive", streak.Impact)
	}
}

func TestWeakTypeRecommendationCarriesTarget(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	// Counting is consistently wrong, multiple choice consistently right.
	for i := 0; i < 4; i++ {
		engine.Record(ctx, event(userID, "counting", "counting", false, 30))
		engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 30))
	}
	report := engine.Report(ctx, userID)

	var swap *entity.AdaptationRecommendation
	for _, r := range report.Recommendations {
		if r.Action == entity.ActionSwapQuestionType {
			swap = r
		}
	}
	if swap == nil {
		t.Fatalf("expected a swap recommendation, got %+v", report.Recommendations)
	}
	if swap.Target != "counting" {
		t.Errorf("swap target = %q, want counting", swap.Target)
	}
	if swap.Priority != entity.PriorityHigh {
		t.Errorf("swap priority = %q, want high", swap.Priority)
	}
}

func TestImprovingTrendRecommendsHarderContent(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	// First half weak, second half strong; enough events for a trend verdict.
	for i := 0; i < 12; i++ {
		engine.Record(ctx, event(userID, "addition", "multiple_choice", i%2 == 0, 30))
	}
	for i := 0; i < 12; i++ {
		engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 30))
	}
	report := engine.Report(ctx, userID)

	if report.OverallTrend != constant.TrendImproving {
		t.Fatalf("overall trend = %q, want improving", report.OverallTrend)
	}
	found := false
	for _, r := range report.Recommendations {
		if r.Action == entity.ActionIncreaseDifficulty {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an increase_difficulty recommendation, got %+v", report.Recommendations)
	}
}

func TestReportCacheInvalidatedByNewEvents(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 15))
	first := engine.Report(ctx, userID)

	if again := engine.Report(ctx, userID); again != first {
		t.Error("expected the cached report instance on a repeat read")
	}

	engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 15))
	fresh := engine.Report(ctx, userID)
	if fresh == first {
		t.Error("expected a rebuilt report after a new event")
	}
	if fresh.TotalEvents != 2 {
		t.Errorf("total events = %d, want 2", fresh.TotalEvents)
	}
}

func TestPerformanceContextUsesRecentWindow(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	// Old misses pushed out of the ten-event window by recent fast hits.
	for i := 0; i < 10; i++ {
		engine.Record(ctx, event(userID, "addition", "multiple_choice", false, 60))
	}
	for i := 0; i < 10; i++ {
		engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 10))
	}

	pc := engine.PerformanceContext(ctx, userID)
	if pc.RecentAccuracy != 100 {
		t.Errorf("recent accuracy = %v, want 100", pc.RecentAccuracy)
	}
	if pc.AdaptationLevel != constant.AdaptationLevelHard {
		t.Errorf("adaptation level = %q, want hard", pc.AdaptationLevel)
	}
	if pc.Streak != 10 {
		t.Errorf("streak = %d, want 10", pc.Streak)
	}
}

func TestPerformanceContextDefaultsWithNoHistory(t *testing.T) {
	engine := newTestEngine()
	pc := engine.PerformanceContext(context.Background(), uuid.New())
	if pc.AdaptationLevel != constant.AdaptationLevelMedium {
		t.Errorf("adaptation level = %q, want medium", pc.AdaptationLevel)
	}
	if pc.RecentAccuracy != 0 || pc.Streak != 0 {
		t.Errorf("expected zeroed context, got %+v", pc)
	}
}

func TestTimeSpentBreakdown(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 10))
	engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 20))
	engine.Record(ctx, event(userID, "counting", "counting", true, 60))

	analysis := engine.TimeSpent(ctx, userID)
	if analysis.PerType["multiple_choice"] != 15 {
		t.Errorf("multiple_choice average = %v, want 15", analysis.PerType["multiple_choice"])
	}
	if analysis.FastestType != "multiple_choice" || analysis.SlowestType != "counting" {
		t.Errorf("fastest/slowest = %s/%s, want multiple_choice/counting", analysis.FastestType, analysis.SlowestType)
	}
	if analysis.AverageSeconds != 30 {
		t.Errorf("overall average = %v, want 30", analysis.AverageSeconds)
	}
}

func TestErrorsBreakdown(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()
	userID := uuid.New()

	engine.Record(ctx, event(userID, "addition", "multiple_choice", true, 10))
	engine.Record(ctx, event(userID, "addition", "multiple_choice", false, 10))
	engine.Record(ctx, event(userID, "counting", "counting", false, 10))

	analysis := engine.Errors(ctx, userID)
	if analysis.TotalErrors != 2 {
		t.Errorf("total errors = %d, want 2", analysis.TotalErrors)
	}
	if analysis.RatePerType["multiple_choice"] != 50 {
		t.Errorf("multiple_choice error rate = %v, want 50", analysis.RatePerType["multiple_choice"])
	}
	if analysis.RatePerType["counting"] != 100 {
		t.Errorf("counting error rate = %v, want 100", analysis.RatePerType["counting"])
	}
	if analysis.ErrorsBySubject["math"] != 2 {
		t.Errorf("math errors = %d, want 2", analysis.ErrorsBySubject["math"])
	}
}
