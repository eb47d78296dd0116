package progression

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"

	"github.com/google/uuid"
)

func newTestTracker() (*Tracker, memory.KVStore) {
	kv := memory.NewGoCacheStore(24 * time.Hour)
	return NewTracker(kv, nil, nil, logger.NewNopLogger(), 4*time.Hour), kv
}

func correctAnswer(seconds float64) AnswerInput {
	return AnswerInput{
		QuestionID:       uuid.New().String(),
		QuestionType:     "multiple_choice",
		Difficulty:       "medium",
		Correct:          true,
		TimeSpentSeconds: seconds,
		XpAwarded:        10,
	}
}

func wrongAnswer(seconds float64) AnswerInput {
	a := correctAnswer(seconds)
	a.Correct = false
	a.XpAwarded = 0
	return a
}

func TestEnterContainerCreatesSessionWhenNoneExists(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	record := tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	if record == nil {
		t.Fatal("expected a container record")
	}

	state := tracker.Session(ctx, userID)
	if state == nil {
		t.Fatal("expected a live session after entering a container")
	}
	if state.Current == nil || state.Current.Id != "learn-math" {
		t.Errorf("current container = %+v, want learn-math", state.Current)
	}
	if len(state.ActualPath) != 1 || state.ActualPath[0] != "learn-math" {
		t.Errorf("actual path = %v, want [learn-math]", state.ActualPath)
	}
}

func TestCompleteContainerCompletionRate(t *testing.T) {
	tests := []struct {
		name     string
		answers  int
		wantRate float64
	}{
		{name: "answered questions", answers: 3, wantRate: 100},
		{name: "no questions answered", answers: 0, wantRate: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, _ := newTestTracker()
			ctx := context.Background()
			userID := uuid.New()

			tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
			for i := 0; i < tt.answers; i++ {
				tracker.RecordAnswer(ctx, userID, correctAnswer(12))
			}

			record := tracker.CompleteContainer(ctx, userID, "learn-math")
			if record == nil {
				t.Fatal("expected the completed record")
			}
			if record.CompletionRate != tt.wantRate {
				t.Errorf("completion rate = %v, want %v", record.CompletionRate, tt.wantRate)
			}
			if record.EndedAt == nil {
				t.Error("expected EndedAt to be set")
			}

			state := tracker.Session(ctx, userID)
			if state.Current != nil {
				t.Error("expected no current container after completion")
			}
			if len(state.Completed) != 1 {
				t.Errorf("completed list length = %d, want 1", len(state.Completed))
			}
		})
	}
}

func TestCompleteUntrackedContainerReturnsNil(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	if record := tracker.CompleteContainer(ctx, userID, "discover-science"); record != nil {
		t.Errorf("expected nil for untracked container, got %+v", record)
	}
}

func TestRecordAnswerWithoutCurrentContainerIsIgnored(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.Initialize(ctx, userID, uuid.Nil, nil)
	if event := tracker.RecordAnswer(ctx, userID, correctAnswer(10)); event != nil {
		t.Errorf("expected nil event when no container is current, got %+v", event)
	}

	state := tracker.Session(ctx, userID)
	if state.Metrics.TotalQuestions != 0 {
		t.Errorf("total questions = %d, want 0", state.Metrics.TotalQuestions)
	}
}

func TestRecordAnswerUpdatesMetricsAndStreaks(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	tracker.RecordAnswer(ctx, userID, correctAnswer(10))
	tracker.RecordAnswer(ctx, userID, correctAnswer(10))
	tracker.RecordAnswer(ctx, userID, wrongAnswer(10))
	event := tracker.RecordAnswer(ctx, userID, correctAnswer(10))

	if event == nil {
		t.Fatal("expected a performance event")
	}
	if event.ContainerId != "learn-math" || event.Subject != "math" {
		t.Errorf("event container/subject = %s/%s, want learn-math/math", event.ContainerId, event.Subject)
	}

	state := tracker.Session(ctx, userID)
	m := state.Metrics
	if m.TotalQuestions != 4 || m.CorrectAnswers != 3 || m.IncorrectAnswers != 1 {
		t.Errorf("counters = %d/%d/%d, want 4/3/1", m.TotalQuestions, m.CorrectAnswers, m.IncorrectAnswers)
	}
	if m.OverallAccuracy != 75 {
		t.Errorf("overall accuracy = %v, want 75", m.OverallAccuracy)
	}
	if m.CurrentStreak != 1 || m.BestStreak != 2 {
		t.Errorf("streaks = %d/%d, want current 1 best 2", m.CurrentStreak, m.BestStreak)
	}
}

func TestSwitchingContainersClosesAndResumes(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	tracker.RecordAnswer(ctx, userID, correctAnswer(15))
	tracker.EnterContainer(ctx, userID, "experience-math", "experience", "math")

	state := tracker.Session(ctx, userID)
	if state.Current == nil || state.Current.Id != "experience-math" {
		t.Fatalf("current = %+v, want experience-math", state.Current)
	}
	if len(state.Active) != 1 || state.Active[0].Id != "learn-math" {
		t.Fatalf("active = %+v, want the closed learn-math record", state.Active)
	}
	if state.Active[0].EndedAt == nil {
		t.Error("implicitly closed container should carry an end time")
	}

	// Re-entering resumes the closed record with its counters intact.
	record := tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	if record.QuestionsAnswered != 1 {
		t.Errorf("resumed record questions = %d, want 1", record.QuestionsAnswered)
	}
	if record.EndedAt != nil {
		t.Error("resumed record should have its end time cleared")
	}

	// Resuming learn-math implicitly closes experience-math into the
	// active list.
	state = tracker.Session(ctx, userID)
	if state.Current == nil || state.Current.Id != "learn-math" {
		t.Fatalf("current = %+v, want the resumed learn-math record", state.Current)
	}
	if len(state.Active) != 1 || state.Active[0].Id != "experience-math" {
		t.Fatalf("active = %+v, want the closed experience-math record", state.Active)
	}
	if state.Active[0].EndedAt == nil {
		t.Error("implicitly closed container should carry an end time")
	}
}

func TestReenteringCompletedContainerResumesItsRecord(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	tracker.RecordAnswer(ctx, userID, correctAnswer(15))
	tracker.CompleteContainer(ctx, userID, "learn-math")

	record := tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	if record.QuestionsAnswered != 1 {
		t.Errorf("resumed record questions = %d, want 1", record.QuestionsAnswered)
	}
	if record.EndedAt != nil {
		t.Error("resumed record should have its end time cleared")
	}

	tracker.RecordAnswer(ctx, userID, correctAnswer(15))
	tracker.CompleteContainer(ctx, userID, "learn-math")

	// The container id appears exactly once in the completed list.
	state := tracker.Session(ctx, userID)
	count := 0
	for _, done := range state.Completed {
		if done.Id == "learn-math" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("learn-math completed records = %d, want 1", count)
	}
	if state.Current != nil {
		t.Errorf("current = %+v, want none after completion", state.Current)
	}
}

func TestInactiveSessionIsArchivedOnRead(t *testing.T) {
	tracker, kv := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	firstID := tracker.Session(ctx, userID).SessionId

	// Backdate the stored state past the inactivity threshold.
	raw, found, err := kv.Get(ctx, "session:"+userID.String())
	if err != nil || !found {
		t.Fatalf("expected stored session state, found=%v err=%v", found, err)
	}
	var stored entity.SessionState
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal stored state: %v", err)
	}
	stored.LastActivityAt = time.Now().Add(-5 * time.Hour)
	raw, _ = json.Marshal(&stored)
	if err := kv.Set(ctx, "session:"+userID.String(), raw, memory.NoExpiry); err != nil {
		t.Fatalf("set stored state: %v", err)
	}

	if state := tracker.Session(ctx, userID); state != nil {
		t.Fatalf("expected nil session after inactivity, got %+v", state)
	}
	if _, found, _ := kv.Get(ctx, "session:"+userID.String()); found {
		t.Error("expected the live state to be dropped after archiving")
	}

	// The next write starts a fresh session.
	tracker.EnterContainer(ctx, userID, "experience-math", "experience", "math")
	state := tracker.Session(ctx, userID)
	if state == nil {
		t.Fatal("expected a fresh session")
	}
	if state.SessionId == firstID {
		t.Error("fresh session should carry a new session id")
	}
	if len(state.ActualPath) != 1 {
		t.Errorf("fresh session actual path = %v, want only the new container", state.ActualPath)
	}
}

func TestValidateProgressionGates(t *testing.T) {
	ctx := context.Background()

	t.Run("no session allows progression", func(t *testing.T) {
		tracker, _ := newTestTracker()
		result := tracker.ValidateProgression(ctx, uuid.New(), "learn-math")
		if !result.Allowed {
			t.Errorf("expected allowed, got %+v", result)
		}
	})

	t.Run("incomplete current container blocks", func(t *testing.T) {
		tracker, _ := newTestTracker()
		userID := uuid.New()
		tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
		tracker.RecordAnswer(ctx, userID, correctAnswer(10))

		result := tracker.ValidateProgression(ctx, userID, "experience-math")
		if result.Allowed {
			t.Fatal("expected progression to be blocked")
		}
		if result.Reason != "current container not sufficiently complete" {
			t.Errorf("reason = %q", result.Reason)
		}
	})

	t.Run("low accuracy suggests weakest completed container", func(t *testing.T) {
		tracker, _ := newTestTracker()
		userID := uuid.New()

		tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
		tracker.RecordAnswer(ctx, userID, correctAnswer(10))
		tracker.RecordAnswer(ctx, userID, wrongAnswer(10))
		tracker.CompleteContainer(ctx, userID, "learn-math")

		tracker.EnterContainer(ctx, userID, "experience-math", "experience", "math")
		tracker.RecordAnswer(ctx, userID, wrongAnswer(10))
		tracker.RecordAnswer(ctx, userID, wrongAnswer(10))
		tracker.CompleteContainer(ctx, userID, "experience-math")

		// 1/4 correct: accuracy 25, below the gate.
		result := tracker.ValidateProgression(ctx, userID, "discover-math")
		if result.Allowed {
			t.Fatal("expected progression to be blocked on accuracy")
		}
		if result.Reason != "overall accuracy below progression threshold" {
			t.Errorf("reason = %q", result.Reason)
		}
		if result.SuggestedContainer != "experience-math-review" {
			t.Errorf("suggested = %q, want experience-math-review", result.SuggestedContainer)
		}
	})

	t.Run("completed container with strong accuracy passes", func(t *testing.T) {
		tracker, _ := newTestTracker()
		userID := uuid.New()
		tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
		for i := 0; i < 4; i++ {
			tracker.RecordAnswer(ctx, userID, correctAnswer(10))
		}
		tracker.CompleteContainer(ctx, userID, "learn-math")

		result := tracker.ValidateProgression(ctx, userID, "experience-math")
		if !result.Allowed {
			t.Errorf("expected allowed, got %+v", result)
		}
	})
}

func TestClearArchivesSession(t *testing.T) {
	tracker, kv := newTestTracker()
	ctx := context.Background()
	userID := uuid.New()

	tracker.EnterContainer(ctx, userID, "learn-math", "learn", "math")
	tracker.Clear(ctx, userID)

	if state := tracker.Session(ctx, userID); state != nil {
		t.Errorf("expected no session after clear, got %+v", state)
	}
	if _, found, _ := kv.Get(ctx, "session:"+userID.String()); found {
		t.Error("expected live state removed after clear")
	}
}

func TestComputeAdaptationLevel(t *testing.T) {
	tests := []struct {
		name    string
		metrics entity.PerformanceMetrics
		want    string
	}{
		{
			name: "fast and accurate goes hard",
			metrics: entity.PerformanceMetrics{
				TotalQuestions: 10, OverallAccuracy: 90, AverageTimeSeconds: 25,
			},
			want: constant.AdaptationLevelHard,
		},
		{
			name: "low accuracy goes easy",
			metrics: entity.PerformanceMetrics{
				TotalQuestions: 10, OverallAccuracy: 40, AverageTimeSeconds: 20,
			},
			want: constant.AdaptationLevelEasy,
		},
		{
			name: "slow answers go easy even when accurate",
			metrics: entity.PerformanceMetrics{
				TotalQuestions: 10, OverallAccuracy: 70, AverageTimeSeconds: 120,
			},
			want: constant.AdaptationLevelEasy,
		},
		{
			name: "middling performance stays medium",
			metrics: entity.PerformanceMetrics{
				TotalQuestions: 10, OverallAccuracy: 75, AverageTimeSeconds: 45,
			},
			want: constant.AdaptationLevelMedium,
		},
		{
			name:    "no questions defaults to medium",
			metrics: entity.PerformanceMetrics{},
			want:    constant.AdaptationLevelMedium,
		},
		{
			name: "accurate but slow is not hard",
			metrics: entity.PerformanceMetrics{
				TotalQuestions: 10, OverallAccuracy: 95, AverageTimeSeconds: 60,
			},
			want: constant.AdaptationLevelMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeAdaptationLevel(&tt.metrics); got != tt.want {
				t.Errorf("computeAdaptationLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}
