package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"
	"jit-learning-be/pkg/genai/template"
	"jit-learning-be/pkg/learning/analytics"
	"jit-learning-be/pkg/learning/consistency"
	"jit-learning-be/pkg/learning/content"
	"jit-learning-be/pkg/learning/dailyctx"
	"jit-learning-be/pkg/learning/progression"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Simulates one student's learning day entirely in process: context setup,
// container progression, answers with drifting accuracy, adaptation, and the
// consistency-gated content pipeline. Useful for eyeballing engine behavior
// without a database or model server.
func main() {
	color.Cyan("=== Adaptive Learning Day Simulation ===\n")

	ctx := context.Background()
	log := logger.NewNopLogger()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	kv := memory.NewGoCacheStore(24 * time.Hour)
	tracker := progression.NewTracker(kv, nil, nil, log, 4*time.Hour)
	engine := analytics.NewEngine(nil, nil, log, 5*time.Minute)
	scorer := consistency.NewScorer(consistency.DefaultThresholds(), log)
	contexts := dailyctx.NewKVProvider(kv, log)
	factory := template.NewFactory()
	cache := content.NewTieredCache(50, 200, 30*time.Minute, kv, log)
	orchestrator := content.NewOrchestrator(contexts, engine, factory, factory, scorer, cache, nil, log)

	userID := uuid.New()
	color.Yellow("[1] Setting daily context for user %s", userID)
	now := time.Now()
	dc := &entity.DailyContext{
		SessionId:  uuid.New(),
		UserId:     userID,
		Career:     entity.Career{Id: "career-astronaut", Title: "Astronaut", Skills: []string{"counting", "navigation"}},
		Skill:      entity.Skill{Id: "skill-addition", Name: "Addition", Description: "Adding small numbers", Subject: "Math"},
		Companion:  entity.Companion{Id: "companion-luna", Name: "Luna", Personality: "encouraging"},
		GradeLevel: 2,
		Subjects:   []string{"Math", "Reading"},
		CreatedAt:  now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
	if err := contexts.Set(ctx, dc); err != nil {
		color.Red("Failed to set daily context: %v", err)
		os.Exit(1)
	}

	color.Yellow("\n[2] Initializing session with expected path learn -> experience -> discover")
	tracker.Initialize(ctx, userID, dc.SessionId, []string{"learn-math", "experience-math", "discover-math"})

	containers := []struct {
		id, ctype string
		accuracy  float64 // chance of a correct answer in this container
	}{
		{"learn-math", "learn", 0.6},
		{"experience-math", "experience", 0.8},
		{"discover-math", "discover", 0.95},
	}

	for _, c := range containers {
		color.Yellow("\n[3] Entering container %s", c.id)
		tracker.EnterContainer(ctx, userID, c.id, c.ctype, "Math")

		generated, err := orchestrator.GetContent(ctx, content.Request{
			UserId:        userID,
			ContainerId:   c.id,
			ContainerType: c.ctype,
			Subject:       "Math",
			SkipPreload:   true,
		})
		if err != nil {
			color.Red("Content generation failed: %v", err)
			os.Exit(1)
		}
		color.Green("    %q (%d questions, source=%s, consistency=%.0f)",
			generated.Title, len(generated.Questions), generated.Metadata.Source, generated.Metadata.ConsistencyScore)

		for _, q := range generated.Questions {
			correct := rng.Float64() < c.accuracy
			timeSpent := 8 + rng.Float64()*30
			event := tracker.RecordAnswer(ctx, userID, progression.AnswerInput{
				QuestionID:       q.QuestionId(),
				QuestionType:     q.QuestionType(),
				SkillID:          dc.Skill.Id,
				Difficulty:       generated.Metadata.Adaptations.Difficulty,
				Correct:          correct,
				TimeSpentSeconds: timeSpent,
				XpAwarded:        10,
			})
			if event != nil {
				engine.Record(ctx, event)
			}
			mark := color.GreenString("correct")
			if !correct {
				mark = color.RedString("wrong")
			}
			fmt.Printf("    answered %s in %4.1fs -> %s\n", q.QuestionType(), timeSpent, mark)
		}

		record := tracker.CompleteContainer(ctx, userID, c.id)
		if record != nil {
			color.Green("    completed: %d/%d correct, completion rate %.0f%%",
				record.CorrectAnswers, record.QuestionsAnswered, record.CompletionRate)
		}
	}

	color.Yellow("\n[4] Final performance report")
	report := engine.Report(ctx, userID)
	fmt.Printf("    events: %d, accuracy: %.1f%%, avg time: %.1fs, trend: %s\n",
		report.TotalEvents, report.OverallAccuracy, report.AverageTime, report.OverallTrend)
	for skill, mastery := range report.Masteries {
		fmt.Printf("    mastery[%s] = %.1f (%s)\n", skill, mastery.Level, mastery.Trend)
	}
	for _, pattern := range report.Patterns {
		color.Magenta("    pattern: %s (freq %d, impact %s)", pattern.Kind, pattern.Frequency, pattern.Impact)
	}
	for _, rec := range report.Recommendations {
		color.Cyan("    recommend: %s (%s) - %s", rec.Action, rec.Priority, rec.Reason)
	}

	hot, warm := cache.Stats()
	color.Yellow("\n[5] Cache occupancy: hot=%d warm=%d", hot, warm)

	session := tracker.Session(ctx, userID)
	if session != nil {
		color.Green("\nSession %s: %d completed containers, adaptation level %s",
			session.SessionId, len(session.Completed), session.AdaptationLevel)
	}
}
