package analytics

import (
	"fmt"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
)

// detectPatterns scans a user's recent history for behavioral patterns.
// A candidate needs at least PatternMinFrequency supporting events to count.
func detectPatterns(events []*entity.PerformanceEvent) []*entity.DetectedPattern {
	if len(events) == 0 {
		return nil
	}

	var patterns []*entity.DetectedPattern

	if p := detectRushing(events); p != nil {
		patterns = append(patterns, p)
	}
	if p := detectOverthinking(events); p != nil {
		patterns = append(patterns, p)
	}
	patterns = append(patterns, detectAccuracyBands(events)...)
	patterns = append(patterns, detectWeakTypes(events)...)
	if p := detectHintDependency(events); p != nil {
		patterns = append(patterns, p)
	}
	if p := detectHotStreak(events); p != nil {
		patterns = append(patterns, p)
	}
	return patterns
}

func confidence(frequency, total int) float64 {
	c := float64(frequency) / float64(total)
	if c > 1 {
		c = 1
	}
	return c
}

func exampleIds(events []*entity.PerformanceEvent) []string {
	ids := make([]string, 0, 3)
	for _, ev := range events {
		ids = append(ids, ev.QuestionId)
		if len(ids) == 3 {
			break
		}
	}
	return ids
}

func detectRushing(events []*entity.PerformanceEvent) *entity.DetectedPattern {
	var fast []*entity.PerformanceEvent
	for _, ev := range events {
		if ev.TimeSpentSeconds < constant.PatternRushingMaxSeconds {
			fast = append(fast, ev)
		}
	}
	if len(fast) < constant.PatternMinFrequency {
		return nil
	}
	return &entity.DetectedPattern{
		Kind:           entity.PatternRushing,
		Description:    fmt.Sprintf("%d answers submitted in under %.0f seconds", len(fast), constant.PatternRushingMaxSeconds),
		Frequency:      len(fast),
		Confidence:     confidence(len(fast), len(events)),
		Impact:         entity.ImpactNegative,
		Recommendation: "reduce question quantity and encourage reading the prompt fully",
		ExampleIds:     exampleIds(fast),
	}
}

func detectOverthinking(events []*entity.PerformanceEvent) *entity.DetectedPattern {
	var slow []*entity.PerformanceEvent
	for _, ev := range events {
		if ev.TimeSpentSeconds > constant.PatternOverthinkMinSecs {
			slow = append(slow, ev)
		}
	}
	if len(slow) < constant.PatternMinFrequency {
		return nil
	}
	return &entity.DetectedPattern{
		Kind:           entity.PatternOverthinking,
		Description:    fmt.Sprintf("%d answers took over %.0f seconds", len(slow), constant.PatternOverthinkMinSecs),
		Frequency:      len(slow),
		Confidence:     confidence(len(slow), len(events)),
		Impact:         entity.ImpactNegative,
		Recommendation: "lower difficulty or raise hint availability",
		ExampleIds:     exampleIds(slow),
	}
}

func detectAccuracyBands(events []*entity.PerformanceEvent) []*entity.DetectedPattern {
	var out []*entity.DetectedPattern
	acc := accuracy(events)

	var incorrect, correct []*entity.PerformanceEvent
	for _, ev := range events {
		if ev.Correct {
			correct = append(correct, ev)
		} else {
			incorrect = append(incorrect, ev)
		}
	}

	if acc < constant.PatternLowAccuracyBand && len(incorrect) >= constant.PatternMinFrequency {
		out = append(out, &entity.DetectedPattern{
			Kind:           entity.PatternLowAccuracy,
			Description:    fmt.Sprintf("overall accuracy %.0f%% is below %.0f%%", acc, constant.PatternLowAccuracyBand),
			Frequency:      len(incorrect),
			Confidence:     confidence(len(incorrect), len(events)),
			Impact:         entity.ImpactNegative,
			Recommendation: "step difficulty down and revisit fundamentals",
			ExampleIds:     exampleIds(incorrect),
		})
	}
	if acc > constant.PatternHighAccuracyBand && len(correct) >= constant.PatternMinFrequency {
		out = append(out, &entity.DetectedPattern{
			Kind:           entity.PatternHighAccuracy,
			Description:    fmt.Sprintf("overall accuracy %.0f%% is above %.0f%%", acc, constant.PatternHighAccuracyBand),
			Frequency:      len(correct),
			Confidence:     confidence(len(correct), len(events)),
			Impact:         entity.ImpactPositive,
			Recommendation: "raise difficulty to keep the challenge meaningful",
			ExampleIds:     exampleIds(correct),
		})
	}
	return out
}

func detectWeakTypes(events []*entity.PerformanceEvent) []*entity.DetectedPattern {
	byType := make(map[string][]*entity.PerformanceEvent)
	for _, ev := range events {
		byType[ev.QuestionType] = append(byType[ev.QuestionType], ev)
	}

	var out []*entity.DetectedPattern
	for qType, typed := range byType {
		if len(typed) < constant.PatternMinFrequency {
			continue
		}
		if acc := accuracy(typed); acc < constant.PatternWeakTypeAccuracy {
			out = append(out, &entity.DetectedPattern{
				Kind:           entity.PatternWeakType,
				Target:         qType,
				Description:    fmt.Sprintf("accuracy on %s questions is %.0f%%", qType, acc),
				Frequency:      len(typed),
				Confidence:     confidence(len(typed), len(events)),
				Impact:         entity.ImpactNegative,
				Recommendation: "swap " + qType + " questions for an alternate type",
				ExampleIds:     exampleIds(typed),
			})
		}
	}
	return out
}

func detectHintDependency(events []*entity.PerformanceEvent) *entity.DetectedPattern {
	var hinted []*entity.PerformanceEvent
	for _, ev := range events {
		if ev.HintsUsed > 0 {
			hinted = append(hinted, ev)
		}
	}
	if len(hinted) < constant.PatternMinFrequency {
		return nil
	}
	rate := float64(len(hinted)) / float64(len(events))
	if rate <= constant.PatternHintDependencyRate {
		return nil
	}
	return &entity.DetectedPattern{
		Kind:           entity.PatternHintDependency,
		Description:    fmt.Sprintf("hints used on %.0f%% of questions", rate*100),
		Frequency:      len(hinted),
		Confidence:     rate,
		Impact:         entity.ImpactNegative,
		Recommendation: "lower difficulty so answers are reachable without hints",
		ExampleIds:     exampleIds(hinted),
	}
}

func detectHotStreak(events []*entity.PerformanceEvent) *entity.DetectedPattern {
	best, run := 0, 0
	var streakEvents, current []*entity.PerformanceEvent
	for _, ev := range events {
		if ev.Correct {
			run++
			current = append(current, ev)
			if run > best {
				best = run
				streakEvents = append([]*entity.PerformanceEvent(nil), current...)
			}
		} else {
			run = 0
			current = current[:0]
		}
	}
	if best < constant.PatternHotStreakLength {
		return nil
	}
	return &entity.DetectedPattern{
		Kind:           entity.PatternHotStreak,
		Description:    fmt.Sprintf("%d consecutive correct answers", best),
		Frequency:      best,
		Confidence:     confidence(best, len(events)),
		Impact:         entity.ImpactPositive,
		Recommendation: "surface a harder challenge while momentum holds",
		ExampleIds:     exampleIds(streakEvents),
	}
}
