package analytics

import (
	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
)

// recommend maps the analytics onto concrete adaptation actions for the
// orchestrator. Each row of the mapping is independent; several
// recommendations can coexist.
func recommend(events []*entity.PerformanceEvent, patterns []*entity.DetectedPattern) []*entity.AdaptationRecommendation {
	var out []*entity.AdaptationRecommendation

	byKind := make(map[string][]*entity.DetectedPattern)
	for _, p := range patterns {
		byKind[p.Kind] = append(byKind[p.Kind], p)
	}

	switch overallTrend(events) {
	case constant.TrendImproving:
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionIncreaseDifficulty,
			Reason:     "overall accuracy is trending up",
			Priority:   entity.PriorityMedium,
			Confidence: 0.7,
		})
	case constant.TrendDeclining:
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionDecreaseDifficulty,
			Reason:     "overall accuracy is trending down",
			Priority:   entity.PriorityHigh,
			Confidence: 0.8,
		})
	}

	rushing := len(byKind[entity.PatternRushing]) > 0
	if rushing {
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionDecreaseQuantity,
			Reason:     "rushing detected; fewer questions invite more care",
			Priority:   entity.PriorityMedium,
			Confidence: byKind[entity.PatternRushing][0].Confidence,
		})
	} else if len(events) > 0 && averageTime(events) < 20 {
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionIncreaseQuantity,
			Reason:     "answers come quickly without rushing; room for more items",
			Priority:   entity.PriorityLow,
			Confidence: 0.5,
		})
	}

	for _, weak := range byKind[entity.PatternWeakType] {
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionSwapQuestionType,
			Target:     weak.Target,
			Reason:     weak.Description,
			Priority:   entity.PriorityHigh,
			Confidence: weak.Confidence,
		})
	}

	if hintRate(events) > 0.5 {
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionIncreaseHints,
			Reason:     "hints are used on most questions",
			Priority:   entity.PriorityMedium,
			Confidence: hintRate(events),
		})
	}

	if visualEdge(events) > 20 {
		out = append(out, &entity.AdaptationRecommendation{
			Action:     entity.ActionIncreaseVisual,
			Reason:     "visual question accuracy clearly exceeds non-visual",
			Priority:   entity.PriorityMedium,
			Confidence: 0.6,
		})
	}

	return out
}

// visualEdge returns visual accuracy minus non-visual accuracy in points.
// Counting questions are the visual type.
func visualEdge(events []*entity.PerformanceEvent) float64 {
	var visual, other []*entity.PerformanceEvent
	for _, ev := range events {
		if ev.QuestionType == constant.QuestionTypeCounting {
			visual = append(visual, ev)
		} else {
			other = append(other, ev)
		}
	}
	if len(visual) == 0 || len(other) == 0 {
		return 0
	}
	return accuracy(visual) - accuracy(other)
}
