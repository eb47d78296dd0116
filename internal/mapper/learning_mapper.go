package mapper

import (
	"encoding/json"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/model"
)

type LearningMapper struct{}

func NewLearningMapper() *LearningMapper {
	return &LearningMapper{}
}

func (m *LearningMapper) SessionArchiveToModel(a *entity.SessionArchive) *model.SessionArchive {
	if a == nil {
		return nil
	}
	metrics, _ := json.Marshal(a.Metrics)
	containers, _ := json.Marshal(a.Containers)
	expected, _ := json.Marshal(a.ExpectedPath)
	actual, _ := json.Marshal(a.ActualPath)
	return &model.SessionArchive{
		Id:           a.Id,
		SessionId:    a.SessionId,
		UserId:       a.UserId,
		Reason:       a.Reason,
		Metrics:      metrics,
		Containers:   containers,
		ExpectedPath: expected,
		ActualPath:   actual,
		StartedAt:    a.StartedAt,
		ArchivedAt:   a.ArchivedAt,
	}
}

func (m *LearningMapper) SessionArchiveToEntity(a *model.SessionArchive) *entity.SessionArchive {
	if a == nil {
		return nil
	}
	out := &entity.SessionArchive{
		Id:         a.Id,
		SessionId:  a.SessionId,
		UserId:     a.UserId,
		Reason:     a.Reason,
		StartedAt:  a.StartedAt,
		ArchivedAt: a.ArchivedAt,
	}
	// JSON columns written by us; unmarshal failures leave zero values
	_ = json.Unmarshal(a.Metrics, &out.Metrics)
	_ = json.Unmarshal(a.Containers, &out.Containers)
	_ = json.Unmarshal(a.ExpectedPath, &out.ExpectedPath)
	_ = json.Unmarshal(a.ActualPath, &out.ActualPath)
	return out
}

func (m *LearningMapper) PerformanceEventToModel(e *entity.PerformanceEvent) *model.PerformanceEvent {
	if e == nil {
		return nil
	}
	return &model.PerformanceEvent{
		Id:               e.Id,
		UserId:           e.UserId,
		QuestionId:       e.QuestionId,
		QuestionType:     e.QuestionType,
		Subject:          e.Subject,
		SkillId:          e.SkillId,
		Difficulty:       e.Difficulty,
		Correct:          e.Correct,
		TimeSpentSeconds: e.TimeSpentSeconds,
		HintsUsed:        e.HintsUsed,
		AttemptCount:     e.AttemptCount,
		ContainerId:      e.ContainerId,
		XpAwarded:        e.XpAwarded,
		Timestamp:        e.Timestamp,
	}
}

func (m *LearningMapper) PerformanceEventToEntity(e *model.PerformanceEvent) *entity.PerformanceEvent {
	if e == nil {
		return nil
	}
	return &entity.PerformanceEvent{
		Id:               e.Id,
		UserId:           e.UserId,
		QuestionId:       e.QuestionId,
		QuestionType:     e.QuestionType,
		Subject:          e.Subject,
		SkillId:          e.SkillId,
		Difficulty:       e.Difficulty,
		Correct:          e.Correct,
		TimeSpentSeconds: e.TimeSpentSeconds,
		HintsUsed:        e.HintsUsed,
		AttemptCount:     e.AttemptCount,
		ContainerId:      e.ContainerId,
		XpAwarded:        e.XpAwarded,
		Timestamp:        e.Timestamp,
	}
}
