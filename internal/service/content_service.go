package service

import (
	"context"
	"strings"
	"time"

	"jit-learning-be/internal/dto"
	"jit-learning-be/internal/entity"
	"jit-learning-be/pkg/learning/consistency"
	"jit-learning-be/pkg/learning/content"
	"jit-learning-be/pkg/learning/dailyctx"

	"github.com/google/uuid"
)

type IContentService interface {
	GenerateContent(ctx context.Context, userID uuid.UUID, request *dto.GenerateContentRequest) (*dto.GenerateContentResponse, error)
	InvalidateCache(ctx context.Context, userID uuid.UUID) (*dto.InvalidateCacheResponse, error)
	CacheStats(ctx context.Context) *dto.CacheStatsResponse
	SetDailyContext(ctx context.Context, userID uuid.UUID, request *dto.SetDailyContextRequest) (*dto.DailyContextResponse, error)
	GetDailyContext(ctx context.Context, userID uuid.UUID) (*dto.DailyContextResponse, error)
	ClearDailyContext(ctx context.Context, userID uuid.UUID) error
	CheckBatchConsistency(ctx context.Context, userID uuid.UUID, request *dto.BatchConsistencyRequest) (*entity.BatchConsistencyReport, error)
}

type contentService struct {
	orchestrator *content.Orchestrator
	contexts     dailyctx.Store
	scorer       *consistency.Scorer
	cache        *content.TieredCache
	defaultTTL   time.Duration
}

func NewContentService(
	orchestrator *content.Orchestrator,
	contexts dailyctx.Store,
	scorer *consistency.Scorer,
	cache *content.TieredCache,
	defaultTTL time.Duration,
) IContentService {
	return &contentService{
		orchestrator: orchestrator,
		contexts:     contexts,
		scorer:       scorer,
		cache:        cache,
		defaultTTL:   defaultTTL,
	}
}

func (s *contentService) GenerateContent(ctx context.Context, userID uuid.UUID, request *dto.GenerateContentRequest) (*dto.GenerateContentResponse, error) {
	generated, err := s.orchestrator.GetContent(ctx, content.Request{
		UserId:        userID,
		ContainerId:   request.ContainerId,
		ContainerType: request.ContainerType,
		Subject:       request.Subject,
		Force:         request.Force,
	})
	if err != nil {
		return nil, err
	}

	return &dto.GenerateContentResponse{
		ContainerId:   generated.ContainerId,
		ContainerType: generated.ContainerType,
		Subject:       generated.Subject,
		Title:         generated.Title,
		Instructions:  generated.Instructions,
		Questions:     generated.Questions,
		Metadata:      generated.Metadata,
	}, nil
}

func (s *contentService) InvalidateCache(ctx context.Context, userID uuid.UUID) (*dto.InvalidateCacheResponse, error) {
	removed := s.orchestrator.InvalidateUser(ctx, userID)
	return &dto.InvalidateCacheResponse{Removed: removed}, nil
}

func (s *contentService) CacheStats(_ context.Context) *dto.CacheStatsResponse {
	hot, warm := s.cache.Stats()
	return &dto.CacheStatsResponse{HotEntries: hot, WarmEntries: warm}
}

func (s *contentService) SetDailyContext(ctx context.Context, userID uuid.UUID, request *dto.SetDailyContextRequest) (*dto.DailyContextResponse, error) {
	ttl := s.defaultTTL
	if request.TTLMinutes > 0 {
		ttl = time.Duration(request.TTLMinutes) * time.Minute
	}
	now := time.Now()
	dc := &entity.DailyContext{
		SessionId:  uuid.New(),
		UserId:     userID,
		Career:     request.Career,
		Skill:      request.Skill,
		Companion:  request.Companion,
		GradeLevel: request.GradeLevel,
		Subjects:   request.Subjects,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.contexts.Set(ctx, dc); err != nil {
		return nil, err
	}

	// Yesterday's cached content no longer matches the new theme.
	s.orchestrator.InvalidateUser(ctx, userID)

	return contextResponse(dc), nil
}

func (s *contentService) GetDailyContext(ctx context.Context, userID uuid.UUID) (*dto.DailyContextResponse, error) {
	dc, err := s.contexts.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return contextResponse(dc), nil
}

func (s *contentService) ClearDailyContext(ctx context.Context, userID uuid.UUID) error {
	return s.contexts.Clear(ctx, userID)
}

// CheckBatchConsistency scores the day's containers together to catch
// cross-subject drift a per-item check cannot see.
func (s *contentService) CheckBatchConsistency(ctx context.Context, userID uuid.UUID, request *dto.BatchConsistencyRequest) (*entity.BatchConsistencyReport, error) {
	dc, err := s.contexts.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	contents := make(map[string]*entity.GeneratedContent, len(request.ContainerIds))
	for _, containerID := range request.ContainerIds {
		subject := request.Subject
		if subject == "" {
			subject = subjectOf(containerID, dc.Subjects)
		}
		generated, err := s.orchestrator.GetContent(ctx, content.Request{
			UserId:        userID,
			ContainerId:   containerID,
			ContainerType: containerTypeOf(containerID),
			Subject:       subject,
			SkipPreload:   true,
		})
		if err != nil {
			return nil, err
		}
		contents[generated.Subject+"/"+containerID] = generated
	}

	return s.scorer.ScoreBatch(dc, contents), nil
}

func contextResponse(dc *entity.DailyContext) *dto.DailyContextResponse {
	return &dto.DailyContextResponse{
		SessionId:  dc.SessionId.String(),
		Career:     dc.Career,
		Skill:      dc.Skill,
		Companion:  dc.Companion,
		GradeLevel: dc.GradeLevel,
		Subjects:   dc.Subjects,
		ExpiresAt:  dc.ExpiresAt.Format(time.RFC3339),
	}
}

// subjectOf resolves a container id like "learn-math" against the day's
// subject list, falling back to the id suffix.
func subjectOf(containerID string, subjects []string) string {
	for _, subject := range subjects {
		if strings.HasSuffix(strings.ToLower(containerID), strings.ToLower(subject)) {
			return subject
		}
	}
	if idx := strings.IndexByte(containerID, '-'); idx >= 0 && idx+1 < len(containerID) {
		return containerID[idx+1:]
	}
	return containerID
}

func containerTypeOf(containerID string) string {
	if idx := strings.IndexByte(containerID, '-'); idx > 0 {
		return containerID[:idx]
	}
	return containerID
}
