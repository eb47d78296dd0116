package service

import (
	"context"

	"jit-learning-be/internal/dto"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/repository/specification"
	"jit-learning-be/internal/repository/unitofwork"
	"jit-learning-be/pkg/learning/analytics"
	"jit-learning-be/pkg/learning/dailyctx"
	"jit-learning-be/pkg/learning/progression"

	"github.com/google/uuid"
)

// ProgressBroadcaster pushes live progress updates to a user's open
// websocket connections. A nil broadcaster disables pushes.
type ProgressBroadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, payload interface{})
}

type ISessionService interface {
	Initialize(ctx context.Context, userID uuid.UUID, request *dto.InitializeSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
	EnterContainer(ctx context.Context, userID uuid.UUID, request *dto.EnterContainerRequest) (*dto.SessionResponse, error)
	RecordAnswer(ctx context.Context, userID uuid.UUID, request *dto.RecordAnswerRequest) (*dto.SessionResponse, error)
	CompleteContainer(ctx context.Context, userID uuid.UUID, request *dto.CompleteContainerRequest) (*dto.SessionResponse, error)
	ValidateProgression(ctx context.Context, userID uuid.UUID, request *dto.ValidateProgressionRequest) (*dto.ValidateProgressionResponse, error)
	ClearSession(ctx context.Context, userID uuid.UUID) error
	GetArchives(ctx context.Context, userID uuid.UUID, limit int) ([]*dto.SessionArchiveResponse, error)
}

type sessionService struct {
	tracker     *progression.Tracker
	analytics   *analytics.Engine
	contexts    dailyctx.Provider
	uowFactory  unitofwork.RepositoryFactory
	broadcaster ProgressBroadcaster
}

func NewSessionService(
	tracker *progression.Tracker,
	analyticsEngine *analytics.Engine,
	contexts dailyctx.Provider,
	uowFactory unitofwork.RepositoryFactory,
	broadcaster ProgressBroadcaster,
) ISessionService {
	return &sessionService{
		tracker:     tracker,
		analytics:   analyticsEngine,
		contexts:    contexts,
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

func (s *sessionService) Initialize(ctx context.Context, userID uuid.UUID, request *dto.InitializeSessionRequest) (*dto.SessionResponse, error) {
	contextSessionID := uuid.Nil
	if dc, err := s.contexts.Current(ctx, userID); err == nil {
		contextSessionID = dc.SessionId
	}
	state := s.tracker.Initialize(ctx, userID, contextSessionID, request.ExpectedPath)
	return sessionResponse(state), nil
}

func (s *sessionService) GetSession(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	state := s.tracker.Session(ctx, userID)
	if state == nil {
		return nil, nil
	}
	return sessionResponse(state), nil
}

func (s *sessionService) EnterContainer(ctx context.Context, userID uuid.UUID, request *dto.EnterContainerRequest) (*dto.SessionResponse, error) {
	s.tracker.EnterContainer(ctx, userID, request.ContainerId, request.ContainerType, request.Subject)
	state := s.tracker.Session(ctx, userID)
	return sessionResponse(state), nil
}

func (s *sessionService) RecordAnswer(ctx context.Context, userID uuid.UUID, request *dto.RecordAnswerRequest) (*dto.SessionResponse, error) {
	event := s.tracker.RecordAnswer(ctx, userID, progression.AnswerInput{
		QuestionID:       request.QuestionId,
		QuestionType:     request.QuestionType,
		SkillID:          request.SkillId,
		Difficulty:       request.Difficulty,
		Correct:          request.Correct,
		TimeSpentSeconds: request.TimeSpentSeconds,
		HintsUsed:        request.HintsUsed,
		AttemptCount:     request.AttemptCount,
		XpAwarded:        request.XpAwarded,
	})
	if event != nil {
		s.analytics.Record(ctx, event)
	}

	state := s.tracker.Session(ctx, userID)
	response := sessionResponse(state)

	if s.broadcaster != nil && event != nil {
		s.broadcaster.BroadcastToUser(userID, "progress", s.analytics.PerformanceContext(ctx, userID))
	}
	return response, nil
}

func (s *sessionService) CompleteContainer(ctx context.Context, userID uuid.UUID, request *dto.CompleteContainerRequest) (*dto.SessionResponse, error) {
	s.tracker.CompleteContainer(ctx, userID, request.ContainerId)
	state := s.tracker.Session(ctx, userID)
	response := sessionResponse(state)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToUser(userID, "container_completed", map[string]interface{}{
			"container_id": request.ContainerId,
		})
	}
	return response, nil
}

func (s *sessionService) ValidateProgression(ctx context.Context, userID uuid.UUID, request *dto.ValidateProgressionRequest) (*dto.ValidateProgressionResponse, error) {
	result := s.tracker.ValidateProgression(ctx, userID, request.TargetContainerId)
	return &dto.ValidateProgressionResponse{
		Allowed:            result.Allowed,
		Reason:             result.Reason,
		SuggestedContainer: result.SuggestedContainer,
	}, nil
}

func (s *sessionService) ClearSession(ctx context.Context, userID uuid.UUID) error {
	s.tracker.Clear(ctx, userID)
	return nil
}

func (s *sessionService) GetArchives(ctx context.Context, userID uuid.UUID, limit int) ([]*dto.SessionArchiveResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	archives, err := uow.SessionArchiveRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "archived_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SessionArchiveResponse, 0, len(archives))
	for _, archive := range archives {
		responses = append(responses, &dto.SessionArchiveResponse{
			SessionId:      archive.SessionId,
			Reason:         archive.Reason,
			Metrics:        archive.Metrics,
			ContainersSeen: len(archive.Containers),
			StartedAt:      archive.StartedAt,
			ArchivedAt:     archive.ArchivedAt,
		})
	}
	return responses, nil
}

func sessionResponse(state *entity.SessionState) *dto.SessionResponse {
	if state == nil {
		return nil
	}
	return &dto.SessionResponse{
		SessionId:       state.SessionId,
		Current:         state.Current,
		Active:          state.Active,
		Completed:       state.Completed,
		Metrics:         state.Metrics,
		ExpectedPath:    state.ExpectedPath,
		ActualPath:      state.ActualPath,
		AdaptationLevel: state.AdaptationLevel,
		StartedAt:       state.StartedAt,
		LastActivityAt:  state.LastActivityAt,
	}
}
