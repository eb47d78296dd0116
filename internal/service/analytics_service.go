package service

import (
	"context"

	"jit-learning-be/internal/dto"
	"jit-learning-be/pkg/learning/analytics"

	"github.com/google/uuid"
)

type IAnalyticsService interface {
	Report(ctx context.Context, userID uuid.UUID) (*dto.PerformanceReportResponse, error)
	Context(ctx context.Context, userID uuid.UUID) (*dto.PerformanceContextResponse, error)
	TimeAnalysis(ctx context.Context, userID uuid.UUID) (*dto.TimeAnalysisResponse, error)
	ErrorAnalysis(ctx context.Context, userID uuid.UUID) (*dto.ErrorAnalysisResponse, error)
}

type analyticsService struct {
	engine *analytics.Engine
}

func NewAnalyticsService(engine *analytics.Engine) IAnalyticsService {
	return &analyticsService{engine: engine}
}

func (s *analyticsService) Report(ctx context.Context, userID uuid.UUID) (*dto.PerformanceReportResponse, error) {
	report := s.engine.Report(ctx, userID)
	return &dto.PerformanceReportResponse{
		UserId:          report.UserId,
		GeneratedAt:     report.GeneratedAt,
		TotalEvents:     report.TotalEvents,
		OverallAccuracy: report.OverallAccuracy,
		AverageTime:     report.AverageTime,
		HintRate:        report.HintRate,
		OverallTrend:    report.OverallTrend,
		Masteries:       report.Masteries,
		Patterns:        report.Patterns,
		Recommendations: report.Recommendations,
	}, nil
}

func (s *analyticsService) Context(ctx context.Context, userID uuid.UUID) (*dto.PerformanceContextResponse, error) {
	perf := s.engine.PerformanceContext(ctx, userID)
	return &dto.PerformanceContextResponse{
		AdaptationLevel:    perf.AdaptationLevel,
		RecentAccuracy:     perf.RecentAccuracy,
		AverageTimeSeconds: perf.AverageTimeSeconds,
		HintRate:           perf.HintRate,
		Streak:             perf.Streak,
	}, nil
}

func (s *analyticsService) TimeAnalysis(ctx context.Context, userID uuid.UUID) (*dto.TimeAnalysisResponse, error) {
	analysis := s.engine.TimeSpent(ctx, userID)
	return &dto.TimeAnalysisResponse{
		AverageSeconds: analysis.AverageSeconds,
		PerType:        analysis.PerType,
		FastestType:    analysis.FastestType,
		SlowestType:    analysis.SlowestType,
	}, nil
}

func (s *analyticsService) ErrorAnalysis(ctx context.Context, userID uuid.UUID) (*dto.ErrorAnalysisResponse, error) {
	analysis := s.engine.Errors(ctx, userID)
	return &dto.ErrorAnalysisResponse{
		TotalErrors:     analysis.TotalErrors,
		ErrorRate:       analysis.ErrorRate,
		RatePerType:     analysis.RatePerType,
		ErrorsBySubject: analysis.ErrorsBySubject,
	}, nil
}
