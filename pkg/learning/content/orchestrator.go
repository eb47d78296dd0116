package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/pkg/genai"
	"jit-learning-be/pkg/learning/consistency"
	"jit-learning-be/pkg/learning/dailyctx"

	"github.com/google/uuid"
)

// Analytics is the slice of the analytics engine the orchestrator consumes.
type Analytics interface {
	PerformanceContext(ctx context.Context, userID uuid.UUID) *entity.PerformanceContext
	Report(ctx context.Context, userID uuid.UUID) *entity.PerformanceReport
}

// Preloader queues likely next containers for background generation.
type Preloader interface {
	Schedule(ctx context.Context, userID uuid.UUID, containerID, subject string)
}

// Request asks for one container's worth of content.
type Request struct {
	UserId        uuid.UUID
	ContainerId   string
	ContainerType string
	Subject       string
	Force         bool // bypass the cache and regenerate
	SkipPreload   bool // set for preload-triggered generation to avoid fan-out
}

// inflight tracks one in-progress generation so concurrent misses for the
// same key await a single result instead of duplicating the work.
type inflight struct {
	wg      sync.WaitGroup
	content *entity.GeneratedContent
	err     error
}

// Orchestrator is the top-level content entry point: it resolves the cache
// key from the day's context and current performance, serves hits, and on a
// miss drives the full generation pipeline (adaptation, provider with
// template fallback, consistency gate, cache write, predictive preload).
type Orchestrator struct {
	contexts  dailyctx.Provider
	analytics Analytics
	provider  genai.ContentProvider
	fallback  genai.ContentProvider
	scorer    *consistency.Scorer
	cache     *TieredCache
	preloader Preloader
	logger    logger.ILogger

	mu     sync.Mutex
	flight map[string]*inflight
}

func NewOrchestrator(
	contexts dailyctx.Provider,
	analytics Analytics,
	provider genai.ContentProvider,
	fallback genai.ContentProvider,
	scorer *consistency.Scorer,
	cache *TieredCache,
	preloader Preloader,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		contexts:  contexts,
		analytics: analytics,
		provider:  provider,
		fallback:  fallback,
		scorer:    scorer,
		cache:     cache,
		preloader: preloader,
		logger:    log,
		flight:    make(map[string]*inflight),
	}
}

// GetContent serves a container's content, generating it when the cache
// misses. Returns dailyctx.ErrContextUnavailable when no daily context
// exists, and genai.ErrGenerationFailed when every generation path failed.
func (o *Orchestrator) GetContent(ctx context.Context, req Request) (*entity.GeneratedContent, error) {
	dc, err := o.contexts.Current(ctx, req.UserId)
	if err != nil {
		return nil, err
	}

	perf := o.analytics.PerformanceContext(ctx, req.UserId)
	key := BuildCacheKey(CacheKeyInput{
		UserId:          req.UserId.String(),
		ContainerId:     req.ContainerId,
		Subject:         req.Subject,
		CareerId:        dc.Career.Id,
		SkillId:         dc.Skill.Id,
		AdaptationLevel: perf.AdaptationLevel,
		RecentAccuracy:  perf.RecentAccuracy,
	})

	if !req.Force {
		if cached, ok := o.cache.Get(ctx, key); ok {
			o.logger.Debug("content_orchestrator", "cache hit", map[string]interface{}{"key": key})
			o.schedulePreload(ctx, req)
			return cached, nil
		}
	}

	generated, err := o.generateOnce(ctx, key, req, dc, perf)
	if err != nil {
		return nil, err
	}
	o.schedulePreload(ctx, req)
	return generated, nil
}

// InvalidateUser drops all cached content for the user (both tiers and the
// durable copies). Call after adaptation-relevant state changes.
func (o *Orchestrator) InvalidateUser(ctx context.Context, userID uuid.UUID) int {
	return o.cache.InvalidateUser(ctx, userID.String())
}

// generateOnce funnels concurrent misses for the same key into a single
// generation call.
func (o *Orchestrator) generateOnce(ctx context.Context, key string, req Request, dc *entity.DailyContext, perf *entity.PerformanceContext) (*entity.GeneratedContent, error) {
	o.mu.Lock()
	if existing, ok := o.flight[key]; ok {
		o.mu.Unlock()
		existing.wg.Wait()
		return existing.content, existing.err
	}
	call := &inflight{}
	call.wg.Add(1)
	o.flight[key] = call
	o.mu.Unlock()

	call.content, call.err = o.generate(ctx, key, req, dc, perf)
	call.wg.Done()

	o.mu.Lock()
	delete(o.flight, key)
	o.mu.Unlock()

	return call.content, call.err
}

func (o *Orchestrator) generate(ctx context.Context, key string, req Request, dc *entity.DailyContext, perf *entity.PerformanceContext) (*entity.GeneratedContent, error) {
	started := time.Now()

	adaptations := o.deriveAdaptations(ctx, req.UserId, dc, perf)
	genReq := genai.GenerationRequest{
		ContainerId:   req.ContainerId,
		ContainerType: req.ContainerType,
		Subject:       req.Subject,
		Career:        dc.Career,
		Skill:         dc.Skill,
		Companion:     dc.Companion,
		GradeLevel:    dc.GradeLevel,
		Difficulty:    adaptations.Difficulty,
		QuestionCount: adaptations.QuestionCount,
		HintDensity:   adaptations.HintDensity,
		VisualBias:    adaptations.VisualBias,
		AvoidType:     adaptations.SwappedType,
	}

	generated, source := o.generateWithFallback(ctx, genReq)
	if generated == nil {
		return nil, fmt.Errorf("%w: all generation paths exhausted", genai.ErrGenerationFailed)
	}

	// The provider may salvage only part of a malformed response. Fill the
	// remaining slots from templates so the container always carries the
	// requested question count.
	if missing := genReq.QuestionCount - len(generated.Questions); missing > 0 {
		o.logger.Warn("content_orchestrator", "short generation, topping up from templates", map[string]interface{}{
			"key":       key,
			"requested": genReq.QuestionCount,
			"received":  len(generated.Questions),
		})
		topUp := genReq
		topUp.QuestionCount = missing
		if filler, err := o.fallback.GenerateContainer(ctx, topUp); err == nil {
			generated.Questions = append(generated.Questions, filler.Questions...)
		}
	}

	report := o.scorer.Score(dc, generated)
	if !report.IsConsistent {
		o.logger.Info("content_orchestrator", "content failed consistency gate, rewriting", map[string]interface{}{
			"key":        key,
			"aggregate":  report.Aggregate,
			"violations": len(report.Violations),
		})
		o.scorer.Rewrite(dc, generated)
		report = o.scorer.Score(dc, generated)
	}

	generated.Metadata.Source = source
	generated.Metadata.GeneratedAt = started
	generated.Metadata.GenerationMillis = time.Since(started).Milliseconds()
	generated.Metadata.Adaptations = adaptations
	generated.Metadata.ConsistencyScore = report.Aggregate

	o.cache.Put(ctx, key, req.UserId.String(), generated)
	o.logger.Info("content_orchestrator", "content generated", map[string]interface{}{
		"key":         key,
		"source":      source,
		"questions":   len(generated.Questions),
		"consistency": report.Aggregate,
		"millis":      generated.Metadata.GenerationMillis,
	})
	return generated, nil
}

// generateWithFallback tries the primary provider within the attempt budget,
// then the template fallback. A provider error is recovered locally, never
// surfaced to the caller.
func (o *Orchestrator) generateWithFallback(ctx context.Context, req genai.GenerationRequest) (*entity.GeneratedContent, string) {
	for attempt := 1; attempt <= constant.GenerationAttemptBudget; attempt++ {
		generated, err := o.provider.GenerateContainer(ctx, req)
		if err == nil {
			return generated, entity.ContentSourceAI
		}
		o.logger.Warn("content_orchestrator", "provider generation failed", map[string]interface{}{
			"container": req.ContainerId,
			"attempt":   attempt,
			"error":     err.Error(),
		})
		if errors.Is(ctx.Err(), context.Canceled) {
			break
		}
	}

	generated, err := o.fallback.GenerateContainer(ctx, req)
	if err != nil {
		o.logger.Error("content_orchestrator", "template fallback failed", map[string]interface{}{
			"container": req.ContainerId,
			"error":     err.Error(),
		})
		return nil, ""
	}
	return generated, entity.ContentSourceTemplate
}

// deriveAdaptations folds the analytics recommendations into concrete
// generation parameters, clamped to sane bounds for the grade level.
func (o *Orchestrator) deriveAdaptations(ctx context.Context, userID uuid.UUID, dc *entity.DailyContext, perf *entity.PerformanceContext) entity.AppliedAdaptations {
	adaptations := entity.AppliedAdaptations{
		Difficulty:    perf.AdaptationLevel,
		QuestionCount: 5,
		HintDensity:   "medium",
	}

	report := o.analytics.Report(ctx, userID)
	if report != nil {
		for _, rec := range report.Recommendations {
			switch rec.Action {
			case entity.ActionIncreaseDifficulty:
				adaptations.Difficulty = raiseDifficulty(adaptations.Difficulty)
			case entity.ActionDecreaseDifficulty:
				adaptations.Difficulty = lowerDifficulty(adaptations.Difficulty)
			case entity.ActionIncreaseQuantity:
				adaptations.QuestionCount += 2
			case entity.ActionDecreaseQuantity:
				adaptations.QuestionCount -= 2
			case entity.ActionIncreaseHints:
				adaptations.HintDensity = "high"
			case entity.ActionSwapQuestionType:
				adaptations.SwappedType = rec.Target
			case entity.ActionIncreaseVisual:
				adaptations.VisualBias = true
			}
		}
	}

	if adaptations.QuestionCount < constant.QuestionCountMin {
		adaptations.QuestionCount = constant.QuestionCountMin
	}
	if adaptations.QuestionCount > constant.QuestionCountMax {
		adaptations.QuestionCount = constant.QuestionCountMax
	}
	// Young learners never get hard content.
	if dc.GradeLevel < constant.GradeDifficultyClampBelow && adaptations.Difficulty == constant.AdaptationLevelHard {
		adaptations.Difficulty = constant.AdaptationLevelMedium
	}
	return adaptations
}

func (o *Orchestrator) schedulePreload(ctx context.Context, req Request) {
	if req.SkipPreload || o.preloader == nil {
		return
	}
	o.preloader.Schedule(ctx, req.UserId, req.ContainerId, req.Subject)
}

func raiseDifficulty(level string) string {
	switch level {
	case constant.AdaptationLevelEasy:
		return constant.AdaptationLevelMedium
	default:
		return constant.AdaptationLevelHard
	}
}

func lowerDifficulty(level string) string {
	switch level {
	case constant.AdaptationLevelHard:
		return constant.AdaptationLevelMedium
	default:
		return constant.AdaptationLevelEasy
	}
}
