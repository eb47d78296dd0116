package analytics

import (
	"context"
	"sync"
	"time"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/specification"
	"jit-learning-be/internal/repository/unitofwork"
	"jit-learning-be/pkg/events"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Engine consumes performance events, maintains per-skill mastery estimates,
// detects behavioral patterns, and emits adaptation recommendations.
//
// Event application is strictly ordered per user: each mastery update depends
// on the prior value, so a per-user mutex serializes Record calls. Users are
// independent of each other.
type Engine struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	log        logger.ILogger

	reportCache *cache.Cache // per-user cached analytics, invalidated on new events

	mu        sync.Mutex
	histories map[uuid.UUID]*userHistory
	locks     map[uuid.UUID]*sync.Mutex
}

// userHistory is the bounded per-user event window plus mastery state.
type userHistory struct {
	events    []*entity.PerformanceEvent // oldest first, capacity bounded
	masteries map[string]*entity.SkillMastery
	published map[string]bool // pattern kinds already announced
	loaded    bool            // durable warm-start attempted
}

func NewEngine(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	log logger.ILogger,
	cacheTTL time.Duration,
) *Engine {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Engine{
		uowFactory:  uowFactory,
		publisher:   publisher,
		log:         log,
		reportCache: cache.New(cacheTTL, 10*time.Minute),
		histories:   make(map[uuid.UUID]*userHistory),
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

func (e *Engine) userLock(userID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

func (e *Engine) history(ctx context.Context, userID uuid.UUID) *userHistory {
	e.mu.Lock()
	h, ok := e.histories[userID]
	if !ok {
		h = &userHistory{
			masteries: make(map[string]*entity.SkillMastery),
			published: make(map[string]bool),
		}
		e.histories[userID] = h
	}
	e.mu.Unlock()

	if !h.loaded {
		h.loaded = true
		e.warmStart(ctx, userID, h)
	}
	return h
}

// warmStart replays the durable event log into the in-memory window so a
// restart does not reset mastery to scratch. Best effort.
func (e *Engine) warmStart(ctx context.Context, userID uuid.UUID, h *userHistory) {
	if e.uowFactory == nil {
		return
	}
	uow := e.uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.PerformanceEventRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "timestamp", Desc: false},
		specification.Pagination{Limit: constant.PerformanceHistoryCapacity, Offset: 0},
	)
	if err != nil {
		e.log.Warn("analytics", "event warm-start failed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return
	}
	for _, ev := range stored {
		h.apply(ev)
	}
}

// Record applies one performance event: bounded history append, ELO mastery
// update, durable append, and report cache invalidation.
func (e *Engine) Record(ctx context.Context, event *entity.PerformanceEvent) {
	if event == nil {
		return
	}
	lock := e.userLock(event.UserId)
	lock.Lock()
	defer lock.Unlock()

	h := e.history(ctx, event.UserId)
	h.apply(event)

	// Any cached analytics are stale the moment a new event lands
	e.reportCache.Delete(reportKey(event.UserId))
	e.reportCache.Delete(timeKey(event.UserId))
	e.reportCache.Delete(errorKey(event.UserId))

	if e.uowFactory != nil {
		uow := e.uowFactory.NewUnitOfWork(ctx)
		if err := uow.PerformanceEventRepository().Create(ctx, event); err != nil {
			e.log.Warn("analytics", "durable event append failed", map[string]interface{}{
				"user_id": event.UserId.String(),
				"error":   err.Error(),
			})
		}
	}

	e.announceNewPatterns(ctx, event.UserId, h)
}

// apply mutates the history with one event. Caller holds the user lock.
func (h *userHistory) apply(event *entity.PerformanceEvent) {
	h.events = append(h.events, event)
	if len(h.events) > constant.PerformanceHistoryCapacity {
		h.events = h.events[len(h.events)-constant.PerformanceHistoryCapacity:]
	}
	if event.SkillId != "" {
		h.updateMastery(event)
	}
}

// updateMastery applies the ELO-style rule: the current mastery, read as a
// success probability, is the expectation; the delta is damped as mastery
// becomes established.
func (h *userHistory) updateMastery(event *entity.PerformanceEvent) {
	m, ok := h.masteries[event.SkillId]
	if !ok {
		m = &entity.SkillMastery{
			SkillId: event.SkillId,
			Level:   constant.MasteryInitial,
			Trend:   constant.TrendStable,
		}
		h.masteries[event.SkillId] = m
	}

	expected := m.Level / 100.0
	actual := 0.0
	if event.Correct {
		actual = 1.0
	}
	m.Level += constant.MasteryKFactor * (actual - expected)
	if m.Level < constant.MasteryMin {
		m.Level = constant.MasteryMin
	}
	if m.Level > constant.MasteryMax {
		m.Level = constant.MasteryMax
	}

	m.AttemptCount++
	m.LastPracticedAt = event.Timestamp

	skillEvents := h.skillEvents(event.SkillId)
	m.SuccessRate = accuracy(skillEvents)
	m.AverageTimeSeconds = averageTime(skillEvents)
	m.Trend = windowTrend(skillEvents)
}

func (h *userHistory) skillEvents(skillID string) []*entity.PerformanceEvent {
	var out []*entity.PerformanceEvent
	for _, ev := range h.events {
		if ev.SkillId == skillID {
			out = append(out, ev)
		}
	}
	return out
}

// windowTrend compares the most recent window against the one before it.
func windowTrend(events []*entity.PerformanceEvent) string {
	w := constant.TrendWindowSize
	if len(events) < 2*w {
		return constant.TrendStable
	}
	recent := accuracy(events[len(events)-w:])
	previous := accuracy(events[len(events)-2*w : len(events)-w])
	switch {
	case recent-previous > constant.TrendDeltaPoints:
		return constant.TrendImproving
	case previous-recent > constant.TrendDeltaPoints:
		return constant.TrendDeclining
	default:
		return constant.TrendStable
	}
}

// overallTrend splits the whole history in half. Sparse histories always read
// stable; noisy verdicts on a handful of events help nobody.
func overallTrend(events []*entity.PerformanceEvent) string {
	if len(events) < constant.TrendMinimumEvents {
		return constant.TrendStable
	}
	half := len(events) / 2
	first := accuracy(events[:half])
	second := accuracy(events[half:])
	switch {
	case second-first > constant.TrendDeltaPoints:
		return constant.TrendImproving
	case first-second > constant.TrendDeltaPoints:
		return constant.TrendDeclining
	default:
		return constant.TrendStable
	}
}

func accuracy(events []*entity.PerformanceEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	correct := 0
	for _, ev := range events {
		if ev.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(events)) * 100
}

func averageTime(events []*entity.PerformanceEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	total := 0.0
	for _, ev := range events {
		total += ev.TimeSpentSeconds
	}
	return total / float64(len(events))
}

func hintRate(events []*entity.PerformanceEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	hinted := 0
	for _, ev := range events {
		if ev.HintsUsed > 0 {
			hinted++
		}
	}
	return float64(hinted) / float64(len(events))
}

func reportKey(userID uuid.UUID) string { return "report:" + userID.String() }
func timeKey(userID uuid.UUID) string   { return "time:" + userID.String() }
func errorKey(userID uuid.UUID) string  { return "error:" + userID.String() }

// Report assembles (or returns the cached) full analytics view for a user.
func (e *Engine) Report(ctx context.Context, userID uuid.UUID) *entity.PerformanceReport {
	if cached, found := e.reportCache.Get(reportKey(userID)); found {
		return cached.(*entity.PerformanceReport)
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	h := e.history(ctx, userID)

	masteries := make(map[string]*entity.SkillMastery, len(h.masteries))
	for id, m := range h.masteries {
		copied := *m
		masteries[id] = &copied
	}

	patterns := detectPatterns(h.events)
	report := &entity.PerformanceReport{
		UserId:          userID,
		GeneratedAt:     time.Now(),
		TotalEvents:     len(h.events),
		OverallAccuracy: accuracy(h.events),
		AverageTime:     averageTime(h.events),
		HintRate:        hintRate(h.events),
		OverallTrend:    overallTrend(h.events),
		Masteries:       masteries,
		Patterns:        patterns,
		Recommendations: recommend(h.events, patterns),
	}

	e.reportCache.Set(reportKey(userID), report, cache.DefaultExpiration)
	return report
}

// PerformanceContext is the compact analytics slice the orchestrator folds
// into cache keys and generation parameters. Recent means the last ten events.
func (e *Engine) PerformanceContext(ctx context.Context, userID uuid.UUID) *entity.PerformanceContext {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	h := e.history(ctx, userID)

	recent := h.events
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	acc := accuracy(recent)
	avg := averageTime(recent)

	return &entity.PerformanceContext{
		AdaptationLevel:    bucketAdaptation(len(recent), acc, avg),
		RecentAccuracy:     acc,
		AverageTimeSeconds: avg,
		HintRate:           hintRate(recent),
		Streak:             currentStreak(h.events),
	}
}

func bucketAdaptation(samples int, acc, avg float64) string {
	if samples == 0 {
		return constant.AdaptationLevelMedium
	}
	if acc > constant.AdaptationHardMinAccuracy && avg < constant.AdaptationHardMaxAvgSeconds {
		return constant.AdaptationLevelHard
	}
	if acc < constant.AdaptationEasyMaxAccuracy || avg > constant.AdaptationEasyMinAvgSeconds {
		return constant.AdaptationLevelEasy
	}
	return constant.AdaptationLevelMedium
}

func currentStreak(events []*entity.PerformanceEvent) int {
	streak := 0
	for i := len(events) - 1; i >= 0; i-- {
		if !events[i].Correct {
			break
		}
		streak++
	}
	return streak
}

// announceNewPatterns publishes each pattern kind once per user.
func (e *Engine) announceNewPatterns(ctx context.Context, userID uuid.UUID, h *userHistory) {
	for _, p := range detectPatterns(h.events) {
		if h.published[p.Kind] {
			continue
		}
		h.published[p.Kind] = true
		if err := e.publisher.Publish(ctx, events.NewPatternDetected(userID.String(), p.Kind, p.Impact, p.Frequency)); err != nil {
			e.log.Warn("analytics", "failed to publish pattern event", map[string]interface{}{
				"user_id": userID.String(),
				"kind":    p.Kind,
				"error":   err.Error(),
			})
		}
	}
}
