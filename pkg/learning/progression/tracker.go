package progression

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"
	"jit-learning-be/internal/repository/unitofwork"
	"jit-learning-be/pkg/events"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// ProgressionResult is the verdict of a progression check.
type ProgressionResult struct {
	Allowed            bool   `json:"allowed"`
	Reason             string `json:"reason,omitempty"`
	SuggestedContainer string `json:"suggested_container,omitempty"`
}

// Tracker owns per-user session progression state: the current container,
// active and completed containers, raw performance counters, and the
// expected vs. actual navigation path.
//
// Live state sits in the session-scoped key/value store; archived summaries
// go to the durable archive. Expired sessions are archived lazily on the
// next read, and any subsequent write re-initializes a fresh session.
type Tracker struct {
	kv         memory.KVStore
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	log        logger.ILogger
	inactivity time.Duration

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewTracker(
	kv memory.KVStore,
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	log logger.ILogger,
	inactivity time.Duration,
) *Tracker {
	if inactivity <= 0 {
		inactivity = constant.SessionInactivityTimeout
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Tracker{
		kv:         kv,
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
		inactivity: inactivity,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// userLock serializes all mutation for a single user; updates depend on the
// prior state so they must apply in arrival order.
func (t *Tracker) userLock(userID uuid.UUID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// Initialize creates a fresh session for the user, replacing any live one.
func (t *Tracker) Initialize(ctx context.Context, userID, contextSessionID uuid.UUID, expectedPath []string) *entity.SessionState {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return t.initializeLocked(ctx, userID, contextSessionID, expectedPath)
}

func (t *Tracker) initializeLocked(ctx context.Context, userID, contextSessionID uuid.UUID, expectedPath []string) *entity.SessionState {
	now := time.Now()
	state := &entity.SessionState{
		SessionId:        uuid.New(),
		UserId:           userID,
		ContextSessionId: contextSessionID,
		Active:           []*entity.ContainerRecord{},
		Completed:        []*entity.ContainerRecord{},
		StartedAt:        now,
		LastActivityAt:   now,
		ExpectedPath:     expectedPath,
		ActualPath:       []string{},
		AdaptationLevel:  constant.AdaptationLevelMedium,
		IsActive:         true,
	}
	t.save(ctx, state)
	t.log.Info("progression", "session initialized", map[string]interface{}{
		"session_id": state.SessionId.String(),
		"user_id":    userID.String(),
	})
	return state
}

// Session returns the user's live session, archiving it first if it has been
// inactive past the threshold. Returns nil when no live session exists.
func (t *Tracker) Session(ctx context.Context, userID uuid.UUID) *entity.SessionState {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return t.sessionLocked(ctx, userID)
}

func (t *Tracker) sessionLocked(ctx context.Context, userID uuid.UUID) *entity.SessionState {
	raw, found, err := t.kv.Get(ctx, sessionKeyPrefix+userID.String())
	if err != nil {
		t.log.Warn("progression", "session read failed, treating as miss", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil
	}
	if !found {
		return nil
	}

	var state entity.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		t.log.Warn("progression", "stored session is malformed, discarding", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		_ = t.kv.Delete(ctx, sessionKeyPrefix+userID.String())
		return nil
	}

	if time.Since(state.LastActivityAt) > t.inactivity {
		t.archiveLocked(ctx, &state, constant.SessionArchiveReasonTimeout)
		return nil
	}
	return &state
}

// sessionForWrite returns the live session or transparently re-initializes
// one when the previous session expired.
func (t *Tracker) sessionForWrite(ctx context.Context, userID uuid.UUID) *entity.SessionState {
	if state := t.sessionLocked(ctx, userID); state != nil {
		return state
	}
	return t.initializeLocked(ctx, userID, uuid.Nil, nil)
}

// EnterContainer makes the container current, reusing a record from the
// active or completed lists when the container was visited before. Switching
// away from a different current container closes it implicitly (end time set,
// record kept in the active list so it can be resumed).
func (t *Tracker) EnterContainer(ctx context.Context, userID uuid.UUID, containerID, containerType, subject string) *entity.ContainerRecord {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state := t.sessionForWrite(ctx, userID)
	now := time.Now()

	if state.Current != nil && state.Current.Id != containerID {
		t.closeCurrentLocked(state, now)
	}

	var record *entity.ContainerRecord
	if state.Current != nil && state.Current.Id == containerID {
		record = state.Current
	} else {
		for i, active := range state.Active {
			if active.Id == containerID {
				record = active
				record.EndedAt = nil // resumed
				state.Active = append(state.Active[:i], state.Active[i+1:]...)
				break
			}
		}
	}
	// A completed container can be revisited too; pull the record back out
	// so the id never appears twice across the lists.
	if record == nil {
		for i, done := range state.Completed {
			if done.Id == containerID {
				record = done
				record.EndedAt = nil
				state.Completed = append(state.Completed[:i], state.Completed[i+1:]...)
				break
			}
		}
	}
	if record == nil {
		record = &entity.ContainerRecord{
			Id:        containerID,
			Type:      containerType,
			Subject:   subject,
			StartedAt: now,
		}
	}

	state.Current = record
	state.ActualPath = append(state.ActualPath, containerID)
	state.LastActivityAt = now
	state.AdaptationLevel = computeAdaptationLevel(&state.Metrics)
	t.save(ctx, state)

	return record
}

// closeCurrentLocked moves the current container into the active list with
// its end time set. It stays resumable; only CompleteContainer finalizes it.
func (t *Tracker) closeCurrentLocked(state *entity.SessionState, now time.Time) {
	record := state.Current
	ended := now
	record.EndedAt = &ended
	state.Active = append(state.Active, record)
	state.Current = nil
}

// RecordAnswer applies one answered question to the current container.
// Recording with no current container is a warning, never an error. The
// returned event is nil in that case.
func (t *Tracker) RecordAnswer(ctx context.Context, userID uuid.UUID, answer AnswerInput) *entity.PerformanceEvent {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state := t.sessionForWrite(ctx, userID)
	if state.Current == nil {
		t.log.Warn("progression", "answer recorded with no current container, ignoring", map[string]interface{}{
			"user_id":     userID.String(),
			"question_id": answer.QuestionID,
		})
		return nil
	}

	now := time.Now()
	record := state.Current
	record.QuestionsAnswered++
	record.TimeSpentSeconds += answer.TimeSpentSeconds
	record.HintsUsed += answer.HintsUsed
	record.XpEarned += answer.XpAwarded
	if answer.Correct {
		record.CorrectAnswers++
	} else {
		record.IncorrectAnswers++
	}

	m := &state.Metrics
	m.TotalQuestions++
	m.HintsUsed += answer.HintsUsed
	m.XpEarned += answer.XpAwarded
	if answer.Correct {
		m.CorrectAnswers++
		m.CurrentStreak++
		if m.CurrentStreak > m.BestStreak {
			m.BestStreak = m.CurrentStreak
		}
	} else {
		m.IncorrectAnswers++
		m.CurrentStreak = 0
	}
	t.recomputeDerivedLocked(state)

	state.AdaptationLevel = computeAdaptationLevel(m)
	state.LastActivityAt = now
	t.save(ctx, state)

	return &entity.PerformanceEvent{
		Id:               uuid.New(),
		UserId:           userID,
		QuestionId:       answer.QuestionID,
		QuestionType:     answer.QuestionType,
		Subject:          record.Subject,
		SkillId:          answer.SkillID,
		Difficulty:       answer.Difficulty,
		Correct:          answer.Correct,
		TimeSpentSeconds: answer.TimeSpentSeconds,
		HintsUsed:        answer.HintsUsed,
		AttemptCount:     answer.AttemptCount,
		ContainerId:      record.Id,
		XpAwarded:        answer.XpAwarded,
		Timestamp:        now,
	}
}

// AnswerInput carries one answered question into the tracker.
type AnswerInput struct {
	QuestionID       string
	QuestionType     string
	SkillID          string
	Difficulty       string
	Correct          bool
	TimeSpentSeconds float64
	HintsUsed        int
	AttemptCount     int
	XpAwarded        int
}

// recomputeDerivedLocked refreshes accuracy and average time from the raw
// counters of every tracked container.
func (t *Tracker) recomputeDerivedLocked(state *entity.SessionState) {
	m := &state.Metrics
	if m.TotalQuestions > 0 {
		m.OverallAccuracy = float64(m.CorrectAnswers) / float64(m.TotalQuestions) * 100
	} else {
		m.OverallAccuracy = 0
	}

	totalTime := 0.0
	totalQuestions := 0
	records := make([]*entity.ContainerRecord, 0, len(state.Active)+len(state.Completed)+1)
	if state.Current != nil {
		records = append(records, state.Current)
	}
	records = append(records, state.Active...)
	records = append(records, state.Completed...)
	for _, r := range records {
		totalTime += r.TimeSpentSeconds
		totalQuestions += r.QuestionsAnswered
	}
	if totalQuestions > 0 {
		m.AverageTimeSeconds = totalTime / float64(totalQuestions)
	} else {
		m.AverageTimeSeconds = 0
	}
}

// CompleteContainer finalizes the container: end time set, elapsed seconds
// computed from start to end, completion rate 100 when at least one question
// was answered, and the record moved to the completed list.
func (t *Tracker) CompleteContainer(ctx context.Context, userID uuid.UUID, containerID string) *entity.ContainerRecord {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state := t.sessionForWrite(ctx, userID)

	var record *entity.ContainerRecord
	if state.Current != nil && state.Current.Id == containerID {
		record = state.Current
		state.Current = nil
	} else {
		for i, active := range state.Active {
			if active.Id == containerID {
				record = active
				state.Active = append(state.Active[:i], state.Active[i+1:]...)
				break
			}
		}
	}
	if record == nil {
		t.log.Warn("progression", "complete requested for untracked container", map[string]interface{}{
			"user_id":      userID.String(),
			"container_id": containerID,
		})
		return nil
	}

	now := time.Now()
	record.EndedAt = &now
	record.TimeSpentSeconds = now.Sub(record.StartedAt).Seconds()
	if record.QuestionsAnswered > 0 {
		record.CompletionRate = 100
	} else {
		record.CompletionRate = 0
	}
	state.Completed = append(state.Completed, record)

	t.recomputeDerivedLocked(state)
	state.LastActivityAt = now
	t.save(ctx, state)

	return record
}

// ValidateProgression decides whether the user may move on to the target
// container. A sub-par current container or low overall accuracy blocks the
// move; low accuracy also suggests a remedial re-run of the weakest
// completed container.
func (t *Tracker) ValidateProgression(ctx context.Context, userID uuid.UUID, targetContainerID string) ProgressionResult {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state := t.sessionLocked(ctx, userID)
	if state == nil {
		return ProgressionResult{Allowed: true}
	}

	if state.Current != nil && state.Current.CompletionRate < constant.ProgressionMinCompletionRate {
		return ProgressionResult{
			Allowed: false,
			Reason:  "current container not sufficiently complete",
		}
	}

	if state.Metrics.OverallAccuracy < constant.ProgressionMinAccuracy && len(state.Completed) > 0 {
		worst := worstCompleted(state.Completed)
		return ProgressionResult{
			Allowed:            false,
			Reason:             "overall accuracy below progression threshold",
			SuggestedContainer: worst.Type + "-" + worst.Subject + "-review",
		}
	}

	if next := t.expectedNext(state); next != "" && next != targetContainerID {
		t.log.Info("progression", "target deviates from expected path", map[string]interface{}{
			"user_id":  userID.String(),
			"expected": next,
			"target":   targetContainerID,
		})
	}
	return ProgressionResult{Allowed: true}
}

func (t *Tracker) expectedNext(state *entity.SessionState) string {
	idx := len(state.Completed)
	if idx < len(state.ExpectedPath) {
		return state.ExpectedPath[idx]
	}
	return ""
}

// worstCompleted returns the completed container with the lowest accuracy.
func worstCompleted(completed []*entity.ContainerRecord) *entity.ContainerRecord {
	worst := completed[0]
	worstAcc := containerAccuracy(worst)
	for _, r := range completed[1:] {
		if acc := containerAccuracy(r); acc < worstAcc {
			worst, worstAcc = r, acc
		}
	}
	return worst
}

func containerAccuracy(r *entity.ContainerRecord) float64 {
	if r.QuestionsAnswered == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.QuestionsAnswered) * 100
}

// Clear archives the session immediately (explicit logout).
func (t *Tracker) Clear(ctx context.Context, userID uuid.UUID) {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	raw, found, err := t.kv.Get(ctx, sessionKeyPrefix+userID.String())
	if err != nil || !found {
		return
	}
	var state entity.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		_ = t.kv.Delete(ctx, sessionKeyPrefix+userID.String())
		return
	}
	t.archiveLocked(ctx, &state, constant.SessionArchiveReasonClear)
}

// archiveLocked persists the session summary, emits the archived event, and
// drops the live state. Archive persistence is best effort.
func (t *Tracker) archiveLocked(ctx context.Context, state *entity.SessionState, reason string) {
	state.IsActive = false
	now := time.Now()

	containers := make([]*entity.ContainerRecord, 0, len(state.Completed)+len(state.Active)+1)
	containers = append(containers, state.Completed...)
	containers = append(containers, state.Active...)
	if state.Current != nil {
		containers = append(containers, state.Current)
	}

	archive := &entity.SessionArchive{
		Id:           uuid.New(),
		SessionId:    state.SessionId,
		UserId:       state.UserId,
		Reason:       reason,
		Metrics:      state.Metrics,
		Containers:   containers,
		ExpectedPath: state.ExpectedPath,
		ActualPath:   state.ActualPath,
		StartedAt:    state.StartedAt,
		ArchivedAt:   now,
	}

	if t.uowFactory != nil {
		uow := t.uowFactory.NewUnitOfWork(ctx)
		if err := uow.SessionArchiveRepository().Create(ctx, archive); err != nil {
			t.log.Error("progression", "failed to persist session archive", map[string]interface{}{
				"session_id": state.SessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	if err := t.publisher.Publish(ctx, events.NewSessionArchived(
		state.SessionId.String(), state.UserId.String(), reason, state.Metrics.OverallAccuracy,
	)); err != nil {
		t.log.Warn("progression", "failed to publish session archived event", map[string]interface{}{
			"session_id": state.SessionId.String(),
			"error":      err.Error(),
		})
	}

	if err := t.kv.Delete(ctx, sessionKeyPrefix+state.UserId.String()); err != nil {
		t.log.Warn("progression", "failed to drop live session state", map[string]interface{}{
			"session_id": state.SessionId.String(),
			"error":      err.Error(),
		})
	}

	t.log.Info("progression", "session archived", map[string]interface{}{
		"session_id": state.SessionId.String(),
		"reason":     reason,
	})
}

func (t *Tracker) save(ctx context.Context, state *entity.SessionState) {
	raw, err := json.Marshal(state)
	if err != nil {
		t.log.Error("progression", "failed to marshal session state", map[string]interface{}{
			"session_id": state.SessionId.String(),
			"error":      err.Error(),
		})
		return
	}
	if err := t.kv.Set(ctx, sessionKeyPrefix+state.UserId.String(), raw, memory.NoExpiry); err != nil {
		// Best effort; next read becomes a miss and re-initializes
		t.log.Warn("progression", "failed to persist session state", map[string]interface{}{
			"session_id": state.SessionId.String(),
			"error":      err.Error(),
		})
	}
}

// computeAdaptationLevel buckets recent performance into a coarse difficulty.
func computeAdaptationLevel(m *entity.PerformanceMetrics) string {
	if m.TotalQuestions == 0 {
		return constant.AdaptationLevelMedium
	}
	if m.OverallAccuracy > constant.AdaptationHardMinAccuracy && m.AverageTimeSeconds < constant.AdaptationHardMaxAvgSeconds {
		return constant.AdaptationLevelHard
	}
	if m.OverallAccuracy < constant.AdaptationEasyMaxAccuracy || m.AverageTimeSeconds > constant.AdaptationEasyMinAvgSeconds {
		return constant.AdaptationLevelEasy
	}
	return constant.AdaptationLevelMedium
}
