package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TimeAnalysis breaks response time down per question type.
type TimeAnalysis struct {
	UserId         uuid.UUID          `json:"user_id"`
	GeneratedAt    time.Time          `json:"generated_at"`
	AverageSeconds float64            `json:"average_seconds"`
	PerType        map[string]float64 `json:"per_type"`
	FastestType    string             `json:"fastest_type"`
	SlowestType    string             `json:"slowest_type"`
}

// ErrorAnalysis breaks incorrect answers down per question type and subject.
type ErrorAnalysis struct {
	UserId          uuid.UUID          `json:"user_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	TotalErrors     int                `json:"total_errors"`
	ErrorRate       float64            `json:"error_rate"` // 0-100
	RatePerType     map[string]float64 `json:"rate_per_type"`
	ErrorsBySubject map[string]int     `json:"errors_by_subject"`
}

// TimeSpent returns the cached per-type time analysis for a user.
func (e *Engine) TimeSpent(ctx context.Context, userID uuid.UUID) *TimeAnalysis {
	if cached, found := e.reportCache.Get(timeKey(userID)); found {
		return cached.(*TimeAnalysis)
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	h := e.history(ctx, userID)

	perType := make(map[string]float64)
	counts := make(map[string]int)
	for _, ev := range h.events {
		perType[ev.QuestionType] += ev.TimeSpentSeconds
		counts[ev.QuestionType]++
	}
	fastest, slowest := "", ""
	for qType := range perType {
		perType[qType] /= float64(counts[qType])
		if fastest == "" || perType[qType] < perType[fastest] {
			fastest = qType
		}
		if slowest == "" || perType[qType] > perType[slowest] {
			slowest = qType
		}
	}

	analysis := &TimeAnalysis{
		UserId:         userID,
		GeneratedAt:    time.Now(),
		AverageSeconds: averageTime(h.events),
		PerType:        perType,
		FastestType:    fastest,
		SlowestType:    slowest,
	}
	e.reportCache.Set(timeKey(userID), analysis, cache.DefaultExpiration)
	return analysis
}

// Errors returns the cached error breakdown for a user.
func (e *Engine) Errors(ctx context.Context, userID uuid.UUID) *ErrorAnalysis {
	if cached, found := e.reportCache.Get(errorKey(userID)); found {
		return cached.(*ErrorAnalysis)
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	h := e.history(ctx, userID)

	errorsPerType := make(map[string]int)
	totalPerType := make(map[string]int)
	bySubject := make(map[string]int)
	totalErrors := 0
	for _, ev := range h.events {
		totalPerType[ev.QuestionType]++
		if !ev.Correct {
			errorsPerType[ev.QuestionType]++
			bySubject[ev.Subject]++
			totalErrors++
		}
	}
	ratePerType := make(map[string]float64, len(totalPerType))
	for qType, total := range totalPerType {
		ratePerType[qType] = float64(errorsPerType[qType]) / float64(total) * 100
	}

	errorRate := 0.0
	if len(h.events) > 0 {
		errorRate = float64(totalErrors) / float64(len(h.events)) * 100
	}

	analysis := &ErrorAnalysis{
		UserId:          userID,
		GeneratedAt:     time.Now(),
		TotalErrors:     totalErrors,
		ErrorRate:       errorRate,
		RatePerType:     ratePerType,
		ErrorsBySubject: bySubject,
	}
	e.reportCache.Set(errorKey(userID), analysis, cache.DefaultExpiration)
	return analysis
}
