package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/repository/specification"
	"jit-learning-be/internal/repository/unitofwork"
	"jit-learning-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.SessionArchiveRepository())
	assert.NotNil(t, uow.PerformanceEventRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check Session Archive Repository", func(t *testing.T) {
		count, err := uow.SessionArchiveRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Session archive count: %d", count)
	})

	t.Run("Check Performance Event Repository", func(t *testing.T) {
		count, err := uow.PerformanceEventRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Performance event count: %d", count)
	})
}

func TestSessionArchiveRoundTrip(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	userID := uuid.New()
	archive := &entity.SessionArchive{
		Id:        uuid.New(),
		SessionId: uuid.New(),
		UserId:    userID,
		Reason:    "clear",
		Metrics: entity.PerformanceMetrics{
			TotalQuestions:  10,
			CorrectAnswers:  8,
			OverallAccuracy: 80,
		},
		Containers: []*entity.ContainerRecord{
			{Id: "learn-math", Type: "learn", Subject: "math", StartedAt: time.Now(), QuestionsAnswered: 10},
		},
		ExpectedPath: []string{"learn-math", "experience-math"},
		ActualPath:   []string{"learn-math"},
		StartedAt:    time.Now().Add(-time.Hour),
		ArchivedAt:   time.Now(),
	}

	assert.NoError(t, uow.SessionArchiveRepository().Create(ctx, archive))

	found, err := uow.SessionArchiveRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userID},
	)
	assert.NoError(t, err)
	if assert.NotNil(t, found) {
		assert.Equal(t, archive.SessionId, found.SessionId)
		assert.Equal(t, "clear", found.Reason)
		assert.Equal(t, 10, found.Metrics.TotalQuestions)
		assert.Len(t, found.Containers, 1)
		assert.Equal(t, "learn-math", found.Containers[0].Id)
	}
}

func TestPerformanceEventBulkInsert(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	userID := uuid.New()
	events := make([]*entity.PerformanceEvent, 0, 5)
	for i := 0; i < 5; i++ {
		events = append(events, &entity.PerformanceEvent{
			Id:               uuid.New(),
			UserId:           userID,
			QuestionId:       uuid.New().String(),
			QuestionType:     "multiple_choice",
			Subject:          "math",
			SkillId:          "skill-addition",
			Difficulty:       "medium",
			Correct:          i%2 == 0,
			TimeSpentSeconds: 15,
			ContainerId:      "learn-math",
			Timestamp:        time.Now(),
		})
	}

	assert.NoError(t, uow.PerformanceEventRepository().CreateBulk(ctx, events))

	stored, err := uow.PerformanceEventRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "timestamp", Desc: false},
	)
	assert.NoError(t, err)
	assert.Len(t, stored, 5)
}
