package service

import (
	"context"
	"encoding/json"

	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/pkg/learning/content"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPreloadWorkerService interface {
	Consume(ctx context.Context) error
}

// preloadWorkerService drains the preload topic and generates content for
// likely next containers in the background, warming the cache before the
// student opens them.
type preloadWorkerService struct {
	pubSub       *gochannel.GoChannel
	orchestrator *content.Orchestrator
	logger       logger.ILogger
}

func NewPreloadWorkerService(
	pubSub *gochannel.GoChannel,
	orchestrator *content.Orchestrator,
	log logger.ILogger,
) IPreloadWorkerService {
	return &preloadWorkerService{
		pubSub:       pubSub,
		orchestrator: orchestrator,
		logger:       log,
	}
}

func (s *preloadWorkerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, content.PreloadTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *preloadWorkerService) processMessage(ctx context.Context, msg *message.Message) {
	// Preload is opportunistic; every outcome acks so the topic never backs up.
	defer msg.Ack()

	var job content.PreloadJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		s.logger.Warn("preload_worker", "malformed preload job, dropping", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	generated, err := s.orchestrator.GetContent(ctx, content.Request{
		UserId:        job.UserId,
		ContainerId:   job.ContainerId,
		ContainerType: job.ContainerType,
		Subject:       job.Subject,
		SkipPreload:   true, // a preload must not fan out further preloads
	})
	if err != nil {
		s.logger.Warn("preload_worker", "preload generation failed", map[string]interface{}{
			"container": job.ContainerId,
			"error":     err.Error(),
		})
		return
	}

	s.logger.Debug("preload_worker", "container preloaded", map[string]interface{}{
		"container": job.ContainerId,
		"questions": len(generated.Questions),
		"source":    generated.Metadata.Source,
	})
}
