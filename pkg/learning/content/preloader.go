package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// PreloadTopic carries background generation jobs for likely next containers.
const PreloadTopic = "content.preload"

// PreloadJob is the message payload for one background generation request.
type PreloadJob struct {
	UserId        uuid.UUID `json:"user_id"`
	ContainerId   string    `json:"container_id"`
	ContainerType string    `json:"container_type"`
	Subject       string    `json:"subject"`
	Probability   float64   `json:"probability"`
}

// nextContainer is one candidate follow-up with its transition probability.
type nextContainer struct {
	containerType string
	probability   float64
}

// progressionTable maps each container type to the containers students most
// often open next. Probabilities come from observed navigation, frozen here
// as a static table.
var progressionTable = map[string][]nextContainer{
	constant.ContainerTypeLearn: {
		{containerType: constant.ContainerTypeExperience, probability: 0.8},
		{containerType: constant.ContainerTypeDiscover, probability: 0.4},
	},
	constant.ContainerTypeExperience: {
		{containerType: constant.ContainerTypeDiscover, probability: 0.75},
		{containerType: constant.ContainerTypeLearn, probability: 0.3},
	},
	constant.ContainerTypeDiscover: {
		{containerType: constant.ContainerTypeLearn, probability: 0.2},
	},
}

// WatermillPreloader publishes preload jobs for candidate next containers
// whose transition probability clears the configured floor. Generation
// itself happens in a background consumer, never on the request path.
type WatermillPreloader struct {
	publisher   message.Publisher
	probability float64
	logger      logger.ILogger
}

var _ Preloader = &WatermillPreloader{}

func NewWatermillPreloader(publisher message.Publisher, probabilityFloor float64, log logger.ILogger) *WatermillPreloader {
	return &WatermillPreloader{
		publisher:   publisher,
		probability: probabilityFloor,
		logger:      log,
	}
}

func (p *WatermillPreloader) Schedule(_ context.Context, userID uuid.UUID, containerID, subject string) {
	containerType := containerTypeOf(containerID)
	candidates, ok := progressionTable[containerType]
	if !ok {
		return
	}

	for _, candidate := range candidates {
		if candidate.probability <= p.probability {
			continue
		}
		job := PreloadJob{
			UserId:        userID,
			ContainerId:   fmt.Sprintf("%s-%s", candidate.containerType, strings.ToLower(subject)),
			ContainerType: candidate.containerType,
			Subject:       subject,
			Probability:   candidate.probability,
		}
		payload, err := json.Marshal(job)
		if err != nil {
			p.logger.Warn("content_preloader", "job marshal failed", map[string]interface{}{"error": err.Error()})
			continue
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("probability", fmt.Sprintf("%.2f", candidate.probability))
		if err := p.publisher.Publish(PreloadTopic, msg); err != nil {
			p.logger.Warn("content_preloader", "job publish failed", map[string]interface{}{
				"container": job.ContainerId,
				"error":     err.Error(),
			})
			continue
		}
		p.logger.Debug("content_preloader", "preload queued", map[string]interface{}{
			"container":   job.ContainerId,
			"probability": candidate.probability,
		})
	}
}

// containerTypeOf extracts the type prefix from ids like "learn-math".
func containerTypeOf(containerID string) string {
	if idx := strings.IndexByte(containerID, '-'); idx > 0 {
		return containerID[:idx]
	}
	return containerID
}
