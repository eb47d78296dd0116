package genai

import (
	"context"
	"errors"

	"jit-learning-be/internal/entity"
)

// ErrGenerationFailed marks any failure of the external generation boundary:
// transport errors, malformed output, or refusal. The orchestrator recovers
// by falling back to template generation; callers never see this error.
var ErrGenerationFailed = errors.New("content generation failed")

// GenerationRequest is everything the boundary needs to produce one
// container's content.
type GenerationRequest struct {
	ContainerId   string
	ContainerType string // learn | experience | discover
	Subject       string
	Career        entity.Career
	Skill         entity.Skill
	Companion     entity.Companion
	GradeLevel    int
	Difficulty    string
	QuestionCount int
	HintDensity   string // low | medium | high
	VisualBias    bool
	AvoidType     string // question type to swap away from, if any
}

// ContentProvider is the external generation boundary. Implementations may
// return arbitrarily shaped content per container type; the orchestrator
// validates and repairs the result.
type ContentProvider interface {
	GenerateContainer(ctx context.Context, req GenerationRequest) (*entity.GeneratedContent, error)
}
