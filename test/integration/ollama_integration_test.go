package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/pkg/genai"

	"github.com/stretchr/testify/assert"
)

// Requires a local Ollama daemon with the configured model pulled.
// Skipped unless OLLAMA_INTEGRATION=1.
func TestOllamaProviderGeneratesContainer(t *testing.T) {
	if os.Getenv("OLLAMA_INTEGRATION") != "1" {
		t.Skip("Skipping integration test: OLLAMA_INTEGRATION not set")
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "gemma:2b"
	}

	provider := genai.NewOllamaProvider(baseURL, model, 2*time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	generated, err := provider.GenerateContainer(ctx, genai.GenerationRequest{
		ContainerId:   "learn-math",
		ContainerType: "learn",
		Subject:       "math",
		Career: entity.Career{
			Id:     "career-astronaut",
			Title:  "Astronaut",
			Skills: []string{"counting stars", "addition"},
		},
		Skill: entity.Skill{
			Id:      "skill-addition",
			Name:    "addition",
			Subject: "math",
		},
		Companion: entity.Companion{
			Id:          "companion-luna",
			Name:        "Luna",
			Personality: "encouraging",
		},
		GradeLevel:    2,
		Difficulty:    "medium",
		QuestionCount: 3,
		HintDensity:   "medium",
	})
	if err != nil {
		t.Fatalf("GenerateContainer: %v", err)
	}

	assert.NotEmpty(t, generated.Title)
	assert.NotEmpty(t, generated.Questions)
	for _, q := range generated.Questions {
		assert.NoError(t, q.Validate())
	}
	t.Logf("Generated %d questions: %s", len(generated.Questions), generated.Title)
}
