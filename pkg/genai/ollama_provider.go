package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jit-learning-be/internal/entity"

	"github.com/google/uuid"
)

// OllamaProvider generates container content through a local Ollama model.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ ContentProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client:    &http.Client{Timeout: timeout},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// modelQuestion is the loose shape the model is asked to emit per question.
// The provider repairs it into a typed Question.
type modelQuestion struct {
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
	Hint    string   `json:"hint,omitempty"`
}

type modelContent struct {
	Title        string          `json:"title"`
	Instructions string          `json:"instructions"`
	Questions    []modelQuestion `json:"questions"`
}

func (o *OllamaProvider) GenerateContainer(ctx context.Context, req GenerationRequest) (*entity.GeneratedContent, error) {
	prompt := buildPrompt(req)

	payload := ollamaGenerateRequest{
		Model:  o.ModelName,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGenerationFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, resp.StatusCode, string(raw))
	}

	var generated ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}

	var content modelContent
	if err := json.Unmarshal([]byte(generated.Response), &content); err != nil {
		return nil, fmt.Errorf("%w: model output is not valid JSON: %v", ErrGenerationFailed, err)
	}

	return o.assemble(req, &content)
}

// assemble maps the model's loose output onto the typed content shape,
// dropping questions that cannot be repaired.
func (o *OllamaProvider) assemble(req GenerationRequest, raw *modelContent) (*entity.GeneratedContent, error) {
	questions := make(entity.QuestionSet, 0, len(raw.Questions))
	for _, mq := range raw.Questions {
		q := repairQuestion(req, mq)
		if q == nil {
			continue
		}
		if err := q.Validate(); err != nil {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: model produced no usable questions", ErrGenerationFailed)
	}

	return &entity.GeneratedContent{
		ContainerId:   req.ContainerId,
		ContainerType: req.ContainerType,
		Subject:       req.Subject,
		Title:         raw.Title,
		Instructions:  raw.Instructions,
		Questions:     questions,
		Metadata: entity.ContentMetadata{
			CareerId:      req.Career.Id,
			CareerTitle:   req.Career.Title,
			SkillId:       req.Skill.Id,
			CompanionId:   req.Companion.Id,
			CompanionName: req.Companion.Name,
			Source:        entity.ContentSourceAI,
			GeneratedAt:   time.Now(),
		},
	}, nil
}

func repairQuestion(req GenerationRequest, mq modelQuestion) entity.Question {
	base := entity.QuestionBase{
		Id:         uuid.New().String(),
		Prompt:     mq.Prompt,
		SkillId:    req.Skill.Id,
		Difficulty: req.Difficulty,
		Hint:       mq.Hint,
		Xp:         xpForDifficulty(req.Difficulty),
	}

	switch strings.ToLower(mq.Type) {
	case "multiple_choice", "multiplechoice", "choice":
		correct := 0
		for i, opt := range mq.Options {
			if strings.EqualFold(opt, mq.Answer) {
				correct = i
				break
			}
		}
		return entity.MultipleChoiceQuestion{QuestionBase: base, Options: mq.Options, CorrectOption: correct}
	case "true_false", "truefalse", "boolean":
		return entity.TrueFalseQuestion{QuestionBase: base, Answer: strings.EqualFold(mq.Answer, "true")}
	case "numeric", "number":
		var answer float64
		if _, err := fmt.Sscanf(mq.Answer, "%f", &answer); err != nil {
			return nil
		}
		return entity.NumericQuestion{QuestionBase: base, Answer: answer}
	case "counting":
		var count int
		if _, err := fmt.Sscanf(mq.Answer, "%d", &count); err != nil {
			return nil
		}
		return entity.CountingQuestion{QuestionBase: base, Emoji: "⭐", Count: count}
	case "fill_blank", "fillblank", "blank":
		return entity.FillBlankQuestion{QuestionBase: base, Answer: mq.Answer}
	default:
		return nil
	}
}

func xpForDifficulty(difficulty string) int {
	switch difficulty {
	case "hard":
		return 20
	case "easy":
		return 5
	default:
		return 10
	}
}

func buildPrompt(req GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %s content for a grade %d student in %s.\n",
		req.ContainerType, req.GradeLevel, req.Subject)
	fmt.Fprintf(&b, "Theme: the student is learning alongside %s, a %s companion, in the role of a %s.\n",
		req.Companion.Name, req.Companion.Personality, req.Career.Title)
	fmt.Fprintf(&b, "Target skill: %s (%s).\n", req.Skill.Name, req.Skill.Description)
	fmt.Fprintf(&b, "Produce exactly %d questions at %s difficulty", req.QuestionCount, req.Difficulty)
	if req.AvoidType != "" {
		fmt.Fprintf(&b, ", avoiding the %s question type", req.AvoidType)
	}
	if req.VisualBias {
		b.WriteString(", favoring visual counting questions")
	}
	b.WriteString(".\n")
	fmt.Fprintf(&b, "Hint density: %s.\n", req.HintDensity)
	b.WriteString(`Respond with JSON: {"title": string, "instructions": string, "questions": [{"type": "multiple_choice"|"true_false"|"numeric"|"counting"|"fill_blank", "prompt": string, "options": [string], "answer": string, "hint": string}]}.` + "\n")
	b.WriteString("Every question must reference the career theme and the target skill.\n")
	return b.String()
}
