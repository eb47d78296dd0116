package template

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jit-learning-be/internal/entity"
	"jit-learning-be/pkg/genai"

	"github.com/google/uuid"
)

// Factory produces deterministic template content when the generative
// provider is unavailable or repeatedly fails structural validation.
// Templates are themed with the same career, skill and companion inputs
// so the consistency gate still applies to them.
type Factory struct {
	rng *rand.Rand
}

var _ genai.ContentProvider = &Factory{}

func NewFactory() *Factory {
	return &Factory{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (f *Factory) GenerateContainer(_ context.Context, req genai.GenerationRequest) (*entity.GeneratedContent, error) {
	count := req.QuestionCount
	if count < 1 {
		count = 1
	}

	questions := make(entity.QuestionSet, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, f.buildQuestion(req, i))
	}

	return &entity.GeneratedContent{
		ContainerId:   req.ContainerId,
		ContainerType: req.ContainerType,
		Subject:       req.Subject,
		Title:         fmt.Sprintf("%s practice with %s", req.Skill.Name, req.Companion.Name),
		Instructions: fmt.Sprintf("%s the %s needs your help! Work through these %s questions with %s to sharpen your %s.",
			req.Companion.Name, req.Career.Title, req.Subject, req.Companion.Name, req.Skill.Name),
		Questions: questions,
		Metadata: entity.ContentMetadata{
			CareerId:      req.Career.Id,
			CareerTitle:   req.Career.Title,
			SkillId:       req.Skill.Id,
			CompanionId:   req.Companion.Id,
			CompanionName: req.Companion.Name,
			Source:        entity.ContentSourceTemplate,
			GeneratedAt:   time.Now(),
		},
	}, nil
}

// buildQuestion rotates through the variants so a template container still
// exercises a mix of interaction styles. The numbers scale with grade level
// so the arithmetic stays age-appropriate.
func (f *Factory) buildQuestion(req genai.GenerationRequest, index int) entity.Question {
	base := entity.QuestionBase{
		Id:         uuid.New().String(),
		SkillId:    req.Skill.Id,
		Difficulty: req.Difficulty,
		Xp:         xpFor(req.Difficulty),
	}
	if req.HintDensity == "high" {
		base.Hint = fmt.Sprintf("%s says: take it one step at a time!", req.Companion.Name)
	}

	limit := numberLimit(req.GradeLevel, req.Difficulty)
	a := f.rng.Intn(limit) + 1
	b := f.rng.Intn(limit) + 1

	variants := questionOrder(req)
	switch variants[index%len(variants)] {
	case "counting":
		count := f.rng.Intn(limit/2+1) + 1
		base.Prompt = fmt.Sprintf("The %s %s is gathering supplies. Count the stars below!", req.Career.Title, req.Companion.Name)
		return entity.CountingQuestion{QuestionBase: base, Emoji: "⭐", Count: count}
	case "true_false":
		claimed := a + b
		truth := f.rng.Intn(2) == 0
		if !truth {
			claimed++
		}
		base.Prompt = fmt.Sprintf("A %s needs %s every day. True or false: %d + %d = %d?",
			req.Career.Title, req.Skill.Name, a, b, claimed)
		return entity.TrueFalseQuestion{QuestionBase: base, Answer: truth}
	case "numeric":
		base.Prompt = fmt.Sprintf("%s the %s counted %d items, then found %d more. How many in total?",
			req.Companion.Name, req.Career.Title, a, b)
		return entity.NumericQuestion{QuestionBase: base, Answer: float64(a + b)}
	case "fill_blank":
		base.Prompt = fmt.Sprintf("Help %s finish the %s log: %d + %d = ___",
			req.Companion.Name, req.Career.Title, a, b)
		return entity.FillBlankQuestion{QuestionBase: base, Answer: fmt.Sprintf("%d", a+b)}
	default:
		answer := a + b
		options := []string{
			fmt.Sprintf("%d", answer),
			fmt.Sprintf("%d", answer+1),
			fmt.Sprintf("%d", answer+2),
			fmt.Sprintf("%d", maxInt(answer-1, 0)),
		}
		correct := f.rng.Intn(len(options))
		options[0], options[correct] = options[correct], options[0]
		base.Prompt = fmt.Sprintf("%s the %s asks: what is %d + %d? Your %s skills will crack it.",
			req.Companion.Name, req.Career.Title, a, b, req.Skill.Name)
		return entity.MultipleChoiceQuestion{QuestionBase: base, Options: options, CorrectOption: correct}
	}
}

// questionOrder honors the avoid-type and visual-bias adaptations.
func questionOrder(req genai.GenerationRequest) []string {
	all := []string{"multiple_choice", "counting", "numeric", "true_false", "fill_blank"}
	if req.VisualBias {
		all = []string{"counting", "multiple_choice", "counting", "numeric", "true_false"}
	}
	if req.AvoidType == "" {
		return all
	}
	kept := make([]string, 0, len(all))
	for _, t := range all {
		if t != req.AvoidType {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return all
	}
	return kept
}

func numberLimit(gradeLevel int, difficulty string) int {
	limit := 10 * gradeLevel
	if limit < 10 {
		limit = 10
	}
	switch difficulty {
	case "easy":
		limit /= 2
	case "hard":
		limit *= 2
	}
	if limit < 2 {
		limit = 2
	}
	return limit
}

func xpFor(difficulty string) int {
	switch difficulty {
	case "hard":
		return 20
	case "easy":
		return 5
	default:
		return 10
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
