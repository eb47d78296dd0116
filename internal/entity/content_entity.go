package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question is the closed set of generated question shapes. Each variant
// carries only its own fields; consumers dispatch with a type switch.
type Question interface {
	QuestionType() string
	QuestionId() string
	Validate() error
}

// QuestionBase holds the fields every variant shares.
type QuestionBase struct {
	Id         string `json:"id"`
	Prompt     string `json:"prompt"`
	SkillId    string `json:"skill_id"`
	Difficulty string `json:"difficulty"`
	Hint       string `json:"hint,omitempty"`
	Xp         int    `json:"xp"`
}

func (b QuestionBase) QuestionId() string { return b.Id }

func (b QuestionBase) validateBase() error {
	if b.Id == "" {
		return fmt.Errorf("question has no id")
	}
	if b.Prompt == "" {
		return fmt.Errorf("question %s has empty prompt", b.Id)
	}
	return nil
}

type MultipleChoiceQuestion struct {
	QuestionBase
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

func (q MultipleChoiceQuestion) QuestionType() string { return "multiple_choice" }

func (q MultipleChoiceQuestion) Validate() error {
	if err := q.validateBase(); err != nil {
		return err
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s needs at least 2 options, got %d", q.Id, len(q.Options))
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("question %s correct option %d out of range", q.Id, q.CorrectOption)
	}
	return nil
}

type TrueFalseQuestion struct {
	QuestionBase
	Answer bool `json:"answer"`
}

func (q TrueFalseQuestion) QuestionType() string { return "true_false" }

func (q TrueFalseQuestion) Validate() error { return q.validateBase() }

type NumericQuestion struct {
	QuestionBase
	Answer    float64 `json:"answer"`
	Tolerance float64 `json:"tolerance"`
	Unit      string  `json:"unit,omitempty"`
}

func (q NumericQuestion) QuestionType() string { return "numeric" }

func (q NumericQuestion) Validate() error {
	if err := q.validateBase(); err != nil {
		return err
	}
	if q.Tolerance < 0 {
		return fmt.Errorf("question %s has negative tolerance", q.Id)
	}
	return nil
}

// CountingQuestion shows a visual group of items to count.
type CountingQuestion struct {
	QuestionBase
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

func (q CountingQuestion) QuestionType() string { return "counting" }

func (q CountingQuestion) Validate() error {
	if err := q.validateBase(); err != nil {
		return err
	}
	if q.Count < 1 {
		return fmt.Errorf("question %s count must be positive", q.Id)
	}
	return nil
}

type FillBlankQuestion struct {
	QuestionBase
	Answer        string   `json:"answer"`
	AcceptedForms []string `json:"accepted_forms,omitempty"`
}

func (q FillBlankQuestion) QuestionType() string { return "fill_blank" }

func (q FillBlankQuestion) Validate() error {
	if err := q.validateBase(); err != nil {
		return err
	}
	if q.Answer == "" {
		return fmt.Errorf("question %s has no answer", q.Id)
	}
	return nil
}

// QuestionSet serializes a heterogeneous question list through a
// {type, data} envelope so cached content survives a round trip to the
// key/value store.
type QuestionSet []Question

type questionEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s QuestionSet) MarshalJSON() ([]byte, error) {
	envelopes := make([]questionEnvelope, 0, len(s))
	for _, q := range s {
		data, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, questionEnvelope{Type: q.QuestionType(), Data: data})
	}
	return json.Marshal(envelopes)
}

func (s *QuestionSet) UnmarshalJSON(data []byte) error {
	var envelopes []questionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}
	out := make(QuestionSet, 0, len(envelopes))
	for _, env := range envelopes {
		var q Question
		switch env.Type {
		case "multiple_choice":
			var v MultipleChoiceQuestion
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return err
			}
			q = v
		case "true_false":
			var v TrueFalseQuestion
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return err
			}
			q = v
		case "numeric":
			var v NumericQuestion
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return err
			}
			q = v
		case "counting":
			var v CountingQuestion
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return err
			}
			q = v
		case "fill_blank":
			var v FillBlankQuestion
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return err
			}
			q = v
		default:
			return fmt.Errorf("unknown question type %q", env.Type)
		}
		out = append(out, q)
	}
	*s = out
	return nil
}

// AppliedAdaptations records which generation parameters analytics adjusted.
type AppliedAdaptations struct {
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
	HintDensity   string `json:"hint_density"` // low | medium | high
	VisualBias    bool   `json:"visual_bias"`
	SwappedType   string `json:"swapped_type,omitempty"`
}

// ContentMetadata tags generated content with its provenance.
type ContentMetadata struct {
	CareerId         string             `json:"career_id"`
	CareerTitle      string             `json:"career_title"`
	SkillId          string             `json:"skill_id"`
	CompanionId      string             `json:"companion_id"`
	CompanionName    string             `json:"companion_name"`
	Source           string             `json:"source"` // ai | template | fallback
	GeneratedAt      time.Time          `json:"generated_at"`
	GenerationMillis int64              `json:"generation_millis"`
	Adaptations      AppliedAdaptations `json:"adaptations"`
	ConsistencyScore float64            `json:"consistency_score"`
	Rewritten        bool               `json:"rewritten"` // corrective rewrite applied
}

// Content sources.
const (
	ContentSourceAI       = "ai"
	ContentSourceTemplate = "template"
	ContentSourceFallback = "fallback"
)

// GeneratedContent is one container's worth of delivered content.
type GeneratedContent struct {
	ContainerId   string          `json:"container_id"`
	ContainerType string          `json:"container_type"`
	Subject       string          `json:"subject"`
	Title         string          `json:"title"`
	Instructions  string          `json:"instructions"`
	Questions     QuestionSet     `json:"questions"`
	Metadata      ContentMetadata `json:"metadata"`
}

// Text flattens every human-visible string in the content. The consistency
// scorer matches theme terms against this.
func (c *GeneratedContent) Text() string {
	out := c.Title + " " + c.Instructions
	for _, q := range c.Questions {
		switch v := q.(type) {
		case MultipleChoiceQuestion:
			out += " " + v.Prompt
			for _, o := range v.Options {
				out += " " + o
			}
			out += " " + v.Hint
		case TrueFalseQuestion:
			out += " " + v.Prompt + " " + v.Hint
		case NumericQuestion:
			out += " " + v.Prompt + " " + v.Hint + " " + v.Unit
		case CountingQuestion:
			out += " " + v.Prompt + " " + v.Hint
		case FillBlankQuestion:
			out += " " + v.Prompt + " " + v.Hint + " " + v.Answer
		}
	}
	return out
}
