package consistency

import (
	"strings"
	"time"

	"jit-learning-be/internal/constant"
	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/pkg/logger"
)

// Thresholds are the scoring knobs. The whole scorer is a term-matching
// heuristic, not a semantic check, so the bars are configuration rather than
// constants.
type Thresholds struct {
	Acceptance float64 // aggregate score needed for isConsistent, 0-100
	TermCap    int     // max theme terms matched per axis
	Density    float64 // min matched-word share of total words before dilution
}

// DefaultThresholds mirrors the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Acceptance: 70,
		TermCap:    5,
		Density:    0.01,
	}
}

// Scorer measures how well generated content stays on the day's
// career + skill + companion theme.
type Scorer struct {
	thresholds Thresholds
	log        logger.ILogger
}

func NewScorer(thresholds Thresholds, log logger.ILogger) *Scorer {
	if thresholds.TermCap <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Scorer{thresholds: thresholds, log: log}
}

// Score computes the three axis scores and the violation list for one
// content item against the daily context.
func (s *Scorer) Score(dc *entity.DailyContext, content *entity.GeneratedContent) *entity.ConsistencyReport {
	text := strings.ToLower(content.Text())
	report := &entity.ConsistencyReport{CheckedAt: time.Now()}

	report.CareerScore = s.scoreCareer(dc, content, text, report)
	report.SkillScore = s.scoreSkill(dc, text, report)
	report.CompanionScore = s.scoreCompanion(dc, content, text, report)
	report.Aggregate = (report.CareerScore + report.SkillScore + report.CompanionScore) / 3

	report.IsConsistent = !report.HasCritical() && report.Aggregate >= s.thresholds.Acceptance
	return report
}

// careerTerms collects the bounded search-term set for the career axis:
// the title, the declared skills, and the individual title tokens.
func (s *Scorer) careerTerms(career entity.Career) []string {
	terms := []string{career.Title}
	terms = append(terms, career.Skills...)
	for _, token := range strings.Fields(career.Title) {
		if len(token) > 3 {
			terms = append(terms, token)
		}
	}
	if len(terms) > s.thresholds.TermCap {
		terms = terms[:s.thresholds.TermCap]
	}
	return terms
}

func (s *Scorer) scoreCareer(dc *entity.DailyContext, content *entity.GeneratedContent, text string, report *entity.ConsistencyReport) float64 {
	// A metadata tag pointing at a different career is drift no matter what
	// the text says.
	meta := content.Metadata
	if (meta.CareerId != "" && meta.CareerId != dc.Career.Id) ||
		(meta.CareerTitle != "" && !strings.EqualFold(meta.CareerTitle, dc.Career.Title)) {
		report.Violations = append(report.Violations, entity.Violation{
			Kind:         entity.ViolationCareerDrift,
			Severity:     entity.SeverityCritical,
			Location:     "metadata",
			Expected:     dc.Career.Title,
			Actual:       meta.CareerTitle,
			SuggestedFix: "overwrite career metadata with the daily context career",
		})
	}

	terms := s.careerTerms(dc.Career)
	matched := matchCount(text, terms)
	score := float64(matched) / float64(len(terms)) * 100

	if matched == 0 {
		report.Violations = append(report.Violations, entity.Violation{
			Kind:         entity.ViolationCareerMissing,
			Severity:     entity.SeverityMajor,
			Location:     "text",
			Expected:     dc.Career.Title,
			Actual:       "no career reference found",
			SuggestedFix: "weave the career title into the content text",
		})
	}
	return score
}

func (s *Scorer) skillTerms(skill entity.Skill) []string {
	terms := []string{skill.Name}
	for _, token := range strings.Fields(skill.Description) {
		if len(token) > 3 {
			terms = append(terms, token)
		}
	}
	if len(terms) > s.thresholds.TermCap {
		terms = terms[:s.thresholds.TermCap]
	}
	return terms
}

func (s *Scorer) scoreSkill(dc *entity.DailyContext, text string, report *entity.ConsistencyReport) float64 {
	terms := s.skillTerms(dc.Skill)
	matched := matchCount(text, terms)
	score := float64(matched) / float64(len(terms)) * 100

	if matched == 0 {
		report.Violations = append(report.Violations, entity.Violation{
			Kind:         entity.ViolationSkillMissing,
			Severity:     entity.SeverityMajor,
			Location:     "text",
			Expected:     dc.Skill.Name,
			Actual:       "no skill reference found",
			SuggestedFix: "reference the primary skill in the content text",
		})
		return score
	}

	// Matched terms buried in a large body of unrelated text still dilute
	// the theme even when every term is present.
	totalWords := len(strings.Fields(text))
	if totalWords > 0 {
		matchedWords := 0
		for _, term := range terms {
			matchedWords += strings.Count(text, strings.ToLower(term)) * len(strings.Fields(term))
		}
		if float64(matchedWords)/float64(totalWords) < s.thresholds.Density {
			report.Violations = append(report.Violations, entity.Violation{
				Kind:         entity.ViolationSkillDilution,
				Severity:     entity.SeverityMinor,
				Location:     "text",
				Expected:     dc.Skill.Name,
				Actual:       "skill terms occupy under the density floor",
				SuggestedFix: "increase skill term density or trim unrelated text",
			})
		}
	}
	return score
}

func (s *Scorer) scoreCompanion(dc *entity.DailyContext, content *entity.GeneratedContent, text string, report *entity.ConsistencyReport) float64 {
	meta := content.Metadata
	if meta.CompanionId != "" && meta.CompanionId != dc.Companion.Id {
		report.Violations = append(report.Violations, entity.Violation{
			Kind:         entity.ViolationCompanionDrift,
			Severity:     entity.SeverityCritical,
			Location:     "metadata",
			Expected:     dc.Companion.Name,
			Actual:       meta.CompanionName,
			SuggestedFix: "overwrite companion metadata with the daily context companion",
		})
	}

	// Tiered: explicit tag > named in text > tone match > nothing
	if meta.CompanionId == dc.Companion.Id || strings.EqualFold(meta.CompanionName, dc.Companion.Name) {
		return 100
	}
	if dc.Companion.Name != "" && strings.Contains(text, strings.ToLower(dc.Companion.Name)) {
		return 80
	}
	if phrases, ok := constant.CompanionToneLexicon[strings.ToLower(dc.Companion.Personality)]; ok {
		for _, phrase := range phrases {
			if strings.Contains(text, phrase) {
				return 60
			}
		}
	}

	report.Violations = append(report.Violations, entity.Violation{
		Kind:         entity.ViolationCompanionWeak,
		Severity:     entity.SeverityMinor,
		Location:     "text",
		Expected:     dc.Companion.Name,
		Actual:       "no companion presence detected",
		SuggestedFix: "have the companion voice the instructions",
	})
	return 40
}

// matchCount counts how many of the terms appear in the text,
// case-insensitive substring.
func matchCount(loweredText string, terms []string) int {
	matched := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(loweredText, strings.ToLower(term)) {
			matched++
		}
	}
	return matched
}

// Rewrite applies the corrective action for a failing report: prepend a
// career/skill framing sentence and force metadata back to the canonical
// context values. It never blocks delivery.
func (s *Scorer) Rewrite(dc *entity.DailyContext, content *entity.GeneratedContent) {
	framing := "With " + dc.Companion.Name + " the " + dc.Career.Title +
		", practice " + dc.Skill.Name + ". "
	content.Instructions = framing + content.Instructions

	content.Metadata.CareerId = dc.Career.Id
	content.Metadata.CareerTitle = dc.Career.Title
	content.Metadata.SkillId = dc.Skill.Id
	content.Metadata.CompanionId = dc.Companion.Id
	content.Metadata.CompanionName = dc.Companion.Name
	content.Metadata.Rewritten = true

	if s.log != nil {
		s.log.Info("consistency", "corrective rewrite applied", map[string]interface{}{
			"container_id": content.ContainerId,
			"career":       dc.Career.Title,
		})
	}
}

// ScoreBatch scores a day's containers per subject and flags cross-subject
// drift: more than one distinct career referenced, or more than three
// distinct skills.
func (s *Scorer) ScoreBatch(dc *entity.DailyContext, contents map[string]*entity.GeneratedContent) *entity.BatchConsistencyReport {
	batch := &entity.BatchConsistencyReport{
		PerSubject: make(map[string]*entity.ConsistencyReport, len(contents)),
		CheckedAt:  time.Now(),
	}

	careers := make(map[string]struct{})
	skills := make(map[string]struct{})

	sum := 0.0
	for subject, content := range contents {
		report := s.Score(dc, content)
		batch.PerSubject[subject] = report
		sum += report.Aggregate

		if content.Metadata.CareerId != "" {
			careers[content.Metadata.CareerId] = struct{}{}
		}
		if content.Metadata.SkillId != "" {
			skills[content.Metadata.SkillId] = struct{}{}
		}
	}
	if len(contents) > 0 {
		batch.Aggregate = sum / float64(len(contents))
	}

	if len(careers) > 1 {
		batch.Violations = append(batch.Violations, entity.Violation{
			Kind:         entity.ViolationBatchCareerDrift,
			Severity:     entity.SeverityMajor,
			Location:     "batch",
			Expected:     dc.Career.Title,
			Actual:       "multiple careers referenced across subjects",
			SuggestedFix: "regenerate off-theme containers",
		})
	}
	if len(skills) > 3 {
		batch.Violations = append(batch.Violations, entity.Violation{
			Kind:         entity.ViolationBatchSkillSpread,
			Severity:     entity.SeverityMinor,
			Location:     "batch",
			Expected:     dc.Skill.Name,
			Actual:       "more than three distinct skills referenced",
			SuggestedFix: "anchor containers to the primary skill",
		})
	}

	critical := false
	for _, report := range batch.PerSubject {
		if report.HasCritical() {
			critical = true
			break
		}
	}
	batch.IsConsistent = !critical && batch.Aggregate >= s.thresholds.Acceptance
	return batch
}
