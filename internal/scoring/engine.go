// Package scoring implements the weighted-average scoring pipeline for wellbeing
// surveys and daily check-ins.
// #IMPLEMENTATION_DECISION: Pure functions over in-memory data - no I/O, fully deterministic
package scoring

import (
	"math"

	"github.com/ebi360/bs360_backend/internal/models"
)

// Scores holds the output of a scoring run
type Scores struct {
	DomainScores map[string]float64 `json:"domain_scores"`
	GlobalScore  float64            `json:"global_score"`
}

// ComputeScores computes per-domain scores normalized to [0,10] and the weighted
// global score for one answer set.
//
// Domain score = Σ((value/5)·weight·severity) / Σ(weight·severity) · 10 over
// answered questions only; unanswered questions are excluded from both numerator
// and denominator. A domain with no answered questions scores 0 and still
// participates in the global weighted mean with that 0.
// #BUSINESS_RULE: The zero-answer-domain-counts-as-0 policy matches observed
// platform behavior and is deliberate, not a gap.
func ComputeScores(answers map[int]int, questions []models.Question, algorithm models.Algorithm) Scores {
	byNumber := make(map[int]*models.Question, len(questions))
	for i := range questions {
		byNumber[questions[i].Number] = &questions[i]
	}

	domainScores := make(map[string]float64, len(algorithm.Domains))

	var globalNum, globalDen float64
	for _, domain := range algorithm.Domains {
		var num, den float64
		for _, number := range domain.Questions {
			question, exists := byNumber[number]
			if !exists {
				continue
			}
			value, answered := answers[number]
			if !answered {
				continue
			}
			factor := question.Weight * question.Severity
			num += (float64(value) / float64(models.MaxAnswerValue)) * factor
			den += factor
		}

		score := 0.0
		if den > 0 {
			score = round1(num / den * 10)
		}
		domainScores[domain.Name] = score

		weight := domain.EffectiveWeight()
		globalNum += score * weight
		globalDen += weight
	}

	global := 0.0
	if globalDen > 0 {
		global = round1(globalNum / globalDen)
	}

	return Scores{
		DomainScores: domainScores,
		GlobalScore:  global,
	}
}

// round1 rounds to one decimal place using round-half-up on the scaled value
func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
