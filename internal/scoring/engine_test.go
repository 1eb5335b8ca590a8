package scoring

import (
	"testing"

	"github.com/ebi360/bs360_backend/internal/models"
)

func makeQuestions(numbers []int, weight, severity float64) []models.Question {
	questions := make([]models.Question, 0, len(numbers))
	for _, n := range numbers {
		questions = append(questions, models.Question{
			Number:   n,
			Weight:   weight,
			Severity: severity,
		})
	}
	return questions
}

func TestComputeScores_AllMaxAnswersScoreTen(t *testing.T) {
	algorithm := models.Algorithm{
		ScoringMethod: models.ScoringMethodWeightedAverage,
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1, 2}},
		},
	}
	questions := makeQuestions([]int{0, 1, 2}, 1, 1)
	answers := map[int]int{0: 5, 1: 5, 2: 5}

	scores := ComputeScores(answers, questions, algorithm)

	if scores.DomainScores["Físico"] != 10.0 {
		t.Errorf("Físico = %v, want 10.0", scores.DomainScores["Físico"])
	}
	if scores.GlobalScore != 10.0 {
		t.Errorf("GlobalScore = %v, want 10.0", scores.GlobalScore)
	}
}

func TestComputeScores_UnansweredDomainScoresZero(t *testing.T) {
	algorithm := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1}},
			{Name: "Emocional", Weight: 1, Questions: []int{2, 3}},
		},
	}
	questions := makeQuestions([]int{0, 1, 2, 3}, 1, 1)
	answers := map[int]int{0: 5, 1: 5} // Emocional entirely skipped

	scores := ComputeScores(answers, questions, algorithm)

	if scores.DomainScores["Emocional"] != 0 {
		t.Errorf("Emocional = %v, want 0", scores.DomainScores["Emocional"])
	}
	// The zero still participates in the global weighted mean
	if scores.GlobalScore != 5.0 {
		t.Errorf("GlobalScore = %v, want 5.0", scores.GlobalScore)
	}
}

func TestComputeScores_SkippedQuestionsExcludedFromDenominator(t *testing.T) {
	algorithm := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1}},
		},
	}
	questions := makeQuestions([]int{0, 1}, 1, 1)
	answers := map[int]int{0: 5} // question 1 skipped, not zero-filled

	scores := ComputeScores(answers, questions, algorithm)

	if scores.DomainScores["Físico"] != 10.0 {
		t.Errorf("Físico = %v, want 10.0 (skip, not zero-fill)", scores.DomainScores["Físico"])
	}
}

func TestComputeScores_DocumentedScenario(t *testing.T) {
	// Físico(weight=1, q=[0,1]), Emocional(weight=1, q=[2]), all coefficients 1,
	// answers {0:5, 1:5, 2:1} -> Físico=10.0, Emocional=2.0, global=6.0
	algorithm := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1}},
			{Name: "Emocional", Weight: 1, Questions: []int{2}},
		},
	}
	questions := makeQuestions([]int{0, 1, 2}, 1, 1)
	answers := map[int]int{0: 5, 1: 5, 2: 1}

	scores := ComputeScores(answers, questions, algorithm)

	if scores.DomainScores["Físico"] != 10.0 {
		t.Errorf("Físico = %v, want 10.0", scores.DomainScores["Físico"])
	}
	if scores.DomainScores["Emocional"] != 2.0 {
		t.Errorf("Emocional = %v, want 2.0", scores.DomainScores["Emocional"])
	}
	if scores.GlobalScore != 6.0 {
		t.Errorf("GlobalScore = %v, want 6.0", scores.GlobalScore)
	}
}

func TestComputeScores_GlobalScoreOrderInvariant(t *testing.T) {
	questions := makeQuestions([]int{0, 1, 2, 3}, 1, 1)
	answers := map[int]int{0: 4, 1: 2, 2: 5, 3: 3}

	forward := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 2, Questions: []int{0, 1}},
			{Name: "Emocional", Weight: 3, Questions: []int{2}},
			{Name: "Mental", Weight: 1, Questions: []int{3}},
		},
	}
	reversed := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Mental", Weight: 1, Questions: []int{3}},
			{Name: "Emocional", Weight: 3, Questions: []int{2}},
			{Name: "Físico", Weight: 2, Questions: []int{0, 1}},
		},
	}

	a := ComputeScores(answers, questions, forward)
	b := ComputeScores(answers, questions, reversed)

	if a.GlobalScore != b.GlobalScore {
		t.Errorf("GlobalScore depends on domain order: %v vs %v", a.GlobalScore, b.GlobalScore)
	}
	for name, score := range a.DomainScores {
		if b.DomainScores[name] != score {
			t.Errorf("DomainScores[%s] = %v vs %v", name, score, b.DomainScores[name])
		}
	}
}

func TestComputeScores_WeightAndSeverityApplied(t *testing.T) {
	algorithm := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1}},
		},
	}
	questions := []models.Question{
		{Number: 0, Weight: 3, Severity: 1},
		{Number: 1, Weight: 1, Severity: 1},
	}
	answers := map[int]int{0: 5, 1: 1}

	scores := ComputeScores(answers, questions, algorithm)

	// ((5/5)*3 + (1/5)*1) / (3+1) * 10 = (3 + 0.2) / 4 * 10 = 8.0
	if scores.DomainScores["Físico"] != 8.0 {
		t.Errorf("Físico = %v, want 8.0", scores.DomainScores["Físico"])
	}
}

func TestComputeScores_DomainWeightDefaultsToOne(t *testing.T) {
	algorithm := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Questions: []int{0}},
			{Name: "Emocional", Questions: []int{1}},
		},
	}
	questions := makeQuestions([]int{0, 1}, 1, 1)
	answers := map[int]int{0: 5, 1: 1}

	scores := ComputeScores(answers, questions, algorithm)

	// (10 + 2) / 2 = 6.0
	if scores.GlobalScore != 6.0 {
		t.Errorf("GlobalScore = %v, want 6.0", scores.GlobalScore)
	}
}

func TestComputeScores_EmptyDomains(t *testing.T) {
	scores := ComputeScores(map[int]int{0: 5}, makeQuestions([]int{0}, 1, 1), models.Algorithm{})

	if scores.GlobalScore != 0 {
		t.Errorf("GlobalScore = %v, want 0 for empty domains", scores.GlobalScore)
	}
	if len(scores.DomainScores) != 0 {
		t.Errorf("DomainScores = %v, want empty", scores.DomainScores)
	}
}

func TestComputeScores_RoundingHalfUp(t *testing.T) {
	algorithm := models.Algorithm{
		Domains: []models.AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1, 2}},
		},
	}
	questions := makeQuestions([]int{0, 1, 2}, 1, 1)
	// (0.6 + 0.6 + 1.0) / 3 * 10 = 7.333... -> 7.3
	answers := map[int]int{0: 3, 1: 3, 2: 5}

	scores := ComputeScores(answers, questions, algorithm)

	if scores.DomainScores["Físico"] != 7.3 {
		t.Errorf("Físico = %v, want 7.3", scores.DomainScores["Físico"])
	}
}
