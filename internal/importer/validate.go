package importer

import (
	"fmt"

	"github.com/ebi360/bs360_backend/internal/models"
)

// Validate checks a parsed survey definition and returns every problem found.
// An empty slice means the data is safe to persist; a non-empty slice means
// the caller must not persist anything.
//
// #IMPLEMENTATION_DECISION: Errors are collected, never short-circuited, so
// an author fixing a workbook sees the full list in one round trip.
func Validate(data *SurveyImportData) []string {
	var errs []string

	errs = append(errs, validateMetadata(data.Metadata)...)
	errs = append(errs, validateQuestions(data.Questions)...)
	errs = append(errs, validateAlgorithm(data.Algorithm)...)
	errs = append(errs, validateCrossReferences(data.Questions, data.Algorithm)...)

	return errs
}

func validateMetadata(meta SurveyMetadata) []string {
	var errs []string

	if meta.Code == "" {
		errs = append(errs, "metadata: código es requerido")
	}
	if meta.Name == "" {
		errs = append(errs, "metadata: nombre es requerido")
	}
	if !meta.SurveyType.IsValid() {
		errs = append(errs, fmt.Sprintf("metadata: tipo de encuesta inválido %q (debe ser base, regulatory o custom)", meta.SurveyType))
	}

	return errs
}

func validateQuestions(questions []models.Question) []string {
	var errs []string

	if len(questions) == 0 {
		errs = append(errs, "preguntas: se requiere al menos una pregunta")
		return errs
	}

	for _, q := range questions {
		if q.Text == "" {
			errs = append(errs, fmt.Sprintf("pregunta %d: el texto es requerido", q.Number))
		}
		if q.Domain == "" {
			errs = append(errs, fmt.Sprintf("pregunta %d: el dominio es requerido", q.Number))
		}
		if !q.HasValidWeightPair() {
			errs = append(errs, fmt.Sprintf("pregunta %d: peso_personal + peso_org debe sumar 1.0 (suma %.3f)", q.Number, q.PersonalWeight+q.OrgWeight))
		}
	}

	return errs
}

func validateAlgorithm(algorithm models.Algorithm) []string {
	var errs []string

	if algorithm.ScoringMethod == "" {
		errs = append(errs, "algoritmo: scoring_method es requerido")
	} else if !algorithm.ScoringMethod.IsValid() {
		errs = append(errs, fmt.Sprintf("algoritmo: scoring_method desconocido %q", algorithm.ScoringMethod))
	}
	if len(algorithm.Domains) == 0 {
		errs = append(errs, "algoritmo: se requiere al menos un dominio")
	}

	return errs
}

// validateCrossReferences checks that the Preguntas and Algoritmo sheets agree
// with each other. Every question number a domain lists must exist, every
// question must be assigned to a domain, and a question's declared domain must
// be defined in the algorithm.
// #BUSINESS_RULE: A dangling reference would make scoring silently compute a
// domain from fewer questions than the author intended
func validateCrossReferences(questions []models.Question, algorithm models.Algorithm) []string {
	var errs []string

	// An empty sheet is already reported by the per-sheet checks; the
	// cross-checks would only repeat the same problem in more words.
	if len(questions) == 0 || len(algorithm.Domains) == 0 {
		return errs
	}

	byNumber := make(map[int]bool, len(questions))
	for _, q := range questions {
		byNumber[q.Number] = true
	}

	for _, domain := range algorithm.Domains {
		for _, number := range domain.Questions {
			if !byNumber[number] {
				errs = append(errs, fmt.Sprintf("algoritmo: dominio %q referencia la pregunta %d, que no existe en la hoja de preguntas", domain.Name, number))
			}
		}
	}

	for _, q := range questions {
		if !algorithm.ReferencesQuestion(q.Number) {
			errs = append(errs, fmt.Sprintf("pregunta %d: no está asignada a ningún dominio del algoritmo", q.Number))
		}
		if q.Domain != "" && algorithm.DomainByName(q.Domain) == nil {
			errs = append(errs, fmt.Sprintf("pregunta %d: dominio %q no está definido en el algoritmo", q.Number, q.Domain))
		}
	}

	return errs
}
