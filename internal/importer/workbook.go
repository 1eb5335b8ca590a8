// Package importer parses and validates survey definition workbooks.
//
// A workbook carries three named sheets: "Metadata" with (Campo, Valor) rows,
// "Preguntas" with one question per row, and "Algoritmo" with a single JSON
// cell describing the scoring algorithm.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ebi360/bs360_backend/internal/models"
)

// Sheet names expected in the workbook
const (
	SheetMetadata  = "Metadata"
	SheetQuestions = "Preguntas"
	SheetAlgorithm = "Algoritmo"
)

// SurveyMetadata holds the key/value pairs from the Metadata sheet
type SurveyMetadata struct {
	Code        string
	Name        string
	Description string
	SurveyType  models.SurveyType
	Country     string
	Regulation  string
	Version     int
	IsBase      bool
	IsMandatory bool
}

// SurveyImportData is the parsed, not-yet-validated content of a workbook
type SurveyImportData struct {
	Metadata  SurveyMetadata
	Questions []models.Question
	Algorithm models.Algorithm
}

// ParseWorkbook reads the three survey sheets from an XLSX stream.
// Parsing is lenient where validation will catch the problem later: missing
// metadata fields or malformed numbers become zero values, but a missing
// sheet or unreadable file is a hard error.
func ParseWorkbook(r io.Reader) (*SurveyImportData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	result := &SurveyImportData{}

	if err := parseMetadataSheet(file, &result.Metadata); err != nil {
		return nil, err
	}
	if err := parseQuestionsSheet(file, &result.Questions); err != nil {
		return nil, err
	}
	if err := parseAlgorithmSheet(file, &result.Algorithm); err != nil {
		return nil, err
	}

	return result, nil
}

// parseMetadataSheet reads (Campo, Valor) rows. Field names are matched
// case-insensitively and accent-sensitively as exported by the survey
// authoring template.
func parseMetadataSheet(file *excelize.File, meta *SurveyMetadata) error {
	rows, err := file.GetRows(SheetMetadata)
	if err != nil {
		return fmt.Errorf("missing sheet %q: %w", SheetMetadata, err)
	}

	for _, row := range rows {
		field := normalizeField(cellValue(row, 0))
		value := cellValue(row, 1)
		if field == "" || field == "campo" {
			continue
		}

		switch field {
		case "código", "codigo":
			meta.Code = value
		case "nombre":
			meta.Name = value
		case "descripción", "descripcion":
			meta.Description = value
		case "tipo":
			meta.SurveyType = models.SurveyType(strings.ToUpper(value))
		case "país", "pais":
			meta.Country = value
		case "normativa":
			meta.Regulation = value
		case "versión", "version":
			if v, err := strconv.Atoi(value); err == nil {
				meta.Version = v
			}
		case "es base":
			meta.IsBase = parseYesNo(value)
		case "es obligatoria":
			meta.IsMandatory = parseYesNo(value)
		}
	}

	if meta.Version == 0 {
		meta.Version = 1
	}
	return nil
}

// parseQuestionsSheet reads question rows: #, Dominio, Constructo, Tipo,
// Pregunta, Peso, Severidad, Peso_Personal, Peso_Org. The first row is the
// header and is skipped.
func parseQuestionsSheet(file *excelize.File, questions *[]models.Question) error {
	rows, err := file.GetRows(SheetQuestions)
	if err != nil {
		return fmt.Errorf("missing sheet %q: %w", SheetQuestions, err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if isEmptyRow(row) {
			continue
		}

		q := models.Question{
			Number:         parseInt(cellValue(row, 0), i),
			Domain:         cellValue(row, 1),
			Construct:      cellValue(row, 2),
			Type:           models.QuestionType(strings.ToUpper(cellValue(row, 3))),
			Text:           cellValue(row, 4),
			Weight:         parseFloat(cellValue(row, 5), 1),
			Severity:       parseFloat(cellValue(row, 6), 1),
			PersonalWeight: parseFloat(cellValue(row, 7), 0),
			OrgWeight:      parseFloat(cellValue(row, 8), 0),
		}
		*questions = append(*questions, q)
	}
	return nil
}

// parseAlgorithmSheet reads the single JSON cell at A1.
func parseAlgorithmSheet(file *excelize.File, algorithm *models.Algorithm) error {
	raw, err := file.GetCellValue(SheetAlgorithm, "A1")
	if err != nil {
		return fmt.Errorf("missing sheet %q: %w", SheetAlgorithm, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		// Validation reports the missing algorithm; nothing to decode.
		return nil
	}

	if err := json.Unmarshal([]byte(raw), algorithm); err != nil {
		return fmt.Errorf("invalid algorithm JSON: %w", err)
	}
	return nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func normalizeField(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseYesNo maps the spreadsheet's SI/NO convention to a bool
func parseYesNo(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SI", "SÍ", "YES", "TRUE", "1":
		return true
	default:
		return false
	}
}

// parseInt falls back to the row position when the number cell is
// unparseable, so validation messages can still reference the row.
func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseFloat(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil {
		return v
	}
	return fallback
}
