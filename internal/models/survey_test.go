package models

import (
	"encoding/json"
	"testing"
)

func TestSurveyType_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		surveyType SurveyType
		expected   bool
	}{
		{"Base is valid", SurveyTypeBase, true},
		{"Regulatory is valid", SurveyTypeRegulatory, true},
		{"Custom is valid", SurveyTypeCustom, true},
		{"Invalid type", SurveyType("OTHER"), false},
		{"Empty type", SurveyType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.surveyType.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSurveyStatus_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(SurveyStatusActive)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(got) != `"active"` {
		t.Errorf("MarshalJSON() = %v, want \"active\"", string(got))
	}
}

func TestScoringMethod_UnmarshalJSON(t *testing.T) {
	var got ScoringMethod
	if err := json.Unmarshal([]byte(`"weighted_average"`), &got); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if got != ScoringMethodWeightedAverage {
		t.Errorf("UnmarshalJSON() = %v, want WEIGHTED_AVERAGE", got)
	}
	if !got.IsValid() {
		t.Error("weighted_average should be valid")
	}
}

func TestSurvey_BeforeCreate(t *testing.T) {
	survey := &Survey{
		Code: "BS360-BASE",
		Name: "Encuesta Base",
		Type: SurveyTypeBase,
	}

	survey.BeforeCreate()

	if survey.ID.IsZero() {
		t.Error("ID should be set")
	}
	if survey.Status != SurveyStatusDraft {
		t.Errorf("Status = %v, want draft", survey.Status)
	}
	if survey.Version != 1 {
		t.Errorf("Version = %v, want 1", survey.Version)
	}
	if survey.Algorithm.ScoringMethod != ScoringMethodWeightedAverage {
		t.Errorf("ScoringMethod = %v, want weighted_average", survey.Algorithm.ScoringMethod)
	}
}

func TestSurvey_Lifecycle(t *testing.T) {
	survey := &Survey{Code: "BS360-BASE", Name: "Encuesta Base"}
	survey.BeforeCreate()

	if !survey.CanBeEdited() {
		t.Error("Draft survey should be editable")
	}
	if survey.AcceptsResponses() {
		t.Error("Draft survey should not accept responses")
	}

	if err := survey.Activate(); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if !survey.IsActive() {
		t.Error("Survey should be active after Activate")
	}
	if survey.ActivatedAt == nil {
		t.Error("ActivatedAt should be set")
	}
	if !survey.AcceptsResponses() {
		t.Error("Active survey should accept responses")
	}

	if err := survey.Archive(); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !survey.IsArchived() {
		t.Error("Survey should be archived after Archive")
	}
	if survey.AcceptsResponses() {
		t.Error("Archived survey should not accept responses")
	}
}

func TestSurvey_InvalidTransitions(t *testing.T) {
	survey := &Survey{Code: "BS360-BASE"}
	survey.BeforeCreate()

	if err := survey.Archive(); err != ErrInvalidStatusTransition {
		t.Errorf("Archive() on draft error = %v, want ErrInvalidStatusTransition", err)
	}

	if err := survey.Activate(); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if err := survey.Activate(); err != ErrInvalidStatusTransition {
		t.Errorf("Activate() on active error = %v, want ErrInvalidStatusTransition", err)
	}
}

func TestAlgorithm_DomainByName(t *testing.T) {
	alg := Algorithm{
		Domains: []AlgorithmDomain{
			{Name: "Físico", Weight: 1, Questions: []int{0, 1}},
			{Name: "Emocional", Weight: 2, Questions: []int{2}},
		},
	}

	if d := alg.DomainByName("Emocional"); d == nil || d.Weight != 2 {
		t.Errorf("DomainByName(Emocional) = %v, want weight 2", d)
	}
	if d := alg.DomainByName("Mental"); d != nil {
		t.Errorf("DomainByName(Mental) = %v, want nil", d)
	}
}

func TestAlgorithm_ReferencesQuestion(t *testing.T) {
	alg := Algorithm{
		Domains: []AlgorithmDomain{
			{Name: "Físico", Questions: []int{0, 1}},
		},
	}

	if !alg.ReferencesQuestion(1) {
		t.Error("ReferencesQuestion(1) should be true")
	}
	if alg.ReferencesQuestion(5) {
		t.Error("ReferencesQuestion(5) should be false")
	}
}

func TestAlgorithmDomain_EffectiveWeight(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		expected float64
	}{
		{"Explicit weight", 2.5, 2.5},
		{"Zero defaults to 1", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := AlgorithmDomain{Weight: tt.weight}
			if got := d.EffectiveWeight(); got != tt.expected {
				t.Errorf("EffectiveWeight() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestQuestion_HasValidWeightPair(t *testing.T) {
	tests := []struct {
		name     string
		qType    QuestionType
		personal float64
		org      float64
		expected bool
	}{
		{"Exact sum", QuestionTypePersonal, 0.7, 0.3, true},
		{"Within tolerance", QuestionTypeOrganizational, 0.7005, 0.3, true},
		{"Outside tolerance", QuestionTypePersonal, 0.3, 0.3, false},
		{"Mixed exempt", QuestionTypeMixed, 0.3, 0.3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Question{
				Type:           tt.qType,
				PersonalWeight: tt.personal,
				OrgWeight:      tt.org,
			}
			if got := q.HasValidWeightPair(); got != tt.expected {
				t.Errorf("HasValidWeightPair() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestQuestion_BeforeCreate_Defaults(t *testing.T) {
	q := &Question{Number: 3, Domain: "Físico", Text: "¿Duerme bien?"}
	q.BeforeCreate()

	if q.Weight != 1 {
		t.Errorf("Weight = %v, want 1", q.Weight)
	}
	if q.Severity != 1 {
		t.Errorf("Severity = %v, want 1", q.Severity)
	}
}

func TestResult_SetAnswers_RoundTrip(t *testing.T) {
	result := &Result{}
	result.BeforeCreate()
	result.SetAnswers(map[int]int{0: 5, 1: 4, 2: 1})

	answers := result.AnswerSet()
	if len(answers) != 3 {
		t.Fatalf("AnswerSet() returned %d answers, want 3", len(answers))
	}
	if answers[0] != 5 || answers[1] != 4 || answers[2] != 1 {
		t.Errorf("AnswerSet() = %v", answers)
	}
}

func TestIsValidAnswerValue(t *testing.T) {
	tests := []struct {
		value    int
		expected bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tt := range tests {
		if got := IsValidAnswerValue(tt.value); got != tt.expected {
			t.Errorf("IsValidAnswerValue(%d) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}
