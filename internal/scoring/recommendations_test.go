package scoring

import "testing"

func TestLevelForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected Level
	}{
		{0, LevelLow},
		{4.9, LevelLow},
		{5.0, LevelMedium},
		{7.9, LevelMedium},
		{8.0, LevelHigh},
		{10.0, LevelHigh},
	}

	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.expected {
			t.Errorf("LevelForScore(%v) = %v, want %v", tt.score, got, tt.expected)
		}
	}
}

func TestResolve_SurveyLeveledKeyWins(t *testing.T) {
	recs := map[string]string{
		"Físico_high": "Sigue así",
		"Físico":      "Recomendación genérica",
	}

	got := Resolve("Físico", 8.5, recs)
	if got == nil || got.Message != "Sigue así" {
		t.Errorf("Resolve() = %v, want leveled key match", got)
	}
}

func TestResolve_LevelBoundaryMediumVsHigh(t *testing.T) {
	recs := map[string]string{
		"Físico_medium": "Puedes mejorar",
		"Físico_high":   "Excelente",
	}

	medium := Resolve("Físico", 7.9, recs)
	high := Resolve("Físico", 8.0, recs)

	if medium == nil || medium.Message != "Puedes mejorar" {
		t.Errorf("Resolve(7.9) = %v, want medium recommendation", medium)
	}
	if high == nil || high.Message != "Excelente" {
		t.Errorf("Resolve(8.0) = %v, want high recommendation", high)
	}
}

func TestResolve_UnqualifiedDomainKeyFallback(t *testing.T) {
	recs := map[string]string{
		"Emocional": "Cuida tus emociones",
	}

	got := Resolve("Emocional", 3.0, recs)
	if got == nil || got.Message != "Cuida tus emociones" {
		t.Errorf("Resolve() = %v, want unqualified domain match", got)
	}
}

func TestResolve_BuiltinTableBands(t *testing.T) {
	tests := []struct {
		name  string
		score float64
	}{
		{"Low band", 2.0},
		{"Medium band", 6.0},
		{"High band lower edge", 7.0},
		{"High band upper edge inclusive", 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve("Físico", tt.score, nil)
			if got == nil {
				t.Fatalf("Resolve(Físico, %v) = nil, want builtin fallback", tt.score)
			}
			if got.Message == "" {
				t.Error("fallback message should not be empty")
			}
			if len(got.Suggestions) > maxFallbackSuggestions {
				t.Errorf("got %d suggestions, want at most %d", len(got.Suggestions), maxFallbackSuggestions)
			}
		})
	}
}

func TestResolve_UpperBandSharedBySevenAndTen(t *testing.T) {
	atSeven := Resolve("Emocional", 7.0, nil)
	atTen := Resolve("Emocional", 10.0, nil)

	if atSeven == nil || atTen == nil {
		t.Fatal("both scores should resolve")
	}
	if atSeven.Message != atTen.Message {
		t.Errorf("7.0 and 10.0 should land in the same band: %q vs %q", atSeven.Message, atTen.Message)
	}
}

func TestResolve_ReturnsFirstTwoSuggestionsOnly(t *testing.T) {
	got := Resolve("Mental", 2.0, nil)
	if got == nil {
		t.Fatal("Resolve() = nil, want builtin fallback")
	}
	if len(got.Suggestions) != 2 {
		t.Errorf("got %d suggestions, want 2", len(got.Suggestions))
	}
}

func TestResolve_UnknownDomainReturnsNil(t *testing.T) {
	if got := Resolve("Astral", 5.0, nil); got != nil {
		t.Errorf("Resolve(unknown domain) = %v, want nil", got)
	}
}

func TestResolve_EmptySurveyTextIgnored(t *testing.T) {
	recs := map[string]string{"Físico": ""}

	got := Resolve("Físico", 6.0, recs)
	if got == nil {
		t.Fatal("empty survey text should fall through to builtin table")
	}
	if got.Message == "" {
		t.Error("fallback message should not be empty")
	}
}
