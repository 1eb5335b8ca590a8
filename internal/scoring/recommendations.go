package scoring

import "fmt"

// Level names a score band used for survey-specific recommendation lookups
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// LevelForScore maps a domain score to its recommendation level.
// #BUSINESS_RULE: Boundary is inclusive at the upper band - 8.0 is high, 7.9 is medium
func LevelForScore(score float64) Level {
	switch {
	case score >= 8:
		return LevelHigh
	case score >= 5:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Recommendation is the resolved advice for one domain score
type Recommendation struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// fallbackBand is one score band of the built-in recommendation table
type fallbackBand struct {
	min, max    float64
	title       string
	suggestions []string
}

// maxFallbackSuggestions limits how many built-in suggestions are surfaced
const maxFallbackSuggestions = 2

// contains reports whether score falls in the band. The upper band [7,10] is
// closed on both ends; the lower bands are half-open.
func (b fallbackBand) contains(score float64) bool {
	if b.max == 10 {
		return score >= b.min && score <= b.max
	}
	return score >= b.min && score < b.max
}

// builtinRecommendations is the static fallback table keyed by domain, three
// bands per domain: [0,5), [5,7), [7,10].
var builtinRecommendations = map[string][]fallbackBand{
	"Físico": {
		{0, 5, "Tu bienestar físico necesita atención urgente", []string{
			"Agenda un chequeo médico general esta semana",
			"Camina al menos 20 minutos al día",
			"Establece una hora fija para dormir",
		}},
		{5, 7, "Tu bienestar físico puede mejorar", []string{
			"Incorpora 3 sesiones de ejercicio por semana",
			"Reduce el consumo de alimentos ultraprocesados",
			"Haz pausas activas durante la jornada",
		}},
		{7, 10, "Mantienes un buen bienestar físico", []string{
			"Mantén tu rutina de ejercicio actual",
			"Comparte tus hábitos con tu equipo",
		}},
	},
	"Emocional": {
		{0, 5, "Tu bienestar emocional necesita apoyo", []string{
			"Considera hablar con un profesional de salud mental",
			"Practica 10 minutos diarios de respiración consciente",
			"Identifica y anota tus principales fuentes de estrés",
		}},
		{5, 7, "Tu bienestar emocional es estable pero frágil", []string{
			"Dedica tiempo semanal a actividades que disfrutes",
			"Practica la gratitud al final del día",
			"Limita la exposición a noticias negativas",
		}},
		{7, 10, "Tu bienestar emocional es sólido", []string{
			"Sigue cultivando tus relaciones de apoyo",
			"Acompaña a colegas que lo necesiten",
		}},
	},
	"Mental": {
		{0, 5, "Tu carga mental está en niveles críticos", []string{
			"Prioriza tus tareas y delega lo que puedas",
			"Desconéctate del trabajo fuera del horario laboral",
			"Consulta con tu líder sobre tu carga de trabajo",
		}},
		{5, 7, "Tu claridad mental puede fortalecerse", []string{
			"Bloquea espacios de concentración sin interrupciones",
			"Reduce la multitarea durante el día",
			"Duerme al menos 7 horas",
		}},
		{7, 10, "Tu agilidad mental está en buen nivel", []string{
			"Dedica tiempo a aprender algo nuevo cada semana",
			"Mantén tus rutinas de descanso",
		}},
	},
	"Social": {
		{0, 5, "Tus vínculos sociales necesitan atención", []string{
			"Agenda un encuentro con alguien de confianza esta semana",
			"Participa en una actividad grupal de tu empresa",
			"Saluda y conversa con tus compañeros a diario",
		}},
		{5, 7, "Tus vínculos sociales pueden profundizarse", []string{
			"Propón almuerzos de equipo periódicos",
			"Reconecta con un amigo que tengas olvidado",
			"Participa en actividades fuera del trabajo",
		}},
		{7, 10, "Tus vínculos sociales son una fortaleza", []string{
			"Sigue invirtiendo en tus relaciones",
			"Ayuda a integrar a los nuevos miembros del equipo",
		}},
	},
	"Laboral": {
		{0, 5, "Tu relación con el trabajo requiere cambios", []string{
			"Conversa con tu líder sobre tus expectativas",
			"Define límites claros de horario",
			"Identifica qué tareas te desgastan más",
		}},
		{5, 7, "Tu bienestar laboral es mejorable", []string{
			"Negocia espacios de desarrollo profesional",
			"Celebra los logros pequeños de tu semana",
			"Organiza tu día en bloques de trabajo",
		}},
		{7, 10, "Tu bienestar laboral es saludable", []string{
			"Comparte las prácticas que te funcionan",
			"Busca nuevos desafíos que te motiven",
		}},
	},
	"Financiero": {
		{0, 5, "Tu tranquilidad financiera necesita un plan", []string{
			"Registra tus gastos durante un mes completo",
			"Define un presupuesto mensual realista",
			"Busca asesoría financiera en tu empresa",
		}},
		{5, 7, "Tu salud financiera va por buen camino", []string{
			"Automatiza un ahorro mensual aunque sea pequeño",
			"Revisa y reduce gastos recurrentes innecesarios",
			"Construye un fondo de emergencia",
		}},
		{7, 10, "Tu salud financiera es estable", []string{
			"Considera objetivos de inversión a largo plazo",
			"Mantén tu fondo de emergencia al día",
		}},
	},
}

// Resolve returns the recommendation for a domain score, or nil when nothing
// matches. Resolution order, first match wins:
//  1. survey-specific "{domain}_{level}" key
//  2. survey-specific "{domain}" key
//  3. built-in table band for the domain (first two suggestions only)
//
// #BUSINESS_RULE: A nil return means the caller renders no recommendation block;
// it is not an error.
func Resolve(domain string, score float64, surveyRecommendations map[string]string) *Recommendation {
	if surveyRecommendations != nil {
		leveled := fmt.Sprintf("%s_%s", domain, LevelForScore(score))
		if text, ok := surveyRecommendations[leveled]; ok && text != "" {
			return &Recommendation{Message: text}
		}
		if text, ok := surveyRecommendations[domain]; ok && text != "" {
			return &Recommendation{Message: text}
		}
	}

	bands, ok := builtinRecommendations[domain]
	if !ok {
		return nil
	}
	for _, band := range bands {
		if band.contains(score) {
			suggestions := band.suggestions
			if len(suggestions) > maxFallbackSuggestions {
				suggestions = suggestions[:maxFallbackSuggestions]
			}
			return &Recommendation{
				Message:     band.title,
				Suggestions: suggestions,
			}
		}
	}
	return nil
}
