package database

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ebi360/bs360_backend/internal/models"
)

// BaseSurveyCode is the code of the platform-wide wellbeing survey
const BaseSurveyCode = "BS360-BASE"

// Seeder handles database seeding operations
// #SEED_DATA: Base wellbeing survey with the six Bs360 domains
type Seeder struct {
	db *mongo.Database
}

// NewSeeder creates a new database seeder
func NewSeeder(db *mongo.Database) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed operations
func (s *Seeder) SeedAll(ctx context.Context) error {
	log.Println("Starting database seeding...")

	if err := s.SeedBaseSurvey(ctx); err != nil {
		return fmt.Errorf("failed to seed base survey: %w", err)
	}

	if err := s.SeedDemoCompany(ctx); err != nil {
		return fmt.Errorf("failed to seed demo company: %w", err)
	}

	log.Println("Database seeding completed successfully")
	return nil
}

// SeedBaseSurvey seeds the platform base wellbeing survey and its questions
// #IMPLEMENTATION_DECISION: Seeded directly as ACTIVE so new tenants can check in
// without a manual activation step
func (s *Seeder) SeedBaseSurvey(ctx context.Context) error {
	surveys := s.db.Collection(models.Survey{}.CollectionName())

	// Check if the base survey already exists
	count, err := surveys.CountDocuments(ctx, bson.M{"code": BaseSurveyCode})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Base survey already exists, skipping seeding")
		return nil
	}

	survey, questions := s.baseSurvey()

	survey.BeforeCreate()
	if err := survey.Activate(); err != nil {
		return err
	}
	survey.QuestionCount = len(questions)

	if _, err := surveys.InsertOne(ctx, survey); err != nil {
		return err
	}

	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		q.SurveyID = survey.ID
		q.BeforeCreate()
		docs[i] = q
	}

	questionColl := s.db.Collection(models.Question{}.CollectionName())
	if _, err := questionColl.InsertMany(ctx, docs); err != nil {
		return err
	}

	log.Printf("Seeded base survey %s with %d questions", survey.Code, len(questions))
	return nil
}

// SeedDemoCompany seeds a demo company for trials and local development
func (s *Seeder) SeedDemoCompany(ctx context.Context) error {
	companies := s.db.Collection(models.Company{}.CollectionName())

	count, err := companies.CountDocuments(ctx, bson.M{"slug": "demo"})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo company already exists, skipping seeding")
		return nil
	}

	company := &models.Company{
		Name:         "Demo",
		Slug:         "demo",
		Description:  "Empresa de demostración Bs360",
		ContactEmail: "demo@ebi360.io",
		Plan:         models.SubscriptionPlanBasic,
		Branding: models.Branding{
			PrimaryColor:   "#2E7D6B",
			SecondaryColor: "#F4A259",
		},
	}
	company.BeforeCreate()

	if _, err := companies.InsertOne(ctx, company); err != nil {
		return err
	}

	log.Printf("Seeded demo company %s", company.Slug)
	return nil
}

// baseSurvey returns the base wellbeing survey definition with its questions
// #SEED_DATA: Two questions per domain, Spanish wording as shipped to tenants
func (s *Seeder) baseSurvey() (*models.Survey, []*models.Question) {
	survey := &models.Survey{
		Code:        BaseSurveyCode,
		Name:        "Encuesta de Bienestar Bs360",
		Description: "Encuesta base de bienestar integral con los seis dominios Bs360",
		Version:     1,
		Type:        models.SurveyTypeBase,
		IsBase:      true,
		Algorithm: models.Algorithm{
			ScoringMethod: models.ScoringMethodWeightedAverage,
			Domains: []models.AlgorithmDomain{
				{Name: "Físico", Weight: 1, Questions: []int{1, 2}},
				{Name: "Emocional", Weight: 1, Questions: []int{3, 4}},
				{Name: "Mental", Weight: 1, Questions: []int{5, 6}},
				{Name: "Social", Weight: 1, Questions: []int{7, 8}},
				{Name: "Laboral", Weight: 1, Questions: []int{9, 10}},
				{Name: "Financiero", Weight: 1, Questions: []int{11, 12}},
			},
			Thresholds: map[string]float64{
				"low":    4.0,
				"medium": 7.0,
			},
			Recommendations: map[string]string{
				"Físico_low":     "Incorpora pausas activas y al menos 30 minutos de actividad física diaria.",
				"Físico_medium":  "Mantén tu rutina de ejercicio y cuida tus horas de sueño.",
				"Físico_high":    "Excelente condición física, sigue así.",
				"Emocional_low":  "Busca espacios de desconexión y considera apoyo profesional si lo necesitas.",
				"Emocional_high": "Tu bienestar emocional es sólido, compártelo con tu equipo.",
				"Mental_low":     "Prioriza tareas y practica técnicas de concentración.",
				"Social_low":     "Dedica tiempo a actividades con tu equipo fuera del trabajo.",
				"Laboral_low":    "Conversa con tu responsable sobre carga de trabajo y expectativas.",
				"Financiero_low": "Revisa tu presupuesto mensual y apóyate en los recursos de educación financiera.",
			},
		},
	}

	questions := []*models.Question{
		{Number: 1, Domain: "Físico", Construct: "Energía", Type: models.QuestionTypePersonal, Text: "¿Con cuánta energía física terminas tu jornada?", PersonalWeight: 1.0, OrgWeight: 0.0},
		{Number: 2, Domain: "Físico", Construct: "Descanso", Type: models.QuestionTypeOrganizational, Text: "¿Tu carga de trabajo te permite descansar lo suficiente?", PersonalWeight: 0.3, OrgWeight: 0.7},
		{Number: 3, Domain: "Emocional", Construct: "Estado de ánimo", Type: models.QuestionTypePersonal, Text: "¿Cómo calificarías tu estado de ánimo durante la última semana?", PersonalWeight: 1.0, OrgWeight: 0.0},
		{Number: 4, Domain: "Emocional", Construct: "Apoyo", Type: models.QuestionTypeOrganizational, Text: "¿Sientes que tu empresa se preocupa por tu bienestar emocional?", PersonalWeight: 0.2, OrgWeight: 0.8},
		{Number: 5, Domain: "Mental", Construct: "Concentración", Type: models.QuestionTypePersonal, Text: "¿Puedes concentrarte en tus tareas sin interrupciones constantes?", PersonalWeight: 0.6, OrgWeight: 0.4},
		{Number: 6, Domain: "Mental", Construct: "Carga cognitiva", Type: models.QuestionTypeMixed, Text: "¿Sientes que tu trabajo te exige mentalmente más de lo razonable?", PersonalWeight: 0.5, OrgWeight: 0.5},
		{Number: 7, Domain: "Social", Construct: "Pertenencia", Type: models.QuestionTypePersonal, Text: "¿Te sientes parte de tu equipo de trabajo?", PersonalWeight: 0.7, OrgWeight: 0.3},
		{Number: 8, Domain: "Social", Construct: "Colaboración", Type: models.QuestionTypeOrganizational, Text: "¿La empresa facilita espacios de colaboración entre equipos?", PersonalWeight: 0.1, OrgWeight: 0.9},
		{Number: 9, Domain: "Laboral", Construct: "Reconocimiento", Type: models.QuestionTypeOrganizational, Text: "¿Sientes que tu trabajo es reconocido?", PersonalWeight: 0.2, OrgWeight: 0.8},
		{Number: 10, Domain: "Laboral", Construct: "Desarrollo", Type: models.QuestionTypePersonal, Text: "¿Ves oportunidades de crecimiento profesional en tu puesto actual?", PersonalWeight: 0.5, OrgWeight: 0.5},
		{Number: 11, Domain: "Financiero", Construct: "Seguridad", Type: models.QuestionTypePersonal, Text: "¿Qué tan tranquilo te sientes con tu situación financiera actual?", PersonalWeight: 0.8, OrgWeight: 0.2},
		{Number: 12, Domain: "Financiero", Construct: "Compensación", Type: models.QuestionTypeOrganizational, Text: "¿Consideras que tu compensación es justa para tu rol?", PersonalWeight: 0.2, OrgWeight: 0.8},
	}

	return survey, questions
}
