// Package main provides a CLI tool to import a survey workbook directly into the database.
// Usage: go run cmd/import-survey/main.go -file survey.xlsx
// This is useful for bootstrapping environments without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ebi360/bs360_backend/internal/importer"
	"github.com/ebi360/bs360_backend/internal/models"
)

func main() {
	// Define command line flags
	file := flag.String("file", "", "Path to the survey XLSX workbook (required)")
	activate := flag.Bool("activate", false, "Activate the survey immediately after import")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	dryRun := flag.Bool("dry-run", false, "Parse and validate only, do not write to database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Imports a survey workbook (Metadata, Preguntas, Algoritmo sheets) into the Bs360 database.\n\n")
		fmt.Fprintf(os.Stderr, "Configuration is loaded from .env file and/or environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  BS360_DATABASE_URI   MongoDB connection URI\n")
		fmt.Fprintf(os.Stderr, "  BS360_DATABASE_NAME  Database name (default: bs360)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -file encuesta.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file encuesta.xlsx -activate\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file encuesta.xlsx -dry-run\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	// Validate required flags
	if *file == "" {
		log.Fatal("Error: -file is required")
	}

	// Open and parse the workbook
	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Error opening workbook: %v", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Printf("Warning: error closing workbook: %v", closeErr)
		}
	}()

	data, err := importer.ParseWorkbook(f)
	if err != nil {
		log.Fatalf("Error parsing workbook: %v", err)
	}

	// Validate, collecting every problem before reporting
	if validationErrs := importer.Validate(data); len(validationErrs) > 0 {
		fmt.Fprintf(os.Stderr, "Workbook validation failed with %d error(s):\n", len(validationErrs))
		for _, e := range validationErrs {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		os.Exit(1)
	}

	fmt.Println("=== Survey Workbook ===")
	fmt.Printf("  Code:      %s\n", data.Metadata.Code)
	fmt.Printf("  Name:      %s\n", data.Metadata.Name)
	fmt.Printf("  Version:   %d\n", data.Metadata.Version)
	fmt.Printf("  Type:      %s\n", data.Metadata.SurveyType)
	var personal, organizational, mixed int
	for i := range data.Questions {
		switch {
		case data.Questions[i].IsPersonal():
			personal++
		case data.Questions[i].IsOrganizational():
			organizational++
		default:
			mixed++
		}
	}
	fmt.Printf("  Questions: %d (%d personal, %d organizational, %d mixed)\n", len(data.Questions), personal, organizational, mixed)
	fmt.Printf("  Domains:   %d\n", len(data.Algorithm.Domains))
	fmt.Println()

	if *dryRun {
		fmt.Println("[DRY RUN] Workbook is valid, no changes made to database")
		return
	}

	// Load database configuration from environment
	dbURI := os.Getenv("BS360_DATABASE_URI")
	if dbURI == "" {
		log.Fatal("Error: BS360_DATABASE_URI environment variable is required")
	}
	dbName := os.Getenv("BS360_DATABASE_NAME")
	if dbName == "" {
		dbName = "bs360"
	}

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(dbURI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			log.Printf("Error disconnecting from MongoDB: %v", disconnectErr)
		}
	}()

	// Ping database
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	db := client.Database(dbName)

	// Check for an existing survey with the same code
	surveyCollection := db.Collection(models.Survey{}.CollectionName())
	var existing models.Survey
	err = surveyCollection.FindOne(ctx, bson.M{"code": data.Metadata.Code}).Decode(&existing)
	if err == nil {
		log.Fatalf("Error: survey with code '%s' already exists (ID: %s)", data.Metadata.Code, existing.ID.Hex())
	} else if err != mongo.ErrNoDocuments {
		log.Fatalf("Error checking existing survey: %v", err)
	}

	// Build the survey document
	survey := &models.Survey{
		Code:        data.Metadata.Code,
		Name:        data.Metadata.Name,
		Description: data.Metadata.Description,
		Version:     data.Metadata.Version,
		Type:        data.Metadata.SurveyType,
		Country:     data.Metadata.Country,
		Regulation:  data.Metadata.Regulation,
		IsBase:      data.Metadata.IsBase,
		IsMandatory: data.Metadata.IsMandatory,
		Algorithm:   data.Algorithm,
	}
	survey.QuestionCount = len(data.Questions)
	survey.BeforeCreate()

	if *activate {
		if err := survey.Activate(); err != nil {
			log.Fatalf("Failed to activate survey: %v", err)
		}
	}

	// Insert survey
	if _, err := surveyCollection.InsertOne(ctx, survey); err != nil {
		log.Fatalf("Failed to create survey: %v", err)
	}
	fmt.Printf("✓ Created survey: %s v%d (%s)\n", survey.Code, survey.Version, survey.ID.Hex())

	// Insert questions
	questionCollection := db.Collection(models.Question{}.CollectionName())
	docs := make([]interface{}, len(data.Questions))
	for i := range data.Questions {
		q := data.Questions[i]
		q.SurveyID = survey.ID
		q.BeforeCreate()
		docs[i] = q
	}

	if _, err := questionCollection.InsertMany(ctx, docs); err != nil {
		// Clean up the orphaned survey so a re-import succeeds
		_, _ = surveyCollection.DeleteOne(ctx, bson.M{"_id": survey.ID})
		log.Fatalf("Failed to create questions (survey rolled back): %v", err)
	}
	fmt.Printf("✓ Created %d questions\n", len(data.Questions))

	fmt.Println()
	fmt.Printf("Survey import complete! Status: %s\n", survey.Status)
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile(path string) {
	if path == "" {
		// Try to find .env in current dir or backend dir
		cwd, _ := os.Getwd()
		if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
			path = ".env"
		} else if _, err := os.Stat(filepath.Join(cwd, "backend", ".env")); err == nil {
			path = filepath.Join(cwd, "backend", ".env")
		}
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}
}
