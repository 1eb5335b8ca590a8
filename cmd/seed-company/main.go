// Package main provides a CLI tool to create a company with an admin profile.
// Usage: go run cmd/seed-company/main.go -name "Company Name" -email "admin@company.com"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ebi360/bs360_backend/internal/models"
)

func main() {
	// Define command line flags
	name := flag.String("name", "", "Company name (required)")
	email := flag.String("email", "", "Admin profile email (required)")
	slug := flag.String("slug", "", "URL-safe slug (auto-generated from name if not provided)")
	contactEmail := flag.String("contact-email", "", "Company contact email (defaults to admin email)")
	adminName := flag.String("admin-name", "", "Admin profile display name (optional)")
	plan := flag.String("plan", "basic", "Subscription plan: basic, pro, or enterprise")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	dryRun := flag.Bool("dry-run", false, "Print what would be created without writing to database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Creates a company with an admin profile in the Bs360 database.\n\n")
		fmt.Fprintf(os.Stderr, "Configuration is loaded from .env file and/or environment variables.\n")
		fmt.Fprintf(os.Stderr, "Environment variables take precedence over .env file values.\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  BS360_DATABASE_URI   MongoDB connection URI\n")
		fmt.Fprintf(os.Stderr, "  BS360_DATABASE_NAME  Database name (default: bs360)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -name \"Acme Corp\" -email \"admin@acme.com\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -name \"Test Company\" -email \"test@example.com\" -plan pro\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -name \"Test Company\" -email \"test@example.com\" -dry-run\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	// Validate required flags
	if *name == "" {
		log.Fatal("Error: -name is required")
	}
	if *email == "" {
		log.Fatal("Error: -email is required")
	}

	// Validate email format
	if !isValidEmail(*email) {
		log.Fatalf("Error: invalid email format: %s", *email)
	}

	// Validate subscription plan
	subscriptionPlan := models.SubscriptionPlan(strings.ToUpper(*plan))
	if !subscriptionPlan.IsValid() {
		log.Fatalf("Error: invalid plan '%s' (expected basic, pro, or enterprise)", *plan)
	}

	// Auto-generate slug if not provided
	if *slug == "" {
		*slug = generateSlug(*name)
	}

	// Default contact email to admin email
	if *contactEmail == "" {
		*contactEmail = *email
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

	// Create company and admin profile objects
	now := time.Now().UTC()
	companyID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()

	company := &models.Company{
		ID:           companyID,
		Name:         *name,
		Slug:         *slug,
		ContactEmail: *contactEmail,
		Plan:         subscriptionPlan,
		Settings:     models.DefaultCompanySettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	profile := &models.Profile{
		ID:         profileID,
		Email:      strings.ToLower(*email),
		FullName:   *adminName,
		CompanyID:  &companyID,
		Roles:      []models.Role{models.RoleCompanyAdmin, models.RoleEmployee},
		ActiveRole: models.RoleCompanyAdmin,
		IsActive:   true,
		Language:   "es",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Print what will be created
	fmt.Println("=== Company ===")
	fmt.Printf("  ID:            %s\n", company.ID.Hex())
	fmt.Printf("  Name:          %s\n", company.Name)
	fmt.Printf("  Slug:          %s\n", company.Slug)
	fmt.Printf("  Plan:          %s\n", company.Plan)
	fmt.Printf("  Contact Email: %s\n", company.ContactEmail)
	fmt.Println()
	fmt.Println("=== Admin Profile ===")
	fmt.Printf("  ID:          %s\n", profile.ID.Hex())
	fmt.Printf("  Email:       %s\n", profile.Email)
	fmt.Printf("  Name:        %s\n", profile.FullName)
	fmt.Printf("  Active Role: %s\n", profile.ActiveRole)
	fmt.Printf("  Company ID:  %s\n", companyID.Hex())
	fmt.Println()

	if *dryRun {
		fmt.Println("[DRY RUN] No changes made to database")
		return
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

	// Check if company with same slug already exists
	companyCollection := db.Collection(models.Company{}.CollectionName())
	var existingCompany models.Company
	err = companyCollection.FindOne(ctx, bson.M{"slug": company.Slug, "deleted_at": nil}).Decode(&existingCompany)
	if err == nil {
		log.Fatalf("Error: company with slug '%s' already exists (ID: %s)", company.Slug, existingCompany.ID.Hex())
	} else if err != mongo.ErrNoDocuments {
		log.Fatalf("Error checking existing company: %v", err)
	}

	// Check if profile with same email already exists
	profileCollection := db.Collection(models.Profile{}.CollectionName())
	var existingProfile models.Profile
	err = profileCollection.FindOne(ctx, bson.M{"email": profile.Email, "deleted_at": nil}).Decode(&existingProfile)
	if err == nil {
		log.Fatalf("Error: profile with email '%s' already exists (ID: %s)", profile.Email, existingProfile.ID.Hex())
	} else if err != mongo.ErrNoDocuments {
		log.Fatalf("Error checking existing profile: %v", err)
	}

	// Insert company
	_, err = companyCollection.InsertOne(ctx, company)
	if err != nil {
		log.Fatalf("Failed to create company: %v", err)
	}
	fmt.Printf("✓ Created company: %s (%s)\n", company.Name, company.ID.Hex())

	// Insert admin profile
	_, err = profileCollection.InsertOne(ctx, profile)
	if err != nil {
		// Rollback: delete the company
		_, _ = companyCollection.DeleteOne(ctx, bson.M{"_id": company.ID})
		log.Fatalf("Failed to create admin profile (company rolled back): %v", err)
	}
	fmt.Printf("✓ Created admin profile: %s (%s)\n", profile.Email, profile.ID.Hex())

	fmt.Println()
	fmt.Println("Company setup complete!")
	fmt.Printf("The admin can now log in at your frontend using: %s\n", profile.Email)
}

// generateSlug creates a URL-safe slug from a company name
func generateSlug(name string) string {
	// Convert to lowercase
	slug := strings.ToLower(name)

	// Replace spaces and underscores with hyphens
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	// Remove any character that isn't alphanumeric or hyphen
	reg := regexp.MustCompile(`[^a-z0-9-]`)
	slug = reg.ReplaceAllString(slug, "")

	// Replace multiple consecutive hyphens with single hyphen
	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	// Trim hyphens from start and end
	slug = strings.Trim(slug, "-")

	return slug
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	// Simple regex for email validation
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(pattern, email)
	return matched
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
			log.Printf("Error loading .env file: %v", err)
		}
	}
}
