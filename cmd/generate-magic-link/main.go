// Package main provides a CLI tool to generate a magic link for user authentication.
// Usage: go run cmd/generate-magic-link/main.go -email "user@example.com"
// This is useful for development when the mail service is not configured.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
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
	email := flag.String("email", "", "Profile email to generate magic link for (required)")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	baseURL := flag.String("base-url", "", "Override BS360_MAGIC_LINK_BASE_URL from environment")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generates a magic link for user authentication (development use).\n\n")
		fmt.Fprintf(os.Stderr, "Configuration is loaded from .env file and/or environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  BS360_DATABASE_URI        MongoDB connection URI\n")
		fmt.Fprintf(os.Stderr, "  BS360_DATABASE_NAME       Database name (default: bs360)\n")
		fmt.Fprintf(os.Stderr, "  BS360_MAGIC_LINK_BASE_URL Frontend base URL for magic links\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -email \"admin@empresa.com\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -email \"user@example.com\" -base-url \"http://localhost:3000\"\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	// Validate required flags
	if *email == "" {
		log.Fatal("Error: -email is required")
	}

	// Validate email format
	if !isValidEmail(*email) {
		log.Fatalf("Error: invalid email format: %s", *email)
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

	// Get magic link base URL
	magicLinkBaseURL := *baseURL
	if magicLinkBaseURL == "" {
		magicLinkBaseURL = os.Getenv("BS360_MAGIC_LINK_BASE_URL")
	}
	if magicLinkBaseURL == "" {
		magicLinkBaseURL = "http://localhost:3000" // Default for development
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

	// Find profile by email
	profileCollection := db.Collection(models.Profile{}.CollectionName())
	var profile models.Profile
	err = profileCollection.FindOne(ctx, bson.M{
		"email":      *email,
		"deleted_at": nil,
	}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		log.Fatalf("Error: no profile found with email '%s'", *email)
	} else if err != nil {
		log.Fatalf("Error finding profile: %v", err)
	}

	if !profile.IsActive {
		log.Fatalf("Error: profile '%s' is inactive", *email)
	}

	// Resolve company name when the profile belongs to one
	companyName := "(sin empresa)"
	if profile.CompanyID != nil {
		companyCollection := db.Collection(models.Company{}.CollectionName())
		var company models.Company
		err = companyCollection.FindOne(ctx, bson.M{
			"_id":        *profile.CompanyID,
			"deleted_at": nil,
		}).Decode(&company)
		if err == mongo.ErrNoDocuments {
			log.Fatalf("Error: company not found for profile '%s'", *email)
		} else if err != nil {
			log.Fatalf("Error finding company: %v", err)
		}
		companyName = company.Name
	}

	// Invalidate existing magic links for this email
	secureLinkCollection := db.Collection(models.SecureLink{}.CollectionName())
	_, err = secureLinkCollection.UpdateMany(ctx,
		bson.M{
			"email":    *email,
			"is_valid": true,
			"type":     models.SecureLinkTypeAuth,
		},
		bson.M{"$set": bson.M{"is_valid": false}},
	)
	if err != nil {
		log.Printf("Warning: failed to invalidate existing links: %v", err)
	}

	// Generate secure identifier (32 bytes = 64 hex characters)
	identifier, err := generateSecureIdentifier()
	if err != nil {
		log.Fatalf("Failed to generate secure identifier: %v", err)
	}

	// Create secure link
	now := time.Now().UTC()
	link := models.SecureLink{
		ID:               primitive.NewObjectID(),
		SecureIdentifier: identifier,
		Type:             models.SecureLinkTypeAuth,
		Email:            *email,
		UserID:           &profile.ID,
		CompanyID:        profile.CompanyID,
		ExpiresAt:        now.Add(models.AuthLinkExpiryDuration),
		IsValid:          true,
		CreatedAt:        now,
	}

	_, err = secureLinkCollection.InsertOne(ctx, link)
	if err != nil {
		log.Fatalf("Failed to create secure link: %v", err)
	}

	// Build magic link URL (path parameter to match frontend route /auth/verify/:token)
	magicLinkURL := fmt.Sprintf("%s/auth/verify/%s", magicLinkBaseURL, identifier)

	// Output results
	fmt.Println()
	fmt.Println("=== Magic Link Generated ===")
	fmt.Printf("  Profile:  %s\n", profile.Email)
	fmt.Printf("  Name:     %s\n", profile.FullName)
	fmt.Printf("  Company:  %s\n", companyName)
	fmt.Printf("  Expires:  %s (%d minutes)\n", link.ExpiresAt.Format(time.RFC3339), int(models.AuthLinkExpiryDuration.Minutes()))
	fmt.Println()
	fmt.Println("Magic Link URL:")
	fmt.Println(magicLinkURL)
	fmt.Println()
	fmt.Println("Note: This link can only be used once and expires in 15 minutes.")
}

// generateSecureIdentifier generates a cryptographically secure random identifier
func generateSecureIdentifier() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
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
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}
}
