package database

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ebi360/bs360_backend/internal/models"
)

// IndexManager handles MongoDB index creation and management
// #INDEX_IMPLEMENTATION: All indexes defined per data architecture plan
type IndexManager struct {
	db *mongo.Database
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *mongo.Database) *IndexManager {
	return &IndexManager{db: db}
}

// CreateAllIndexes creates all indexes for all collections
// #MIGRATION_DECISION: Indexes created at application startup if they don't exist
func (m *IndexManager) CreateAllIndexes(ctx context.Context) error {
	log.Println("Creating MongoDB indexes...")

	if err := m.createCompanyIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create company indexes: %w", err)
	}

	if err := m.createProfileIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}

	if err := m.createSurveyIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create survey indexes: %w", err)
	}

	if err := m.createQuestionIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}

	if err := m.createResultIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create result indexes: %w", err)
	}

	if err := m.createSecureLinkIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create secure link indexes: %w", err)
	}

	if err := m.createAuditLogIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create audit log indexes: %w", err)
	}

	log.Println("MongoDB indexes created successfully")
	return nil
}

// createCompanyIndexes creates indexes for the companies collection
// #INDEX_IMPLEMENTATION: Slug unique, plan + created_at for admin listings
func (m *IndexManager) createCompanyIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Company{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "plan", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_plan_created"),
		},
		{
			Keys:    bson.D{{Key: "deleted_at", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_deleted_at_sparse"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createProfileIndexes creates indexes for the profiles collection
// #INDEX_IMPLEMENTATION: Email unique, company_id + active for listings
func (m *IndexManager) createProfileIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Profile{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_company_active"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "active_role", Value: 1}},
			Options: options.Index().SetName("idx_company_role"),
		},
		{
			Keys:    bson.D{{Key: "deleted_at", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_deleted_at_sparse"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createSurveyIndexes creates indexes for the surveys collection
// #INDEX_IMPLEMENTATION: Code unique for idempotent imports, status for listings
func (m *IndexManager) createSurveyIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Survey{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_code_unique"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_status_created"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_type"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createQuestionIndexes creates indexes for the questions collection
// #INDEX_IMPLEMENTATION: (survey_id, number) unique keeps workbook ordering stable
func (m *IndexManager) createQuestionIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Question{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "survey_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_survey_number_unique"),
		},
		{
			Keys:    bson.D{{Key: "survey_id", Value: 1}, {Key: "domain", Value: 1}},
			Options: options.Index().SetName("idx_survey_domain"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createResultIndexes creates indexes for the results collection
// #INDEX_IMPLEMENTATION: Results are immutable, indexes serve dashboards and history
func (m *IndexManager) createResultIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Result{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_company_created"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "survey_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_company_survey_created"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createSecureLinkIndexes creates indexes for the secure_links collection
// #INDEX_IMPLEMENTATION: TTL index for automatic expiration, unique identifier
func (m *IndexManager) createSecureLinkIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.SecureLink{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "secure_identifier", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_secure_identifier_unique"),
		},
		{
			// TTL index - MongoDB automatically deletes expired documents
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_email_created"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createAuditLogIndexes creates indexes for the audit_logs collection
// #INDEX_IMPLEMENTATION: Resource lookups and company timelines
func (m *IndexManager) createAuditLogIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.AuditLog{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "actor_user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_actor_created"),
		},
		{
			Keys:    bson.D{{Key: "actor_company_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_company_created"),
		},
		{
			Keys:    bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_resource_created"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_action_created"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// DropAllIndexes drops all custom indexes (not the _id index)
func (m *IndexManager) DropAllIndexes(ctx context.Context) error {
	collections := []string{
		models.Company{}.CollectionName(),
		models.Profile{}.CollectionName(),
		models.Survey{}.CollectionName(),
		models.Question{}.CollectionName(),
		models.Result{}.CollectionName(),
		models.SecureLink{}.CollectionName(),
		models.AuditLog{}.CollectionName(),
	}

	for _, collName := range collections {
		_, err := m.db.Collection(collName).Indexes().DropAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes for %s: %w", collName, err)
		}
	}

	return nil
}

// GetIndexInfo returns information about indexes for a collection
func (m *IndexManager) GetIndexInfo(ctx context.Context, collectionName string) ([]bson.M, error) {
	collection := m.db.Collection(collectionName)

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := cursor.Close(ctx); closeErr != nil {
			// Closing cursor error is logged but not returned
			_ = closeErr
		}
	}()

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, err
	}

	return indexes, nil
}
