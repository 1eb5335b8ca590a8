package repository

import (
	"context"
	"time"

	"github.com/ebi360/bs360_backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCompanyRepository implements CompanyRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoCompanyRepository struct {
	collection *mongo.Collection
}

// NewMongoCompanyRepository creates a new MongoDB company repository
func NewMongoCompanyRepository(db *mongo.Database) *MongoCompanyRepository {
	return &MongoCompanyRepository{
		collection: db.Collection(models.Company{}.CollectionName()),
	}
}

// Create creates a new company
func (r *MongoCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	company.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, company)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrSlugAlreadyExists
	}
	return err
}

// GetByID finds a company by ID
func (r *MongoCompanyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var company models.Company
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&company)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetBySlug finds a company by slug
func (r *MongoCompanyRepository) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var company models.Company
	filter := bson.M{
		"slug":       slug,
		"deleted_at": nil,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&company)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Update updates a company
func (r *MongoCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.BeforeUpdate()
	filter := bson.M{
		"_id":        company.ID,
		"deleted_at": nil,
	}
	update := bson.M{"$set": company}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrSlugAlreadyExists
		}
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrCompanyNotFound
	}
	return nil
}

// SoftDelete soft deletes a company
func (r *MongoCompanyRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"deleted_at": now,
			"updated_at": now,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrCompanyNotFound
	}
	return nil
}

// List lists companies with optional plan filtering and pagination
func (r *MongoCompanyRepository) List(ctx context.Context, plan *models.SubscriptionPlan, opts PaginationOptions) (*PaginatedResult[models.Company], error) {
	filter := bson.M{"deleted_at": nil}
	if plan != nil {
		filter["plan"] = *plan
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	skip := int64((opts.Page - 1) * opts.Limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(opts.Limit)).
		SetSort(bson.D{{Key: opts.SortBy, Value: opts.SortDir}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []models.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.Company]{
		Items:      companies,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Count counts active companies
func (r *MongoCompanyRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"deleted_at": nil})
}

// Ensure MongoCompanyRepository implements CompanyRepository
var _ CompanyRepository = (*MongoCompanyRepository)(nil)
