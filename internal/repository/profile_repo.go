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

// MongoProfileRepository implements ProfileRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new MongoDB profile repository
func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{
		collection: db.Collection(models.Profile{}.CollectionName()),
	}
}

// Create creates a new profile
func (r *MongoProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, profile)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrEmailAlreadyExists
	}
	return err
}

// GetByID finds a profile by ID
func (r *MongoProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByEmail finds a profile by email
func (r *MongoProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	filter := bson.M{
		"email":      email,
		"deleted_at": nil,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update updates a profile
func (r *MongoProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.BeforeUpdate()
	filter := bson.M{
		"_id":        profile.ID,
		"deleted_at": nil,
	}
	update := bson.M{"$set": profile}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailAlreadyExists
		}
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

// UpdateRoles replaces the roles set and active role of a profile
// #IMPLEMENTATION_DECISION: Single-field update so role sync never clobbers
// concurrent profile edits
func (r *MongoProfileRepository) UpdateRoles(ctx context.Context, id primitive.ObjectID, roles []models.Role, activeRole models.Role) error {
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"roles":       roles,
			"active_role": activeRole,
			"updated_at":  time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

// SoftDelete soft deletes a profile
func (r *MongoProfileRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"deleted_at": now,
			"updated_at": now,
			"is_active":  false,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *MongoProfileRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"last_login_at": now,
			"updated_at":    now,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

// ListByCompany lists profiles in a company
func (r *MongoProfileRepository) ListByCompany(ctx context.Context, companyID primitive.ObjectID, includeInactive bool, opts PaginationOptions) (*PaginatedResult[models.Profile], error) {
	filter := bson.M{
		"company_id": companyID,
		"deleted_at": nil,
	}
	if !includeInactive {
		filter["is_active"] = true
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

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.Profile]{
		Items:      profiles,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// CountByCompany counts active profiles in a company
func (r *MongoProfileRepository) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"company_id": companyID,
		"deleted_at": nil,
		"is_active":  true,
	}
	return r.collection.CountDocuments(ctx, filter)
}

// Ensure MongoProfileRepository implements ProfileRepository
var _ ProfileRepository = (*MongoProfileRepository)(nil)
