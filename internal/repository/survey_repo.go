package repository

import (
	"context"

	"github.com/ebi360/bs360_backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSurveyRepository implements SurveyRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoSurveyRepository struct {
	collection *mongo.Collection
}

// NewMongoSurveyRepository creates a new MongoDB survey repository
func NewMongoSurveyRepository(db *mongo.Database) *MongoSurveyRepository {
	return &MongoSurveyRepository{
		collection: db.Collection(models.Survey{}.CollectionName()),
	}
}

// Create creates a new survey
func (r *MongoSurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	survey.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, survey)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrSurveyCodeExists
	}
	return err
}

// GetByID finds a survey by ID
func (r *MongoSurveyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Survey, error) {
	var survey models.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// GetByCode finds a survey by its unique code
func (r *MongoSurveyRepository) GetByCode(ctx context.Context, code string) (*models.Survey, error) {
	var survey models.Survey
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// Update updates a survey
func (r *MongoSurveyRepository) Update(ctx context.Context, survey *models.Survey) error {
	survey.BeforeUpdate()
	update := bson.M{"$set": survey}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": survey.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrSurveyCodeExists
		}
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrSurveyNotFound
	}
	return nil
}

// Delete deletes a survey (draft only)
// #BUSINESS_RULE: Only drafts can be removed; active and archived surveys are
// referenced by historical results and must stay
func (r *MongoSurveyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":    id,
		"status": models.SurveyStatusDraft,
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrSurveyNotDraft
	}
	return nil
}

// List lists surveys with optional status filtering and pagination
func (r *MongoSurveyRepository) List(ctx context.Context, status *models.SurveyStatus, opts PaginationOptions) (*PaginatedResult[models.Survey], error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
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

	var surveys []models.Survey
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.Survey]{
		Items:      surveys,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListActive lists all active surveys
func (r *MongoSurveyRepository) ListActive(ctx context.Context) ([]models.Survey, error) {
	filter := bson.M{"status": models.SurveyStatusActive}
	findOpts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var surveys []models.Survey
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

// Ensure MongoSurveyRepository implements SurveyRepository
var _ SurveyRepository = (*MongoSurveyRepository)(nil)
