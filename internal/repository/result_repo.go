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

// MongoResultRepository implements ResultRepository for MongoDB
// #IMPLEMENTATION_DECISION: Results are append-only; the repository exposes no
// update or delete path
type MongoResultRepository struct {
	collection *mongo.Collection
}

// NewMongoResultRepository creates a new MongoDB result repository
func NewMongoResultRepository(db *mongo.Database) *MongoResultRepository {
	return &MongoResultRepository{
		collection: db.Collection(models.Result{}.CollectionName()),
	}
}

// Create creates a new result
func (r *MongoResultRepository) Create(ctx context.Context, result *models.Result) error {
	result.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, result)
	return err
}

// GetByID finds a result by ID
func (r *MongoResultRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Result, error) {
	var result models.Result
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLatestByUser finds the most recent result for a user
func (r *MongoResultRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Result, error) {
	var result models.Result
	findOpts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}, findOpts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByUser lists results for a user, newest first
func (r *MongoResultRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Result], error) {
	return r.listWithPagination(ctx, bson.M{"user_id": userID}, opts)
}

// ListByCompany lists results for a company within a date range
func (r *MongoResultRepository) ListByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time, opts PaginationOptions) (*PaginatedResult[models.Result], error) {
	filter := bson.M{"company_id": companyID}
	if since != nil {
		filter["created_at"] = bson.M{"$gte": *since}
	}
	return r.listWithPagination(ctx, filter, opts)
}

// ListByCompanyAndSurvey lists results for one survey within a company
func (r *MongoResultRepository) ListByCompanyAndSurvey(ctx context.Context, companyID, surveyID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Result], error) {
	filter := bson.M{
		"company_id": companyID,
		"survey_id":  surveyID,
	}
	return r.listWithPagination(ctx, filter, opts)
}

// CountByUser counts results for a user
func (r *MongoResultRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

// CountByCompany counts results for a company
func (r *MongoResultRepository) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"company_id": companyID})
}

// AverageGlobalScoreByCompany computes the mean global score for a company
func (r *MongoResultRepository) AverageGlobalScoreByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (float64, error) {
	match := bson.M{"company_id": companyID}
	if since != nil {
		match["created_at"] = bson.M{"$gte": *since}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"avg_score": bson.M{"$avg": "$global_score"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var row struct {
		AvgScore float64 `bson:"avg_score"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.AvgScore, cursor.Err()
}

// DomainAveragesByCompany computes per-domain mean scores for a company
// #IMPLEMENTATION_DECISION: $objectToArray unrolls the domain_scores map so
// the aggregation works for any domain set without schema knowledge
func (r *MongoResultRepository) DomainAveragesByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (map[string]float64, error) {
	match := bson.M{"company_id": companyID}
	if since != nil {
		match["created_at"] = bson.M{"$gte": *since}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{
			"domains": bson.M{"$objectToArray": "$domain_scores"},
		}}},
		{{Key: "$unwind", Value: "$domains"}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$domains.k",
			"avg_score": bson.M{"$avg": "$domains.v"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	averages := make(map[string]float64)
	for cursor.Next(ctx) {
		var row struct {
			Domain   string  `bson:"_id"`
			AvgScore float64 `bson:"avg_score"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		averages[row.Domain] = row.AvgScore
	}
	return averages, cursor.Err()
}

func (r *MongoResultRepository) listWithPagination(ctx context.Context, filter bson.M, opts PaginationOptions) (*PaginatedResult[models.Result], error) {
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

	var results []models.Result
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.Result]{
		Items:      results,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Ensure MongoResultRepository implements ResultRepository
var _ ResultRepository = (*MongoResultRepository)(nil)
