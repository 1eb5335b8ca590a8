package repository

import (
	"context"

	"github.com/ebi360/bs360_backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoQuestionRepository implements QuestionRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionRepository creates a new MongoDB question repository
func NewMongoQuestionRepository(db *mongo.Database) *MongoQuestionRepository {
	return &MongoQuestionRepository{
		collection: db.Collection(models.Question{}.CollectionName()),
	}
}

// Create creates a new question
func (r *MongoQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	question.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, question)
	return err
}

// CreateMany creates all questions of a survey in one write
func (r *MongoQuestionRepository) CreateMany(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(questions))
	for i := range questions {
		questions[i].BeforeCreate()
		docs = append(docs, questions[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByID finds a question by ID
func (r *MongoQuestionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var question models.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Update updates a question
func (r *MongoQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	question.BeforeUpdate()
	update := bson.M{"$set": question}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": question.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrQuestionNotFound
	}
	return nil
}

// ListBySurvey lists all questions for a survey ordered by number
func (r *MongoQuestionRepository) ListBySurvey(ctx context.Context, surveyID primitive.ObjectID) ([]models.Question, error) {
	filter := bson.M{"survey_id": surveyID}
	findOpts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// DeleteBySurvey deletes all questions for a survey
func (r *MongoQuestionRepository) DeleteBySurvey(ctx context.Context, surveyID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"survey_id": surveyID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// CountBySurvey counts questions for a survey
func (r *MongoQuestionRepository) CountBySurvey(ctx context.Context, surveyID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"survey_id": surveyID})
}

// Ensure MongoQuestionRepository implements QuestionRepository
var _ QuestionRepository = (*MongoQuestionRepository)(nil)
