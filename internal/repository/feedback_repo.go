package repository

import (
	"context"
	"regexp"

	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo(db *mongo.Database) *FeedbackRepo {
	return &FeedbackRepo{
		collection: db.Collection("feedbacks"),
	}
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		id, err := NewID(feedback.CreatedAt)
		if err != nil {
			return err
		}
		feedback.ID = id
	}
	if _, err := r.collection.InsertOne(ctx, feedback); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *FeedbackRepo) SetSentiment(ctx context.Context, id string, sentiment models.Sentiment) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"sentiment": sentiment},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FeedbackRepo) Find(ctx context.Context, criteria models.FilterCriteria) ([]models.Feedback, error) {
	filter := bson.M{}
	if criteria.Sentiment != nil {
		filter["sentiment"] = *criteria.Sentiment
	}
	if criteria.Rating != nil {
		filter["rating"] = *criteria.Rating
	}
	if criteria.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(criteria.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"comment": pattern},
			bson.M{"username": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	feedback := []models.Feedback{}
	if err := cursor.All(ctx, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *FeedbackRepo) Summarize(ctx context.Context) (*models.FeedbackSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "rating_sum", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
			{Key: "positive", Value: countSentiment(models.SentimentPositive)},
			{Key: "neutral", Value: countSentiment(models.SentimentNeutral)},
			{Key: "negative", Value: countSentiment(models.SentimentNegative)},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.FeedbackSummary
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.FeedbackSummary{}, nil
	}
	return &rows[0], nil
}

func countSentiment(label models.Sentiment) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$sentiment", string(label)}}}, 1, 0,
	}}}}}
}

// EnsureIndexes creates necessary indexes for the feedbacks collection
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "sentiment", Value: 1}, {Key: "rating", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
