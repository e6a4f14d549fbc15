package repository

import (
	"context"
	"errors"

	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AdminRepo struct {
	collection *mongo.Collection
}

func NewAdminRepo(db *mongo.Database) *AdminRepo {
	return &AdminRepo{
		collection: db.Collection("admins"),
	}
}

func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepo) Upsert(ctx context.Context, admin *models.AdminAccount) error {
	id, err := NewID(admin.CreatedAt)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"username": admin.Username}, bson.M{
		"$set": bson.M{"password_hash": admin.PasswordHash},
		"$setOnInsert": bson.M{
			"_id":        id,
			"created_at": admin.CreatedAt,
		},
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return err
	}

	stored, err := r.FindByUsername(ctx, admin.Username)
	if err != nil {
		return err
	}
	if stored == nil {
		return ErrNotFound
	}
	admin.ID = stored.ID
	admin.CreatedAt = stored.CreatedAt
	return nil
}

// EnsureIndexes creates necessary indexes for the admins collection
func (r *AdminRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
