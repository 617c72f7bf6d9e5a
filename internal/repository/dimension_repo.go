package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// DimensionRepo reads the readiness dimension catalog
type DimensionRepo interface {
	// GetActive returns active dimensions ordered by orderIndex
	GetActive(ctx context.Context) ([]*model.Dimension, error)
	// Upsert stores a dimension keyed by its key
	Upsert(ctx context.Context, dim *model.Dimension) error
}

type dimensionRepo struct {
	collection *mongo.Collection
}

func NewDimensionRepo(db *mongo.Database) DimensionRepo {
	return &dimensionRepo{
		collection: db.Collection("dimension_catalog"),
	}
}

func (r *dimensionRepo) GetActive(ctx context.Context) ([]*model.Dimension, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var dims []*model.Dimension
	if err := cursor.All(ctx, &dims); err != nil {
		return nil, err
	}
	return dims, nil
}

func (r *dimensionRepo) Upsert(ctx context.Context, dim *model.Dimension) error {
	// _id is immutable, so it is only written when the key is new
	update := bson.M{
		"$set": bson.M{
			"displayName": dim.DisplayName,
			"description": dim.Description,
			"weight":      dim.Weight,
			"orderIndex":  dim.OrderIndex,
			"isActive":    dim.IsActive,
		},
	}
	if dim.ID != "" {
		update["$setOnInsert"] = bson.M{"_id": dim.ID}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"key": dim.Key}, update, options.Update().SetUpsert(true))
	return err
}
