package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// ResponseRepo handles MongoDB operations for session responses.
// A session holds at most one response per question.
type ResponseRepo interface {
	Save(ctx context.Context, response *model.Response) error
	GetBySessionID(ctx context.Context, sessionID string) ([]*model.Response, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

// Save upserts the response for (sessionId, questionId)
func (r *responseRepo) Save(ctx context.Context, response *model.Response) error {
	if response.AnsweredAt.IsZero() {
		response.AnsweredAt = time.Now()
	}

	filter := bson.M{"sessionId": response.SessionID, "questionId": response.QuestionID}
	update := bson.M{"$set": bson.M{
		"value":      response.Value,
		"coverage":   response.Coverage,
		"answeredAt": response.AnsweredAt,
	}}
	if response.ID != "" {
		update["$setOnInsert"] = bson.M{"_id": response.ID}
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *responseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*model.Response, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.Response
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}
