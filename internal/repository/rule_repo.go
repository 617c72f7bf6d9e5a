package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// RuleRepo handles MongoDB operations for visibility rules. Every finder
// returns active rules only, highest priority first.
type RuleRepo interface {
	// FindActiveForQuestion returns rules owned by or targeting the question
	FindActiveForQuestion(ctx context.Context, questionID string) ([]*model.VisibilityRule, error)
	FindActiveOwnedBy(ctx context.Context, questionID string) ([]*model.VisibilityRule, error)
	FindActiveByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.VisibilityRule, error)
	Save(ctx context.Context, rule *model.VisibilityRule) error
}

type ruleRepo struct {
	collection *mongo.Collection
}

// NewRuleRepo creates a new visibility rule repository
func NewRuleRepo(db *mongo.Database) RuleRepo {
	return &ruleRepo{
		collection: db.Collection("visibility_rules"),
	}
}

func (r *ruleRepo) FindActiveForQuestion(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	return r.find(ctx, bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"questionId": questionID},
			bson.M{"targetQuestionIds": questionID},
		},
	})
}

func (r *ruleRepo) FindActiveOwnedBy(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	return r.find(ctx, bson.M{"isActive": true, "questionId": questionID})
}

func (r *ruleRepo) FindActiveByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.VisibilityRule, error) {
	return r.find(ctx, bson.M{"isActive": true, "questionnaireId": questionnaireID})
}

func (r *ruleRepo) Save(ctx context.Context, rule *model.VisibilityRule) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule, options.Replace().SetUpsert(true))
	return err
}

func (r *ruleRepo) find(ctx context.Context, filter bson.M) ([]*model.VisibilityRule, error) {
	// _id keeps equal priorities in a stable order
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []*model.VisibilityRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
