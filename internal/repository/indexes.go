package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
)

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

func indexSpecs() []indexSpec {
	return []indexSpec{
		// one response per question per session; ResponseRepo.Save upserts on it
		{"responses", bson.D{{Key: "sessionId", Value: 1}, {Key: "questionId", Value: 1}}, true},

		{"questions", bson.D{{Key: "questionnaireId", Value: 1}, {Key: "orderIndex", Value: 1}}, false},
		{"questions", bson.D{{Key: "questionnaireId", Value: 1}, {Key: "dimensionKey", Value: 1}}, false},
		{"sections", bson.D{{Key: "questionnaireId", Value: 1}, {Key: "orderIndex", Value: 1}}, false},

		{"visibility_rules", bson.D{{Key: "questionId", Value: 1}, {Key: "isActive", Value: 1}}, false},
		{"visibility_rules", bson.D{{Key: "targetQuestionIds", Value: 1}}, false},
		{"visibility_rules", bson.D{{Key: "questionnaireId", Value: 1}, {Key: "priority", Value: -1}}, false},

		{"dimension_catalog", bson.D{{Key: "key", Value: 1}}, true},
	}
}

// EnsureIndexes creates the indexes the repositories query by. Failures are
// logged and do not stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	for _, spec := range indexSpecs() {
		createIndex(ctx, db.Collection(spec.collection), spec.keys, spec.unique, log)
	}
	log.Debugf("MongoDB indexes ensured")
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, unique bool, log logger.Logger) {
	opts := options.Index().SetUnique(unique)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Warnf("failed to create index on %s: %v", coll.Name(), err)
	}
}
