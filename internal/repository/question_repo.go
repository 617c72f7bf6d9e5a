package repository

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// QuestionRepo handles MongoDB operations for questionnaire sections and questions
type QuestionRepo interface {
	// FindByQuestionnaire returns every question of the questionnaire ordered
	// by section order then question order, each carrying its active rules
	// (priority descending)
	FindByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.Question, error)
	FindByID(ctx context.Context, id string) (*model.Question, error)
	// FindWithDimension returns the questionnaire's questions that feed the heatmap
	FindWithDimension(ctx context.Context, questionnaireID string) ([]*model.Question, error)

	SaveSection(ctx context.Context, section *model.Section) error
	Save(ctx context.Context, question *model.Question) error
}

type questionRepo struct {
	sections  *mongo.Collection
	questions *mongo.Collection
	rules     RuleRepo
}

// NewQuestionRepo creates a new question repository. Rules are loaded through rules.
func NewQuestionRepo(db *mongo.Database, rules RuleRepo) QuestionRepo {
	return &questionRepo{
		sections:  db.Collection("sections"),
		questions: db.Collection("questions"),
		rules:     rules,
	}
}

func (r *questionRepo) FindByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.Question, error) {
	sectionOrder, err := r.sectionOrder(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	questions, err := r.find(ctx, bson.M{"questionnaireId": questionnaireID})
	if err != nil {
		return nil, err
	}

	rules, err := r.rules.FindActiveByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	byOwner := make(map[string][]*model.VisibilityRule)
	for _, rule := range rules {
		byOwner[rule.QuestionID] = append(byOwner[rule.QuestionID], rule)
	}

	for _, q := range questions {
		q.SectionOrder = sectionOrder[q.SectionID]
		q.Rules = byOwner[q.ID]
	}
	sortQuestions(questions)
	return questions, nil
}

func (r *questionRepo) FindByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rules, err := r.rules.FindActiveOwnedBy(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Rules = rules
	return &question, nil
}

func (r *questionRepo) FindWithDimension(ctx context.Context, questionnaireID string) ([]*model.Question, error) {
	return r.find(ctx, bson.M{
		"questionnaireId": questionnaireID,
		"dimensionKey":    bson.M{"$ne": nil},
	})
}

func (r *questionRepo) SaveSection(ctx context.Context, section *model.Section) error {
	_, err := r.sections.ReplaceOne(ctx, bson.M{"_id": section.ID}, section, options.Replace().SetUpsert(true))
	return err
}

func (r *questionRepo) Save(ctx context.Context, question *model.Question) error {
	_, err := r.questions.ReplaceOne(ctx, bson.M{"_id": question.ID}, question, options.Replace().SetUpsert(true))
	return err
}

func (r *questionRepo) find(ctx context.Context, filter bson.M) ([]*model.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})
	cursor, err := r.questions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) sectionOrder(ctx context.Context, questionnaireID string) (map[string]int, error) {
	cursor, err := r.sections.Find(ctx, bson.M{"questionnaireId": questionnaireID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sections []model.Section
	if err := cursor.All(ctx, &sections); err != nil {
		return nil, err
	}

	order := make(map[string]int, len(sections))
	for _, s := range sections {
		order[s.ID] = s.OrderIndex
	}
	return order, nil
}

// sortQuestions orders by section order, then question order
func sortQuestions(questions []*model.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].SectionOrder != questions[j].SectionOrder {
			return questions[i].SectionOrder < questions[j].SectionOrder
		}
		return questions[i].OrderIndex < questions[j].OrderIndex
	})
}
