package rest

import (
	"context"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// memStore backs every repository interface with in-memory slices
type memStore struct {
	sessions   map[string]*model.Session
	questions  []*model.Question
	rules      []*model.VisibilityRule
	responses  []*model.Response
	dimensions []*model.Dimension
}

type sessionRepo struct{ s *memStore }

func (r sessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.s.sessions[session.ID] = session
	return nil
}

func (r sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	return r.s.sessions[id], nil
}

type questionRepo struct{ s *memStore }

func (r questionRepo) withRules(q *model.Question) *model.Question {
	out := *q
	out.Rules = nil
	for _, rule := range r.s.rules {
		if rule.IsActive && rule.QuestionID == q.ID {
			out.Rules = append(out.Rules, rule)
		}
	}
	return &out
}

func (r questionRepo) FindByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.Question, error) {
	var out []*model.Question
	for _, q := range r.s.questions {
		if q.QuestionnaireID == questionnaireID {
			out = append(out, r.withRules(q))
		}
	}
	return out, nil
}

func (r questionRepo) FindByID(ctx context.Context, id string) (*model.Question, error) {
	for _, q := range r.s.questions {
		if q.ID == id {
			return r.withRules(q), nil
		}
	}
	return nil, nil
}

func (r questionRepo) FindWithDimension(ctx context.Context, questionnaireID string) ([]*model.Question, error) {
	var out []*model.Question
	for _, q := range r.s.questions {
		if q.QuestionnaireID == questionnaireID && q.DimensionKey != nil {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r questionRepo) SaveSection(ctx context.Context, section *model.Section) error { return nil }

func (r questionRepo) Save(ctx context.Context, question *model.Question) error {
	r.s.questions = append(r.s.questions, question)
	return nil
}

type ruleRepo struct{ s *memStore }

func (r ruleRepo) find(keep func(*model.VisibilityRule) bool) ([]*model.VisibilityRule, error) {
	var out []*model.VisibilityRule
	for _, rule := range r.s.rules {
		if rule.IsActive && keep(rule) {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r ruleRepo) FindActiveForQuestion(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	return r.find(func(rule *model.VisibilityRule) bool {
		return rule.QuestionID == questionID || rule.Targets(questionID)
	})
}

func (r ruleRepo) FindActiveOwnedBy(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	return r.find(func(rule *model.VisibilityRule) bool { return rule.QuestionID == questionID })
}

func (r ruleRepo) FindActiveByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.VisibilityRule, error) {
	return r.find(func(rule *model.VisibilityRule) bool { return rule.QuestionnaireID == questionnaireID })
}

func (r ruleRepo) Save(ctx context.Context, rule *model.VisibilityRule) error {
	r.s.rules = append(r.s.rules, rule)
	return nil
}

type responseRepo struct{ s *memStore }

func (r responseRepo) Save(ctx context.Context, response *model.Response) error {
	r.s.responses = append(r.s.responses, response)
	return nil
}

func (r responseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*model.Response, error) {
	var out []*model.Response
	for _, resp := range r.s.responses {
		if resp.SessionID == sessionID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type dimensionRepo struct{ s *memStore }

func (r dimensionRepo) GetActive(ctx context.Context) ([]*model.Dimension, error) {
	return r.s.dimensions, nil
}

func (r dimensionRepo) Upsert(ctx context.Context, dim *model.Dimension) error {
	r.s.dimensions = append(r.s.dimensions, dim)
	return nil
}
