package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/repository"
)

// AdaptiveLogicService resolves which questions are visible and required for
// a set of responses.
//
// Conflicting rules are resolved per field: among matching rules the one with
// the highest priority decides visible (SHOW/HIDE) and, independently,
// required (REQUIRE/UNREQUIRE). Between rules of equal priority the one
// listed first wins.
type AdaptiveLogicService struct {
	questions repository.QuestionRepo
	rules     repository.RuleRepo
	evaluator *ConditionEvaluator
}

// NewAdaptiveLogicService creates a new adaptive logic service
func NewAdaptiveLogicService(questions repository.QuestionRepo, rules repository.RuleRepo, evaluator *ConditionEvaluator) *AdaptiveLogicService {
	if evaluator == nil {
		evaluator = NewConditionEvaluator()
	}
	return &AdaptiveLogicService{
		questions: questions,
		rules:     rules,
		evaluator: evaluator,
	}
}

// EvaluateQuestionState derives the state of one question from its rules
func (s *AdaptiveLogicService) EvaluateQuestionState(question *model.Question, responses model.Responses) model.QuestionState {
	return s.ExplainQuestionState(question, responses).State
}

// ExplainQuestionState is EvaluateQuestionState plus the ids of the rules that
// decided the result
func (s *AdaptiveLogicService) ExplainQuestionState(question *model.Question, responses model.Responses) model.StateEvaluation {
	eval := model.StateEvaluation{
		QuestionID: question.ID,
		State: model.QuestionState{
			Visible:  true,
			Required: question.IsRequired,
			Disabled: false,
		},
		AppliedRules: []string{},
	}

	rules := activeByPriority(question.Rules)
	if len(rules) == 0 {
		return eval
	}

	var visibleDecided, requiredDecided bool
	for _, rule := range rules {
		// both fields settled by higher or equal priority rules
		if visibleDecided && requiredDecided {
			break
		}

		switch rule.Action {
		case model.ActionShow, model.ActionHide:
			if visibleDecided || !s.evaluator.Evaluate(rule.Condition, responses) {
				continue
			}
			eval.State.Visible = rule.Action == model.ActionShow
			visibleDecided = true
		case model.ActionRequire, model.ActionUnrequire:
			if requiredDecided || !s.evaluator.Evaluate(rule.Condition, responses) {
				continue
			}
			eval.State.Required = rule.Action == model.ActionRequire
			requiredDecided = true
		default:
			continue
		}
		eval.AppliedRules = append(eval.AppliedRules, rule.ID)
	}

	return eval
}

// GetVisibleQuestions returns the questionnaire's visible questions in
// section order, then question order
func (s *AdaptiveLogicService) GetVisibleQuestions(ctx context.Context, questionnaireID string, responses model.Responses) ([]*model.Question, error) {
	questions, err := s.questions.FindByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("load questions for questionnaire %s: %w", questionnaireID, err)
	}

	visible := make([]*model.Question, 0, len(questions))
	for _, q := range questions {
		if s.EvaluateQuestionState(q, responses).Visible {
			visible = append(visible, q)
		}
	}
	return visible, nil
}

// GetNextQuestion returns the visible question following currentQuestionID, or
// nil when the current question is unknown, hidden or last
func (s *AdaptiveLogicService) GetNextQuestion(ctx context.Context, currentQuestionID string, responses model.Responses) (*model.Question, error) {
	current, err := s.questions.FindByID(ctx, currentQuestionID)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", currentQuestionID, err)
	}
	if current == nil {
		return nil, nil
	}

	visible, err := s.GetVisibleQuestions(ctx, current.QuestionnaireID, responses)
	if err != nil {
		return nil, err
	}

	for i, q := range visible {
		if q.ID == currentQuestionID {
			if i+1 < len(visible) {
				return visible[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

// EvaluateConditions combines a list of conditions; an empty list holds
func (s *AdaptiveLogicService) EvaluateConditions(conds []model.Condition, op model.LogicalOperator, responses model.Responses) bool {
	return s.evaluator.EvaluateAll(conds, op, responses)
}

// CalculateAdaptiveChanges lists questions that appear or disappear when the
// responses change from previous to current
func (s *AdaptiveLogicService) CalculateAdaptiveChanges(ctx context.Context, questionnaireID string, previous, current model.Responses) (model.AdaptiveChanges, error) {
	questions, err := s.questions.FindByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return model.AdaptiveChanges{}, fmt.Errorf("load questions for questionnaire %s: %w", questionnaireID, err)
	}

	changes := model.AdaptiveChanges{Added: []string{}, Removed: []string{}}
	for _, q := range questions {
		was := s.EvaluateQuestionState(q, previous).Visible
		is := s.EvaluateQuestionState(q, current).Visible
		switch {
		case is && !was:
			changes.Added = append(changes.Added, q.ID)
		case was && !is:
			changes.Removed = append(changes.Removed, q.ID)
		}
	}
	return changes, nil
}

// GetRulesForQuestion returns active rules owned by or targeting the question,
// highest priority first
func (s *AdaptiveLogicService) GetRulesForQuestion(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	rules, err := s.rules.FindActiveForQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load rules for question %s: %w", questionID, err)
	}
	return activeByPriority(rules), nil
}

// BuildDependencyGraph maps each rule's source question to the questions the
// rule affects. Rules whose condition references no field are skipped.
func (s *AdaptiveLogicService) BuildDependencyGraph(ctx context.Context, questionnaireID string) (model.DependencyGraph, error) {
	rules, err := s.rules.FindActiveByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("load rules for questionnaire %s: %w", questionnaireID, err)
	}

	graph := make(model.DependencyGraph)
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		source := rule.Condition.SourceField()
		if source == "" {
			continue
		}
		for _, target := range rule.TargetQuestionIDs {
			graph.Add(source, target)
		}
	}
	return graph, nil
}

// activeByPriority filters to active rules and stable-sorts them by
// descending priority
func activeByPriority(rules []*model.VisibilityRule) []*model.VisibilityRule {
	out := make([]*model.VisibilityRule, 0, len(rules))
	for _, r := range rules {
		if r != nil && r.IsActive {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
