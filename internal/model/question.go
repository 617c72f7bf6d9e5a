package model

import (
	"encoding/json"
	"sort"
)

// QuestionType defines the answer shape a question collects
type QuestionType string

const (
	QuestionTypeText           QuestionType = "TEXT"
	QuestionTypeTextarea       QuestionType = "TEXTAREA"
	QuestionTypeNumber         QuestionType = "NUMBER"
	QuestionTypeDate           QuestionType = "DATE"
	QuestionTypeRating         QuestionType = "RATING"
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeMatrix         QuestionType = "MATRIX"
	QuestionTypeFileUpload     QuestionType = "FILE_UPLOAD"
)

// QuestionOption is a selectable choice for choice questions
type QuestionOption struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// Section groups questions inside a questionnaire
type Section struct {
	ID              string `json:"id" bson:"_id"`
	QuestionnaireID string `json:"questionnaireId" bson:"questionnaireId"`
	Title           string `json:"title" bson:"title"`
	OrderIndex      int    `json:"orderIndex" bson:"orderIndex"`
}

// Question is a questionnaire question together with the rules attached to it.
// DimensionKey and Severity are only set for questions that feed the gap heatmap.
type Question struct {
	ID              string           `json:"id" bson:"_id"`
	SectionID       string           `json:"sectionId" bson:"sectionId"`
	QuestionnaireID string           `json:"questionnaireId" bson:"questionnaireId"`
	Text            string           `json:"text" bson:"text"`
	Type            QuestionType     `json:"type" bson:"type"`
	Options         []QuestionOption `json:"options,omitempty" bson:"options,omitempty"`
	IsRequired      bool             `json:"isRequired" bson:"isRequired"`
	OrderIndex      int              `json:"orderIndex" bson:"orderIndex"`
	DimensionKey    *string          `json:"dimensionKey,omitempty" bson:"dimensionKey,omitempty"`
	Severity        *float64         `json:"severity,omitempty" bson:"severity,omitempty"`

	// Populated by the repository, not stored on the question document
	SectionOrder int               `json:"sectionOrder" bson:"-"`
	Rules        []*VisibilityRule `json:"visibilityRules,omitempty" bson:"-"`
}

// DefaultSeverity is used when a question carries no severity
const DefaultSeverity = 0.5

// SeverityOrDefault returns the question severity, or DefaultSeverity when unset
func (q *Question) SeverityOrDefault() float64 {
	if q.Severity == nil {
		return DefaultSeverity
	}
	return *q.Severity
}

// InDimension reports whether the question belongs to the given dimension key
func (q *Question) InDimension(key string) bool {
	return q.DimensionKey != nil && *q.DimensionKey == key
}

// VisibilityAction is what a rule does to its targets when its condition holds
type VisibilityAction string

const (
	ActionShow      VisibilityAction = "SHOW"
	ActionHide      VisibilityAction = "HIDE"
	ActionRequire   VisibilityAction = "REQUIRE"
	ActionUnrequire VisibilityAction = "UNREQUIRE"
)

// VisibilityRule is an admin-authored rule. QuestionID is the question the rule
// is attached to; TargetQuestionIDs are the questions it affects.
type VisibilityRule struct {
	ID                string           `json:"id" bson:"_id"`
	QuestionID        string           `json:"questionId" bson:"questionId"`
	QuestionnaireID   string           `json:"questionnaireId" bson:"questionnaireId"`
	Condition         Condition        `json:"condition" bson:"condition"`
	Action            VisibilityAction `json:"action" bson:"action"`
	TargetQuestionIDs []string         `json:"targetQuestionIds" bson:"targetQuestionIds"`
	Priority          int              `json:"priority" bson:"priority"`
	IsActive          bool             `json:"isActive" bson:"isActive"`
}

// Targets reports whether questionID is one of the rule's targets
func (r *VisibilityRule) Targets(questionID string) bool {
	for _, id := range r.TargetQuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// QuestionState is the derived, per-evaluation state of a question
type QuestionState struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
	Disabled bool `json:"disabled"`
}

// StateEvaluation is a QuestionState together with the rules that decided it
type StateEvaluation struct {
	QuestionID   string        `json:"questionId"`
	State        QuestionState `json:"state"`
	AppliedRules []string      `json:"appliedRules"`
}

// AdaptiveChanges lists question ids that became visible or hidden
type AdaptiveChanges struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// DependencyGraph maps a source question id to the ids its rules affect
type DependencyGraph map[string]map[string]struct{}

// Add records an edge from source to target
func (g DependencyGraph) Add(source, target string) {
	targets, ok := g[source]
	if !ok {
		targets = make(map[string]struct{})
		g[source] = targets
	}
	targets[target] = struct{}{}
}

// Targets returns the targets of source in no particular order
func (g DependencyGraph) Targets(source string) []string {
	out := make([]string, 0, len(g[source]))
	for id := range g[source] {
		out = append(out, id)
	}
	return out
}

// MarshalJSON renders each target set as a sorted id list
func (g DependencyGraph) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(g))
	for source := range g {
		targets := g.Targets(source)
		sort.Strings(targets)
		out[source] = targets
	}
	return json.Marshal(out)
}
