package model

// Operator is a comparison operator used by a leaf condition
type Operator string

const (
	OpEquals             Operator = "equals"
	OpEq                 Operator = "eq"
	OpNotEquals          Operator = "not_equals"
	OpNe                 Operator = "ne"
	OpIncludes           Operator = "includes"
	OpContains           Operator = "contains"
	OpNotIncludes        Operator = "not_includes"
	OpNotContains        Operator = "not_contains"
	OpIn                 Operator = "in"
	OpNotIn              Operator = "not_in"
	OpGreaterThan        Operator = "greater_than"
	OpGt                 Operator = "gt"
	OpLessThan           Operator = "less_than"
	OpLt                 Operator = "lt"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpGte                Operator = "gte"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
	OpLte                Operator = "lte"
	OpBetween            Operator = "between"
	OpIsEmpty            Operator = "is_empty"
	OpIsNotEmpty         Operator = "is_not_empty"
	OpStartsWith         Operator = "starts_with"
	OpEndsWith           Operator = "ends_with"
	OpMatches            Operator = "matches"
)

// LogicalOperator combines the results of several conditions
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Condition is either a leaf (Field, Operator, Value) or a composite
// (LogicalOp over Nested). A condition with neither children nor a
// field/operator pair constrains nothing and always holds.
type Condition struct {
	Field     string          `json:"field,omitempty" bson:"field,omitempty"`
	Operator  Operator        `json:"operator,omitempty" bson:"operator,omitempty"`
	Value     any             `json:"value,omitempty" bson:"value,omitempty"`
	LogicalOp LogicalOperator `json:"logicalOp,omitempty" bson:"logicalOp,omitempty"`
	Nested    []Condition     `json:"nested,omitempty" bson:"nested,omitempty"`
}

// Leaf builds a field/operator/value condition
func Leaf(field string, op Operator, value any) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

// All builds an AND composite
func All(children ...Condition) Condition {
	return Condition{LogicalOp: LogicalAnd, Nested: children}
}

// Any builds an OR composite
func Any(children ...Condition) Condition {
	return Condition{LogicalOp: LogicalOr, Nested: children}
}

// IsComposite reports whether the condition is decided by its children
func (c Condition) IsComposite() bool {
	return len(c.Nested) > 0
}

// IsUnconstrained reports whether the condition is vacuously true
func (c Condition) IsUnconstrained() bool {
	return !c.IsComposite() && (c.Field == "" || c.Operator == "")
}

// SourceField returns the first field referenced by the condition, following
// the first child of composites. Empty when no field is referenced.
func (c Condition) SourceField() string {
	if c.Field != "" {
		return c.Field
	}
	if len(c.Nested) > 0 {
		return c.Nested[0].SourceField()
	}
	return ""
}

// Responses maps question ids to raw response values
type Responses map[string]any
