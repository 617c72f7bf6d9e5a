package service

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// ConditionEvaluator decides conditions against a set of responses. It holds
// no state and never fails: malformed conditions, unknown operators, bad
// patterns and non-numeric comparisons all evaluate to false.
type ConditionEvaluator struct{}

// NewConditionEvaluator creates a new condition evaluator
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{}
}

// Evaluate decides a single condition tree
func (e *ConditionEvaluator) Evaluate(cond model.Condition, responses model.Responses) bool {
	if cond.IsComposite() {
		return e.combine(cond.Nested, cond.LogicalOp, responses)
	}
	if cond.IsUnconstrained() {
		return true
	}

	actual := model.NewResponseValue(responses[cond.Field])
	return e.apply(cond.Operator, actual, model.Normalize(cond.Value))
}

// EvaluateAll combines a top-level list of conditions. An empty list holds
// for either operator.
func (e *ConditionEvaluator) EvaluateAll(conds []model.Condition, op model.LogicalOperator, responses model.Responses) bool {
	if len(conds) == 0 {
		return true
	}
	return e.combine(conds, op, responses)
}

// combine treats an empty operator or AND as conjunction and anything else as
// disjunction
func (e *ConditionEvaluator) combine(conds []model.Condition, op model.LogicalOperator, responses model.Responses) bool {
	if op == "" || strings.EqualFold(string(op), string(model.LogicalAnd)) {
		for _, c := range conds {
			if !e.Evaluate(c, responses) {
				return false
			}
		}
		return true
	}
	for _, c := range conds {
		if e.Evaluate(c, responses) {
			return true
		}
	}
	return false
}

func (e *ConditionEvaluator) apply(op model.Operator, actual model.ResponseValue, expected any) bool {
	switch op {
	case model.OpEquals, model.OpEq:
		return equals(actual, expected)
	case model.OpNotEquals, model.OpNe:
		return !equals(actual, expected)
	case model.OpIncludes, model.OpContains:
		return includes(actual, expected)
	case model.OpNotIncludes, model.OpNotContains:
		return !includes(actual, expected)
	case model.OpIn:
		return isIn(actual, expected)
	case model.OpNotIn:
		return !isIn(actual, expected)
	case model.OpGreaterThan, model.OpGt:
		return compareNumbers(actual.Raw(), expected, func(a, b float64) bool { return a > b })
	case model.OpLessThan, model.OpLt:
		return compareNumbers(actual.Raw(), expected, func(a, b float64) bool { return a < b })
	case model.OpGreaterThanOrEqual, model.OpGte:
		return compareNumbers(actual.Raw(), expected, func(a, b float64) bool { return a >= b })
	case model.OpLessThanOrEqual, model.OpLte:
		return compareNumbers(actual.Raw(), expected, func(a, b float64) bool { return a <= b })
	case model.OpBetween:
		return between(actual, expected)
	case model.OpIsEmpty:
		return isEmpty(actual)
	case model.OpIsNotEmpty:
		return !isEmpty(actual)
	case model.OpStartsWith:
		return compareStrings(actual.Raw(), expected, strings.HasPrefix)
	case model.OpEndsWith:
		return compareStrings(actual.Raw(), expected, strings.HasSuffix)
	case model.OpMatches:
		return matches(actual, expected)
	default:
		return false
	}
}

// equals compares scalars strictly. Structured answers compare through their
// selectedOptionId, text, number or rating field, in that order. Anything
// else falls back to deep equality.
func equals(actual model.ResponseValue, expected any) bool {
	if strictEqual(actual.Raw(), expected) {
		return true
	}
	if actual.IsObject() {
		for _, key := range []string{model.KeySelectedOptionID, model.KeyText, model.KeyNumber, model.KeyRating} {
			if actual.Has(key) {
				return strictEqual(actual.Field(key), expected)
			}
		}
	}
	return reflect.DeepEqual(actual.Raw(), expected)
}

func includes(actual model.ResponseValue, expected any) bool {
	if actual.IsObject() {
		if ids, ok := actual.SelectedOptions(); ok {
			return containsStrict(ids, expected)
		}
		if text, ok := actual.Text(); ok {
			return strings.Contains(text, jsString(expected))
		}
	}
	if list, ok := actual.List(); ok {
		return containsStrict(list, expected)
	}
	if s, ok := actual.String(); ok {
		if sub, ok := expected.(string); ok {
			return strings.Contains(s, sub)
		}
	}
	return false
}

func isIn(actual model.ResponseValue, expected any) bool {
	candidates, ok := expected.([]any)
	if !ok {
		return false
	}
	if actual.IsObject() {
		for _, key := range []string{model.KeySelectedOptionID, model.KeyText, model.KeyNumber} {
			if actual.Has(key) {
				return containsStrict(candidates, actual.Field(key))
			}
		}
	}
	return containsStrict(candidates, actual.Raw())
}

func compareNumbers(actual, expected any, cmp func(a, b float64) bool) bool {
	a, ok := extractNumber(actual)
	if !ok {
		return false
	}
	b, ok := extractNumber(expected)
	if !ok {
		return false
	}
	return cmp(a, b)
}

func between(actual model.ResponseValue, expected any) bool {
	bounds, ok := expected.([]any)
	if !ok || len(bounds) != 2 {
		return false
	}
	v, ok := extractNumber(actual.Raw())
	if !ok {
		return false
	}
	lo, ok := extractNumber(bounds[0])
	if !ok {
		return false
	}
	hi, ok := extractNumber(bounds[1])
	if !ok {
		return false
	}
	return v >= lo && v <= hi
}

func isEmpty(actual model.ResponseValue) bool {
	switch actual.Kind() {
	case model.KindNull:
		return true
	case model.KindString:
		s, _ := actual.String()
		return strings.TrimSpace(s) == ""
	case model.KindList:
		l, _ := actual.List()
		return len(l) == 0
	case model.KindObject:
		if actual.Has(model.KeyText) {
			if t := actual.Field(model.KeyText); t == nil || t == "" {
				return true
			}
		}
		if actual.Has(model.KeySelectedOptionID) {
			if id := actual.Field(model.KeySelectedOptionID); id == nil || id == "" {
				return true
			}
		}
		if actual.Has(model.KeySelectedOptionIDs) {
			ids := actual.Field(model.KeySelectedOptionIDs)
			if ids == nil {
				return true
			}
			if l, ok := ids.([]any); ok && len(l) == 0 {
				return true
			}
		}
	}
	return false
}

func compareStrings(actual, expected any, cmp func(s, affix string) bool) bool {
	a, ok := extractString(actual)
	if !ok {
		return false
	}
	b, ok := extractString(expected)
	if !ok {
		return false
	}
	return cmp(a, b)
}

// matches uses RE2 syntax; an invalid pattern never matches
func matches(actual model.ResponseValue, expected any) bool {
	s, ok := extractString(actual.Raw())
	if !ok {
		return false
	}
	pattern, ok := expected.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// extractNumber resolves raw numbers, numeric strings (leading numeric prefix)
// and the number or rating field of structured answers
func extractNumber(v any) (float64, bool) {
	rv := model.NewResponseValue(v)
	if n, ok := rv.Number(); ok {
		return n, true
	}
	if s, ok := rv.String(); ok {
		return parseNumericPrefix(s)
	}
	if n, ok := rv.NumberField(); ok {
		return n, true
	}
	if n, ok := rv.Rating(); ok {
		return n, true
	}
	return 0, false
}

func extractString(v any) (string, bool) {
	rv := model.NewResponseValue(v)
	if s, ok := rv.String(); ok {
		return s, true
	}
	if s, ok := rv.Text(); ok {
		return s, true
	}
	if s, ok := rv.SelectedOption(); ok {
		return s, true
	}
	return "", false
}

var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseNumericPrefix reads the longest leading decimal literal, so "12abc"
// is 12 and "abc" is not a number
func parseNumericPrefix(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	switch strings.TrimLeft(m, "+") {
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out-of-range exponents saturate
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// strictEqual is scalar identity. Lists and objects are never strictly equal.
func strictEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func containsStrict(list []any, v any) bool {
	for _, item := range list {
		if strictEqual(item, v) {
			return true
		}
	}
	return false
}

// jsString renders an operand the way it reads when embedded in text
func jsString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			if item != nil {
				parts[i] = jsString(item)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	}
	return ""
}
