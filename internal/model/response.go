package model

import (
	"reflect"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Response is a stored answer to one question within a session.
// Coverage is a 0-1 score of how well the answer addresses the question's risk.
type Response struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	SessionID  string    `json:"sessionId" bson:"sessionId"`
	QuestionID string    `json:"questionId" bson:"questionId"`
	Value      any       `json:"value" bson:"value"`
	Coverage   *float64  `json:"coverage,omitempty" bson:"coverage,omitempty"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
}

// CoverageOrZero returns the coverage, or 0 when none was recorded
func (r *Response) CoverageOrZero() float64 {
	if r == nil || r.Coverage == nil {
		return 0
	}
	return *r.Coverage
}

// Structured response keys
const (
	KeyText              = "text"
	KeyNumber            = "number"
	KeyRating            = "rating"
	KeySelectedOptionID  = "selectedOptionId"
	KeySelectedOptionIDs = "selectedOptionIds"
)

// ValueKind classifies a response value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
	KindOther
)

// ResponseValue is a normalized, typed view over a raw response value.
// Raw values may be scalars, lists, or structured objects such as
// {"selectedOptionId": "opt-1"} or {"rating": 4}.
type ResponseValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []any
	obj  map[string]any
	raw  any
}

// NewResponseValue normalizes v and classifies it
func NewResponseValue(v any) ResponseValue {
	n := Normalize(v)
	rv := ResponseValue{raw: n}
	switch t := n.(type) {
	case nil:
		rv.kind = KindNull
	case string:
		rv.kind = KindString
		rv.str = t
	case float64:
		rv.kind = KindNumber
		rv.num = t
	case bool:
		rv.kind = KindBool
		rv.b = t
	case []any:
		rv.kind = KindList
		rv.list = t
	case map[string]any:
		rv.kind = KindObject
		rv.obj = t
	default:
		rv.kind = KindOther
	}
	return rv
}

func (v ResponseValue) Kind() ValueKind { return v.kind }
func (v ResponseValue) Raw() any        { return v.raw }

// String returns the value when it is a raw string
func (v ResponseValue) String() (string, bool) {
	return v.str, v.kind == KindString
}

// Number returns the value when it is a raw number
func (v ResponseValue) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// List returns the value when it is a raw list
func (v ResponseValue) List() ([]any, bool) {
	return v.list, v.kind == KindList
}

// IsObject reports whether the value is a structured response object
func (v ResponseValue) IsObject() bool { return v.kind == KindObject }

// Has reports whether a structured value carries key, even if its value is null
func (v ResponseValue) Has(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// Field returns the normalized value stored under key of a structured value
func (v ResponseValue) Field(key string) any {
	if v.kind != KindObject {
		return nil
	}
	return v.obj[key]
}

// Text extracts the "text" field of a structured value
func (v ResponseValue) Text() (string, bool) {
	s, ok := v.Field(KeyText).(string)
	return s, ok
}

// NumberField extracts the "number" field of a structured value
func (v ResponseValue) NumberField() (float64, bool) {
	f, ok := v.Field(KeyNumber).(float64)
	return f, ok
}

// Rating extracts the "rating" field of a structured value
func (v ResponseValue) Rating() (float64, bool) {
	f, ok := v.Field(KeyRating).(float64)
	return f, ok
}

// SelectedOption extracts the "selectedOptionId" field of a structured value
func (v ResponseValue) SelectedOption() (string, bool) {
	s, ok := v.Field(KeySelectedOptionID).(string)
	return s, ok
}

// SelectedOptions extracts the "selectedOptionIds" list of a structured value
func (v ResponseValue) SelectedOptions() ([]any, bool) {
	l, ok := v.Field(KeySelectedOptionIDs).([]any)
	return l, ok
}

// Normalize converts decoded JSON/BSON values into plain Go values:
// numbers become float64, documents become map[string]any and arrays []any.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case primitive.Null, primitive.Undefined:
		return nil
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return t.String()
		}
		return f
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = Normalize(e.Value)
		}
		return out
	case bson.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case bson.A:
		return normalizeList(t)
	case []any:
		return normalizeList(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = f
		}
		return out
	}

	// Remaining slices and maps of concrete types go through reflection
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = Normalize(val)
	}
	return out
}

func normalizeList(l []any) []any {
	out := make([]any, len(l))
	for i, val := range l {
		out[i] = Normalize(val)
	}
	return out
}
