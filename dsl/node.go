package dsl

import (
	"encoding/json"
	"math"
	"strconv"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/i18n"
)

// Node is a cursor into a decoded JSON tree. Every accessor either narrows the
// cursor or records the first failure; once failed, later accessors return the
// same Node unchanged so a whole chain reports the earliest broken step.
type Node struct {
	val   any
	path  vegaskema.PathRef
	issue *vegaskema.Issue
}

// At returns a cursor at the root of doc (as produced by vegaskema.DecodeDocument).
func At(doc any) Node { return Node{val: doc, path: vegaskema.Root()} }

// OK reports whether every step so far succeeded.
func (n Node) OK() bool { return n.issue == nil }

// Path returns the JSON Pointer of the cursor (or of the failing step).
func (n Node) Path() string { return n.path.Pointer() }

// Value returns the raw value under the cursor (nil after a failure).
func (n Node) Value() any {
	if n.issue != nil {
		return nil
	}
	return n.val
}

// Issue returns the recorded failure, if any.
func (n Node) Issue() *vegaskema.Issue { return n.issue }

// Err returns the recorded failure as vegaskema.Issues, or nil.
func (n Node) Err() error {
	if n.issue == nil {
		return nil
	}
	return vegaskema.Issues{*n.issue}
}

func (n Node) fail(path vegaskema.PathRef, code string, data map[string]string, hint string) Node {
	return n.failMsg(path, code, code, data, hint)
}

// failMsg is fail with a message key distinct from the issue code, for codes
// shared by arrays and scalars.
func (n Node) failMsg(path vegaskema.PathRef, code, msgKey string, data map[string]string, hint string) Node {
	params := make([]any, 0, 2*len(data))
	for k, v := range data {
		params = append(params, k, v)
	}
	is := path.Issue(code, i18n.T(msgKey, data), params...)
	is.Hint = hint
	return Node{path: path, issue: &is}
}

func (n Node) typeMismatch(expected string) Node {
	return n.fail(n.path, vegaskema.CodeInvalidType, map[string]string{"expected": expected, "got": kindOf(n.val)}, "expected "+expected)
}

// Field steps into an object member. The member must exist; a null member is
// accepted here (see NotNull).
func (n Node) Field(name string) Node {
	if n.issue != nil {
		return n
	}
	m, ok := n.val.(map[string]any)
	if !ok {
		return n.typeMismatch("object")
	}
	child := n.path.Field(name)
	v, exists := m[name]
	if !exists {
		return n.fail(child, vegaskema.CodeRequired, nil, "missing \""+name+"\"")
	}
	return Node{val: v, path: child}
}

// NotNull rejects a JSON null.
func (n Node) NotNull() Node {
	if n.issue != nil {
		return n
	}
	if n.val == nil {
		return n.fail(n.path, vegaskema.CodeRequired, nil, "value is null")
	}
	return n
}

// Object requires an object value.
func (n Node) Object() Node {
	if n.issue != nil {
		return n
	}
	if _, ok := n.val.(map[string]any); !ok {
		return n.typeMismatch("object")
	}
	return n
}

// Array requires an array value.
func (n Node) Array() Node {
	if n.issue != nil {
		return n
	}
	if _, ok := n.val.([]any); !ok {
		return n.typeMismatch("array")
	}
	return n
}

// MinItems requires an array of at least min elements.
func (n Node) MinItems(min int) Node {
	n = n.Array()
	if n.issue != nil {
		return n
	}
	if got := len(n.val.([]any)); got < min {
		return n.fail(n.path, vegaskema.CodeTooSmall, map[string]string{"min": strconv.Itoa(min), "got": strconv.Itoa(got)}, "")
	}
	return n
}

// Items requires an array of exactly size elements.
func (n Node) Items(size int) Node {
	n = n.MinItems(size)
	if n.issue != nil {
		return n
	}
	if got := len(n.val.([]any)); got > size {
		return n.fail(n.path, vegaskema.CodeTooBig, map[string]string{"max": strconv.Itoa(size), "got": strconv.Itoa(got)}, "")
	}
	return n
}

// Index steps into an array element.
func (n Node) Index(i int) Node {
	n = n.MinItems(i + 1)
	if n.issue != nil {
		return n
	}
	return Node{val: n.val.([]any)[i], path: n.path.Index(i)}
}

// Each applies fn to every element of an array, stopping at the first failure.
func (n Node) Each(fn func(i int, el Node) Node) Node {
	n = n.Array()
	if n.issue != nil {
		return n
	}
	for i := range n.val.([]any) {
		if r := fn(i, n.Index(i)); r.issue != nil {
			return r
		}
	}
	return n
}

// Number requires a numeric value. NaN, which YAML and TOML can express, is
// not one.
func (n Node) Number() Node {
	if n.issue != nil {
		return n
	}
	f, ok := toFloat(n.val)
	if !ok {
		return n.typeMismatch("number")
	}
	if math.IsNaN(f) {
		return n.fail(n.path, vegaskema.CodeInvalidType, map[string]string{"expected": "number", "got": "NaN"}, "NaN is not a number")
	}
	return n
}

// Float returns the numeric value as float64.
func (n Node) Float() (float64, error) {
	n = n.Number()
	if n.issue != nil {
		return 0, n.Err()
	}
	f, _ := toFloat(n.val)
	return f, nil
}

// Int returns the numeric value truncated toward zero.
func (n Node) Int() (int, error) {
	n = n.Number()
	if n.issue != nil {
		return 0, n.Err()
	}
	if jn, ok := n.val.(json.Number); ok {
		if i, err := strconv.ParseInt(string(jn), 10, 64); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
	}
	f, _ := toFloat(n.val)
	t := math.Trunc(f)
	switch {
	case t >= float64(math.MaxInt):
		return 0, n.failMsg(n.path, vegaskema.CodeTooBig, "too_big.number", map[string]string{"max": strconv.Itoa(math.MaxInt)}, "integer overflow").Err()
	case t < float64(math.MinInt):
		return 0, n.failMsg(n.path, vegaskema.CodeTooSmall, "too_small.number", map[string]string{"min": strconv.Itoa(math.MinInt)}, "integer overflow").Err()
	}
	return int(t), nil
}

// Text returns the string value.
func (n Node) Text() (string, error) {
	if n.issue != nil {
		return "", n.Err()
	}
	s, ok := n.val.(string)
	if !ok {
		return "", n.typeMismatch("string").Err()
	}
	return s, nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return "unknown"
}
