package evaluate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type operation struct {
	arity int
	apply func(args []any) (float64, error)
}

var operations = map[string]operation{
	"equal":            {2, func(a []any) (float64, error) { return boolScore(equal(a[0], a[1])), nil }},
	"not_equal":        {2, func(a []any) (float64, error) { return boolScore(!equal(a[0], a[1])), nil }},
	"greater":          {2, ordered(func(c int) bool { return c > 0 })},
	"greater_or_equal": {2, ordered(func(c int) bool { return c >= 0 })},
	"less":             {2, ordered(func(c int) bool { return c < 0 })},
	"less_or_equal":    {2, ordered(func(c int) bool { return c <= 0 })},
	"existence":        {1, func(a []any) (float64, error) { return boolScore(truthy(a[0])), nil }},
	"nonexistence":     {1, func(a []any) (float64, error) { return boolScore(!truthy(a[0])), nil }},
	"membership": {2, func(a []any) (float64, error) {
		in, err := contains(a[1], a[0])
		return boolScore(in), err
	}},
	"nonmembership": {2, func(a []any) (float64, error) {
		in, err := contains(a[1], a[0])
		return boolScore(!in), err
	}},
	"fuzzy_left":     {3, fuzzy(LeftShoulder)},
	"fuzzy_right":    {3, fuzzy(RightShoulder)},
	"fuzzy_triangle": {3, fuzzy(Triangle)},
}

// lookupOperation resolves a function type. Catalog spellings such as
// "non-existence" name the same operation as "nonexistence".
func lookupOperation(typ string) (operation, bool) {
	op, ok := operations[strings.ReplaceAll(strings.ToLower(typ), "-", "")]
	return op, ok
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func ordered(test func(int) bool) func([]any) (float64, error) {
	return func(a []any) (float64, error) {
		c, err := compare(a[0], a[1])
		if err != nil {
			return 0, err
		}
		return boolScore(test(c)), nil
	}
}

func fuzzy(f func(value, target, deviation float64) float64) func([]any) (float64, error) {
	return func(a []any) (float64, error) {
		var nums [3]float64
		for i, v := range a {
			n, ok := toFloat(v)
			if !ok {
				return 0, fmt.Errorf("%w: %v is not numeric", ErrOperandType, v)
			}
			nums[i] = n
		}
		return f(nums[0], nums[1], nums[2]), nil
	}
}

// parseOperand converts a stored parameter into its typed form: a number,
// then a boolean, otherwise the raw string.
func parseOperand(s string) any {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')
}

func unquote(v any) any {
	if s, ok := v.(string); ok && isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isNumber(v any) bool {
	if _, ok := v.(string); ok {
		return false
	}
	_, ok := toFloat(v)
	return ok
}

func equal(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		return x == y
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) (int, error) {
	if isNumber(a) && isNumber(b) {
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	}
	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			return int(boolScore(x) - boolScore(y)), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot order %T and %T", ErrOperandType, a, b)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if n, ok := toFloat(v); ok {
		return n != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// contains reports whether needle is a member of container: an element of a
// sequence, a key of a map, or a substring of a string.
func contains(container, needle any) (bool, error) {
	if s, ok := container.(string); ok {
		sub, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("%w: %T in string", ErrOperandType, needle)
		}
		return strings.Contains(s, sub), nil
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if equal(rv.Index(i).Interface(), needle) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if equal(k.Interface(), needle) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: %T is not a collection", ErrOperandType, container)
}
