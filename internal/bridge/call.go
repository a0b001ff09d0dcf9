// Package bridge models the method-call bridge between a host application and
// the native video-editing commands: a named invocation with loosely typed
// arguments, and a reply channel that accepts exactly one success, error or
// not-implemented answer.
package bridge

import (
	"encoding/json"
	"math"
	"reflect"
)

// Call is a single method invocation crossing the bridge.
type Call struct {
	// Method is the name of the command being invoked.
	Method string
	// Arguments are the named arguments, as decoded by the transport.
	Arguments map[string]any
}

// NewCall creates a Call. A nil arguments map is replaced by an empty one.
func NewCall(method string, args map[string]any) *Call {
	if args == nil {
		args = map[string]any{}
	}
	return &Call{Method: method, Arguments: args}
}

// Has reports whether the argument is present and not null.
func (c *Call) Has(name string) bool {
	v, ok := c.Arguments[name]
	return ok && v != nil
}

// String returns a string argument. It reports false when the argument is
// missing, null, or not a string.
func (c *Call) String(name string) (string, bool) {
	s, ok := c.Arguments[name].(string)
	return s, ok
}

// Number returns a numeric argument converted to float64. Any Go integer or
// float kind is accepted, as is json.Number. Strings and booleans are not
// numbers.
func (c *Call) Number(name string) (float64, bool) {
	return toFloat(c.Arguments[name])
}

// Int returns a numeric argument truncated toward zero. NaN and values
// outside the int range are rejected.
func (c *Call) Int(name string) (int, bool) {
	f, ok := c.Number(name)
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if !ok || math.IsNaN(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

// Strings returns a list-of-strings argument. Both []string and []any whose
// elements are all strings are accepted.
func (c *Call) Strings(name string) ([]string, bool) {
	switch v := c.Arguments[name].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
