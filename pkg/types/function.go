package types

import (
	"sort"
	"strings"
)

// Placeholder marks a parameter slot in a function pattern.
const Placeholder = "{?}"

// FunctionRole distinguishes the two function specializations. Both share
// the same shape but are attached to different item kinds.
type FunctionRole string

const (
	// RoleUtility marks a quantitative objective attached to goals and domain properties
	RoleUtility FunctionRole = "utility"

	// RoleOperating marks a triggering condition attached to obstacles
	RoleOperating FunctionRole = "operating"
)

// Function is a parameterized textual template such as "{?} >= {?}".
// Parameters is a sparse mapping from 1-based slot index to value; a slot
// that has not been filled is absent from the map.
type Function struct {
	// Role is the specialization (utility function or operating condition)
	Role FunctionRole `json:"role"`

	// Type is the catalog type name, e.g. "greater_or_equal"
	Type string `json:"type"`

	// Pattern is the template text containing Placeholder markers
	Pattern string `json:"pattern"`

	// Parameters holds filled slots keyed by 1-based index
	Parameters map[int]string `json:"parameters,omitempty"`
}

// Placeholders returns the byte offset of each placeholder in the pattern.
func (f *Function) Placeholders() []int {
	var indices []int
	for i := 0; i < len(f.Pattern); {
		j := strings.Index(f.Pattern[i:], Placeholder)
		if j < 0 {
			break
		}
		indices = append(indices, i+j)
		i += j + 1
	}
	return indices
}

// NumParameters returns the number of slots declared by the pattern.
func (f *Function) NumParameters() int {
	return len(f.Placeholders())
}

// GetParameter returns the value of slot i. A lookup miss returns false.
func (f *Function) GetParameter(i int) (string, bool) {
	if f == nil || f.Parameters == nil {
		return "", false
	}
	v, ok := f.Parameters[i]
	return v, ok
}

// SetParameter fills slot i. Setting an empty value clears the slot.
func (f *Function) SetParameter(i int, value string) {
	if value == "" {
		delete(f.Parameters, i)
		return
	}
	if f.Parameters == nil {
		f.Parameters = make(map[int]string)
	}
	f.Parameters[i] = value
}

// MissingParameters returns the 1-based indices of declared slots that are
// not filled, in ascending order.
func (f *Function) MissingParameters() []int {
	var missing []int
	for i := 1; i <= f.NumParameters(); i++ {
		if _, ok := f.GetParameter(i); !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// SortedParameterIndices returns the filled slot indices in ascending order.
func (f *Function) SortedParameterIndices() []int {
	keys := make([]int, 0, len(f.Parameters))
	for k := range f.Parameters {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// String substitutes every filled slot into the pattern. Unfilled slots keep
// their placeholder so the text stays recognizable.
func (f *Function) String() string {
	if f == nil {
		return ""
	}
	idx := f.Placeholders()
	text := f.Pattern
	// Replace from the end so earlier offsets stay valid.
	for i := len(idx) - 1; i >= 0; i-- {
		if v, ok := f.Parameters[i+1]; ok {
			text = text[:idx[i]] + v + text[idx[i]+len(Placeholder):]
		}
	}
	return text
}

// Clone returns a deep copy, including parameters.
func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}
	c := &Function{Role: f.Role, Type: f.Type, Pattern: f.Pattern}
	if len(f.Parameters) > 0 {
		c.Parameters = make(map[int]string, len(f.Parameters))
		for k, v := range f.Parameters {
			c.Parameters[k] = v
		}
	}
	return c
}
