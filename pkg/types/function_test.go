package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kaosdraw/pkg/types"
)

func TestFunction_Parameters(t *testing.T) {
	f, ok := types.NewFunction(types.RoleUtility, "greater_or_equal")
	require.True(t, ok)

	assert.Equal(t, 2, f.NumParameters())
	assert.Equal(t, []int{0, 7}, f.Placeholders())
	assert.Equal(t, []int{1, 2}, f.MissingParameters())

	_, ok = f.GetParameter(1)
	assert.False(t, ok, "unset parameter must be a lookup miss")

	f.SetParameter(1, "speed")
	v, ok := f.GetParameter(1)
	assert.True(t, ok)
	assert.Equal(t, "speed", v)
	assert.Equal(t, []int{2}, f.MissingParameters())
	assert.Equal(t, "speed >= {?}", f.String())

	f.SetParameter(2, "10")
	assert.Empty(t, f.MissingParameters())
	assert.Equal(t, "speed >= 10", f.String())

	// Empty value clears the slot
	f.SetParameter(1, "")
	_, ok = f.GetParameter(1)
	assert.False(t, ok)
	assert.Equal(t, "{?} >= 10", f.String())
}

func TestFunction_StringMultiline(t *testing.T) {
	f, ok := types.NewFunction(types.RoleUtility, "fuzzy_triangle")
	require.True(t, ok)
	f.SetParameter(1, "temp")
	f.SetParameter(2, "21")
	f.SetParameter(3, "2")

	assert.Equal(t, 3, f.NumParameters())
	assert.Equal(t, "temp AS CLOSE AS POSSIBLE TO 21\nWITHIN +/- 2", f.String())
}

func TestFunction_NilSafety(t *testing.T) {
	var f *types.Function
	_, ok := f.GetParameter(1)
	assert.False(t, ok)
	assert.Equal(t, "", f.String())
	assert.Nil(t, f.Clone())
}

func TestFunction_CloneIsDeep(t *testing.T) {
	f, _ := types.NewFunction(types.RoleOperating, "less")
	f.SetParameter(1, "battery")
	f.SetParameter(2, "5")

	c := f.Clone()
	c.SetParameter(1, "fuel")

	v, _ := f.GetParameter(1)
	assert.Equal(t, "battery", v)
	assert.Equal(t, f.Type, c.Type)
	assert.Equal(t, f.Role, c.Role)
}

func TestNewFunction_UnknownType(t *testing.T) {
	_, ok := types.NewFunction(types.RoleOperating, "fuzzy_left")
	assert.False(t, ok, "fuzzy types are utility-only")

	_, ok = types.NewFunction(types.RoleUtility, "non-existence")
	assert.False(t, ok, "hyphenated spelling belongs to operating conditions")
}

func TestParseFunction(t *testing.T) {
	tests := []struct {
		name   string
		role   types.FunctionRole
		text   string
		typ    string
		params map[int]string
	}{
		{"greater_or_equal wins over greater", types.RoleUtility, "x >= 5", "greater_or_equal", map[int]string{1: "x", 2: "5"}},
		{"greater", types.RoleUtility, "x > 5", "greater", map[int]string{1: "x", 2: "5"}},
		{"no spaces", types.RoleUtility, "x<=5", "less_or_equal", map[int]string{1: "x", 2: "5"}},
		{"existence", types.RoleOperating, "has fuel", "existence", map[int]string{1: "fuel"}},
		{"nonexistence not swallowed by existence", types.RoleUtility, "has no fuel", "nonexistence", map[int]string{1: "fuel"}},
		{"operating non-existence spelling", types.RoleOperating, "has no fuel", "non-existence", map[int]string{1: "fuel"}},
		{"membership", types.RoleUtility, "mode ∈ {a, b}", "membership", map[int]string{1: "mode", 2: "{a, b}"}},
		{"fuzzy multiline", types.RoleUtility, "temp AS CLOSE AS POSSIBLE TO 21\nWITHIN +/- 2", "fuzzy_triangle", map[int]string{1: "temp", 2: "21", 3: "2"}},
		{"fuzzy right", types.RoleUtility, "cost AS LOW AS POSSIBLE TO 0 WITHIN 100", "fuzzy_right", map[int]string{1: "cost", 2: "0", 3: "100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := types.ParseFunction(tt.role, tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.typ, f.Type)
			assert.Equal(t, tt.params, f.Parameters)
			assert.Equal(t, tt.role, f.Role)
		})
	}
}

func TestParseFunction_NoMatch(t *testing.T) {
	_, ok := types.ParseFunction(types.RoleOperating, "temp AS CLOSE AS POSSIBLE TO 21 WITHIN +/- 2")
	assert.False(t, ok)

	_, ok = types.ParseFunction(types.RoleUtility, "just words")
	assert.False(t, ok)
}

// TestCatalogOrder tests that catalog order is preserved as declared
func TestCatalogOrder(t *testing.T) {
	var utility []string
	for _, e := range types.UtilityFunctions {
		utility = append(utility, e.Type)
	}
	assert.Equal(t, []string{
		"greater_or_equal", "less_or_equal", "not_equal", "equal", "greater", "less",
		"existence", "nonexistence", "membership", "nonmembership",
		"fuzzy_triangle", "fuzzy_left", "fuzzy_right",
	}, utility)

	assert.Len(t, types.OperatingConditions, 10)
	assert.Equal(t, "non-existence", types.OperatingConditions[7].Type)
}
