package types

import (
	"regexp"
	"strings"
)

// CatalogEntry is a known function type with its display pattern and the
// expression used to parse free text back into a structured function.
// Each capture group of Matcher fills the parameter slot of the same index.
type CatalogEntry struct {
	Type    string
	Pattern string
	Matcher *regexp.Regexp
}

// UtilityFunctions is the ordered catalog of utility function types.
// Order matters: ParseFunction returns the first entry that matches, so
// compound operators (">=") precede their prefixes (">").
var UtilityFunctions = []CatalogEntry{
	{"greater_or_equal", "{?} >= {?}", regexp.MustCompile(`^(\S+)\s*>=\s*(.+)$`)},
	{"less_or_equal", "{?} <= {?}", regexp.MustCompile(`^(\S+)\s*<=\s*(.+)$`)},
	{"not_equal", "{?} != {?}", regexp.MustCompile(`^(\S+)\s*!=\s*(.+)$`)},
	{"equal", "{?} == {?}", regexp.MustCompile(`^(\S+)\s*==\s*(.+)$`)},
	{"greater", "{?} > {?}", regexp.MustCompile(`^(\S+)\s*>\s*(.+)$`)},
	{"less", "{?} < {?}", regexp.MustCompile(`^(\S+)\s*<\s*(.+)$`)},
	{"existence", "has {?}", regexp.MustCompile(`^has\s+(\S+)$`)},
	{"nonexistence", "has no {?}", regexp.MustCompile(`^has\s+no\s+(\S+)$`)},
	{"membership", "{?} ∈ {?}", regexp.MustCompile(`^(\S+)\s*∈\s*(.+)$`)},
	{"nonmembership", "{?} ∉ {?}", regexp.MustCompile(`^(\S+)\s*∉\s*(.+)$`)},
	{"fuzzy_triangle", "{?} AS CLOSE AS POSSIBLE TO {?}\nWITHIN +/- {?}",
		regexp.MustCompile(`^(\S+)\s+AS CLOSE AS POSSIBLE TO\s+(\S+)\s+WITHIN\s+\+/-\s*(\S+)$`)},
	{"fuzzy_left", "{?} AS HIGH POSSIBLE TO {?}\nWITHIN {?}",
		regexp.MustCompile(`^(\S+)\s+AS HIGH (?:AS )?POSSIBLE TO\s+(\S+)\s+WITHIN\s+(\S+)$`)},
	{"fuzzy_right", "{?} AS LOW AS POSSIBLE TO {?}\nWITHIN {?}",
		regexp.MustCompile(`^(\S+)\s+AS LOW AS POSSIBLE TO\s+(\S+)\s+WITHIN\s+(\S+)$`)},
}

// OperatingConditions is the ordered catalog of operating condition types.
// Do not reorder; see UtilityFunctions.
var OperatingConditions = []CatalogEntry{
	{"greater_or_equal", "{?} >= {?}", regexp.MustCompile(`^(\S+)\s*>=\s*(.+)$`)},
	{"less_or_equal", "{?} <= {?}", regexp.MustCompile(`^(\S+)\s*<=\s*(.+)$`)},
	{"not_equal", "{?} != {?}", regexp.MustCompile(`^(\S+)\s*!=\s*(.+)$`)},
	{"equal", "{?} == {?}", regexp.MustCompile(`^(\S+)\s*==\s*(.+)$`)},
	{"greater", "{?} > {?}", regexp.MustCompile(`^(\S+)\s*>\s*(.+)$`)},
	{"less", "{?} < {?}", regexp.MustCompile(`^(\S+)\s*<\s*(.+)$`)},
	{"existence", "has {?}", regexp.MustCompile(`^has\s+(\S+)$`)},
	{"non-existence", "has no {?}", regexp.MustCompile(`^has\s+no\s+(\S+)$`)},
	{"membership", "{?} ∈ {?}", regexp.MustCompile(`^(\S+)\s*∈\s*(.+)$`)},
	{"nonmembership", "{?} ∉ {?}", regexp.MustCompile(`^(\S+)\s*∉\s*(.+)$`)},
}

// Catalog returns the ordered catalog for a function role.
func Catalog(role FunctionRole) []CatalogEntry {
	switch role {
	case RoleUtility:
		return UtilityFunctions
	case RoleOperating:
		return OperatingConditions
	}
	return nil
}

// NewFunction creates an empty function of the given catalog type.
func NewFunction(role FunctionRole, typ string) (*Function, bool) {
	for _, e := range Catalog(role) {
		if e.Type == typ {
			return &Function{Role: role, Type: e.Type, Pattern: e.Pattern}, true
		}
	}
	return nil, false
}

// ParseFunction converts free text into a structured function using the
// first catalog entry whose matcher accepts the text. Line breaks are
// treated as ordinary whitespace.
func ParseFunction(role FunctionRole, text string) (*Function, bool) {
	text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	for _, e := range Catalog(role) {
		m := e.Matcher.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		f := &Function{Role: role, Type: e.Type, Pattern: e.Pattern}
		for i, v := range m[1:] {
			f.SetParameter(i+1, strings.TrimSpace(v))
		}
		return f, true
	}
	return nil, false
}
