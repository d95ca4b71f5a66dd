package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// Attribute names accepted by UpdateItem.
const (
	AttrReference          = "reference"
	AttrIdentifier         = "identifier"
	AttrKind               = "kind"
	AttrDescription        = "description"
	AttrObjective          = "objective"
	AttrIsAchieve          = "isAchieve"
	AttrIsAvoid            = "isAvoid"
	AttrIsMaintain         = "isMaintain"
	AttrTopic              = "topic"
	AttrUtilityFunction    = "utilityFunction"
	AttrUtilityText        = "utilityDescription"
	AttrOperatingCondition = "operatingCondition"
	AttrOperatingText      = "operatingDescription"
	paramSuffix            = "_param"
)

// UpdateItem bulk-applies attribute values to an item. Keys are applied in
// sorted order, so a function type is always set before its parameters.
// Keys without a setter for the item's kind are skipped silently; rejected
// values are reported in the returned message while the remaining keys
// still apply. An empty message means every key was accepted or skipped.
func (m *Model) UpdateItem(item *types.Item, values map[string]string) string {
	if item == nil {
		return "item is missing"
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []string
	for _, key := range keys {
		if msg := m.updateAttribute(item, key, values[key]); msg != "" {
			problems = append(problems, msg)
		}
	}
	return strings.Join(problems, "; ")
}

func (m *Model) updateAttribute(item *types.Item, key, value string) string {
	switch key {
	case AttrReference:
		return "reference is read-only"
	case AttrKind:
		return "kind is read-only"
	case AttrIdentifier:
		item.Identifier = value
		return ""
	case AttrDescription:
		if item.IsElement() {
			item.Description = value
		}
		return ""
	case AttrTopic:
		if item.Kind == types.KindAgent {
			item.Topic = value
		}
		return ""
	case AttrObjective:
		if item.Kind != types.KindGoal {
			return ""
		}
		if !types.IsValidObjective(value) {
			return fmt.Sprintf("invalid objective %q", value)
		}
		item.Objective = types.Objective(value)
		return ""
	case AttrIsAchieve:
		return toggleObjective(item, types.ObjectiveAchieve, value)
	case AttrIsAvoid:
		return toggleObjective(item, types.ObjectiveAvoid, value)
	case AttrIsMaintain:
		return toggleObjective(item, types.ObjectiveMaintain, value)
	case AttrUtilityFunction:
		if !item.Kind.SupportsUtility() {
			return ""
		}
		return assignFunction(&item.UtilityFunction, types.RoleUtility, value)
	case AttrOperatingCondition:
		if !item.Kind.SupportsOperating() {
			return ""
		}
		return assignFunction(&item.OperatingCondition, types.RoleOperating, value)
	case AttrUtilityText:
		if !item.Kind.SupportsUtility() {
			return ""
		}
		return parseInto(&item.UtilityFunction, types.RoleUtility, value)
	case AttrOperatingText:
		if !item.Kind.SupportsOperating() {
			return ""
		}
		return parseInto(&item.OperatingCondition, types.RoleOperating, value)
	}

	if prefix, idx, ok := splitParameterKey(key); ok {
		switch {
		case prefix == AttrUtilityFunction && item.Kind.SupportsUtility():
			return setFunctionParameter(item.UtilityFunction, key, idx, value)
		case prefix == AttrOperatingCondition && item.Kind.SupportsOperating():
			return setFunctionParameter(item.OperatingCondition, key, idx, value)
		}
	}
	return ""
}

func toggleObjective(item *types.Item, objective types.Objective, value string) string {
	if item.Kind != types.KindGoal {
		return ""
	}
	on, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Sprintf("invalid boolean %q for %s objective", value, objective)
	}
	switch {
	case on:
		item.Objective = objective
	case item.Objective == objective:
		item.Objective = types.ObjectiveNone
	}
	return ""
}

// assignFunction replaces *slot with an empty function of the named type.
// Re-selecting the current type keeps its parameters; an empty type clears.
func assignFunction(slot **types.Function, role types.FunctionRole, typ string) string {
	if typ == "" {
		*slot = nil
		return ""
	}
	if *slot != nil && (*slot).Type == typ {
		return ""
	}
	f, ok := types.NewFunction(role, typ)
	if !ok {
		return fmt.Sprintf("unknown %s function type %q", role, typ)
	}
	*slot = f
	return ""
}

func parseInto(slot **types.Function, role types.FunctionRole, text string) string {
	if strings.TrimSpace(text) == "" {
		*slot = nil
		return ""
	}
	f, ok := types.ParseFunction(role, text)
	if !ok {
		return fmt.Sprintf("unrecognized %s function %q", role, text)
	}
	*slot = f
	return ""
}

func setFunctionParameter(f *types.Function, key string, idx int, value string) string {
	if f == nil {
		return fmt.Sprintf("%s: no function is attached", key)
	}
	if idx < 1 || idx > f.NumParameters() {
		return fmt.Sprintf("%s: %s takes %d parameters", key, f.Type, f.NumParameters())
	}
	f.SetParameter(idx, value)
	return ""
}

// splitParameterKey parses keys of the form "<function>_param<N>".
func splitParameterKey(key string) (string, int, bool) {
	i := strings.LastIndex(key, paramSuffix)
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+len(paramSuffix):])
	if err != nil {
		return "", 0, false
	}
	return key[:i], n, true
}
