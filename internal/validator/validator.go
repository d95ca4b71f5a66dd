// Package validator checks a KAOS model for structural and completeness
// problems. Validation never stops at the first problem; every violation is
// collected and returned.
package validator

import (
	"fmt"
	"strings"

	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// Violation messages.
const (
	MsgIdentifierMissing   = "Identifier is missing."
	MsgDuplicateIdentifier = "Duplicate identifier found."
	MsgDescriptionMissing  = "Description is missing."
	MsgNeedsRelationship   = "Needs a relationship."
	MsgNeedsSource         = "Needs a source."
	MsgNeedsTarget         = "Needs a target."
	MsgInvalidRelationship = "Invalid relationship."
	MsgNoRoot              = "No root has been specified."
	MsgMultipleRoots       = "Multiple roots exist."
)

// Validator runs model-level and item-level checks over one model.
type Validator struct {
	model *model.Model
}

// New creates a validator for m.
func New(m *model.Model) *Validator {
	return &Validator{model: m}
}

// Validate returns every violation: model-level checks first, then item
// checks in z-order.
func (v *Validator) Validate() []types.Violation {
	violations := v.validateModel()
	for _, item := range v.model.Items() {
		violations = append(violations, v.validateItem(item)...)
	}
	return violations
}

// Validate is a convenience wrapper around New(m).Validate().
func Validate(m *model.Model) []types.Violation {
	return New(m).Validate()
}

func (v *Validator) validateModel() []types.Violation {
	var out []types.Violation
	ref := v.model.Reference
	if strings.TrimSpace(v.model.Identifier) == "" {
		out = append(out, types.Violation{Reference: ref, Message: MsgIdentifierMissing})
	}
	if v.model.Len() > 0 {
		switch roots := v.model.FindRoots(); {
		case len(roots) == 0:
			out = append(out, types.Violation{Reference: ref, Message: MsgNoRoot})
		case len(roots) > 1:
			out = append(out, types.Violation{Reference: ref, Message: MsgMultipleRoots})
		}
	}
	return out
}

// validateItem applies every rule category that fits the item's kind.
func (v *Validator) validateItem(item *types.Item) []types.Violation {
	out := v.checkIdentifier(item)

	switch item.Kind {
	case types.KindAgent:
		out = append(out, v.checkElement(item)...)
	case types.KindGoal, types.KindDomainProperty:
		out = append(out, v.checkElement(item)...)
		out = append(out, checkParameters(item, item.UtilityFunction)...)
	case types.KindObstacle:
		out = append(out, v.checkElement(item)...)
		out = append(out, checkParameters(item, item.OperatingCondition)...)
	case types.KindRefinement, types.KindConflict, types.KindResolution:
		out = append(out, v.checkRelationship(item)...)
	}
	return out
}

func (v *Validator) checkIdentifier(item *types.Item) []types.Violation {
	var out []types.Violation
	if strings.TrimSpace(item.Identifier) == "" {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgIdentifierMissing})
	}
	if len(v.model.FindItems(item.Identifier, model.AttrIdentifier)) > 1 {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgDuplicateIdentifier})
	}
	return out
}

func (v *Validator) checkElement(item *types.Item) []types.Violation {
	var out []types.Violation
	if strings.TrimSpace(item.Description) == "" {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgDescriptionMissing})
	}
	if v.model.Len() > 1 && len(v.model.GetRelationshipsFor(item)) == 0 {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgNeedsRelationship})
	}
	return out
}

func checkParameters(item *types.Item, f *types.Function) []types.Violation {
	if f == nil {
		return nil
	}
	var out []types.Violation
	for _, i := range f.MissingParameters() {
		out = append(out, types.Violation{
			Reference: item.Reference,
			Message:   fmt.Sprintf("Parameter #%d not specified.", i),
		})
	}
	return out
}

func (v *Validator) checkRelationship(item *types.Item) []types.Violation {
	var out []types.Violation
	if v.model.Lookup(item.Source) == nil {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgNeedsSource})
	}
	if v.model.Lookup(item.Target) == nil {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgNeedsTarget})
	}
	if !v.model.CheckConstraints(item) {
		out = append(out, types.Violation{Reference: item.Reference, Message: MsgInvalidRelationship})
	}
	return out
}
