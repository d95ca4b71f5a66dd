// Package kaosxml reads and writes the two XML dialects of a KAOS model:
// the structural dialect, which mirrors items one element per item and
// round-trips, and the Logic dialect, which carries only the synthesized
// logic trees for evaluation.
package kaosxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// Element names of the structural dialect.
const (
	elemModel              = "KAOSModel"
	elemUtilityFunction    = "KAOSUtilityFunction"
	elemOperatingCondition = "KAOSOperatingCondition"
	elemFunction           = "KAOSFunction"
	elemAgentTopic         = "KAOSAgent"
	kindElementPrefix      = "KAOS"
)

var (
	// ErrNotKAOSModel is returned when the document root is not a KAOSModel element.
	ErrNotKAOSModel = errors.New("document is not a KAOS model")

	// ErrUnknownElement is returned for elements that do not name a known kind.
	ErrUnknownElement = errors.New("unknown element")

	// ErrUnknownFunction is returned for function types missing from the catalogs.
	ErrUnknownFunction = errors.New("unknown function type")

	// ErrInvalidAttribute is returned for attribute values outside their domain.
	ErrInvalidAttribute = errors.New("invalid attribute value")

	// ErrDanglingEndpoint is returned when a relationship names an identifier
	// that no item in the document carries.
	ErrDanglingEndpoint = errors.New("relationship endpoint not found")
)

type xmlModel struct {
	XMLName xml.Name  `xml:"KAOSModel"`
	ID      string    `xml:"id,attr"`
	Items   []xmlItem `xml:",any"`
}

type xmlItem struct {
	XMLName     xml.Name
	ID          string        `xml:"id,attr"`
	Ref         string        `xml:"ref,attr,omitempty"`
	Description *string       `xml:"description,attr,omitempty"`
	Objective   *string       `xml:"objective,attr,omitempty"`
	Topic       *string       `xml:"topic,attr,omitempty"`
	Source      string        `xml:"source,attr,omitempty"`
	Target      string        `xml:"target,attr,omitempty"`
	SourceRef   string        `xml:"sourceRef,attr,omitempty"`
	TargetRef   string        `xml:"targetRef,attr,omitempty"`
	Children    []xmlFunction `xml:",any"`
}

// xmlFunction is a function child of an element. Older documents nest an
// agent's topic in a KAOSAgent child, which also decodes into this shape.
type xmlFunction struct {
	XMLName    xml.Name
	Type       string     `xml:"type,attr,omitempty"`
	Objective  string     `xml:"objective,attr,omitempty"`
	Topic      *string    `xml:"topic,attr,omitempty"`
	Parameters []xmlParam `xml:"KAOSParameter"`
}

type xmlParam struct {
	Index int    `xml:"index,attr"`
	Value string `xml:"value,attr,omitempty"`

	// Name is the attribute older documents store the value under
	Name string `xml:"name,attr,omitempty"`
}

func (p xmlParam) value() string {
	if p.Value != "" {
		return p.Value
	}
	return p.Name
}

// Marshal encodes m in the structural dialect.
func Marshal(m *model.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes m in the structural dialect to w.
func Encode(w io.Writer, m *model.Model) error {
	doc := xmlModel{ID: m.Identifier}
	for _, item := range m.Items() {
		doc.Items = append(doc.Items, encodeItem(m, item))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode KAOS model: %w", err)
	}
	return enc.Flush()
}

func encodeItem(m *model.Model, item *types.Item) xmlItem {
	x := xmlItem{
		XMLName: xml.Name{Local: kindElementPrefix + string(item.Kind)},
		ID:      item.Identifier,
		Ref:     item.Reference,
	}

	switch item.Kind {
	case types.KindAgent:
		x.Description = strPtr(item.Description)
		x.Topic = strPtr(item.Topic)
	case types.KindGoal:
		x.Description = strPtr(item.Description)
		x.Objective = strPtr(string(item.Objective))
		x.Children = encodeFunction(item.UtilityFunction, elemUtilityFunction, item.Objective)
	case types.KindDomainProperty:
		x.Description = strPtr(item.Description)
		x.Children = encodeFunction(item.UtilityFunction, elemUtilityFunction, "")
	case types.KindObstacle:
		x.Description = strPtr(item.Description)
		x.Children = encodeFunction(item.OperatingCondition, elemOperatingCondition, "")
	case types.KindRefinement, types.KindConflict, types.KindResolution:
		if source := m.Lookup(item.Source); source != nil {
			x.Source = source.Identifier
			x.SourceRef = source.Reference
		}
		if target := m.Lookup(item.Target); target != nil {
			x.Target = target.Identifier
			x.TargetRef = target.Reference
		}
	}
	return x
}

func encodeFunction(f *types.Function, name string, objective types.Objective) []xmlFunction {
	if f == nil {
		return nil
	}
	x := xmlFunction{
		XMLName:   xml.Name{Local: name},
		Type:      f.Type,
		Objective: string(objective),
	}
	for _, i := range f.SortedParameterIndices() {
		x.Parameters = append(x.Parameters, xmlParam{Index: i, Value: f.Parameters[i]})
	}
	return []xmlFunction{x}
}

// Unmarshal decodes a structural document into a new model.
func Unmarshal(data []byte) (*model.Model, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a structural document from r into a new model. Items keep
// the reference stored in their ref attribute, or get a fresh one when it is
// missing or already taken. Relationship endpoints are resolved after all
// items exist, so a relationship may refer to one that appears later in the
// document. sourceRef/targetRef are authoritative; the identifier in
// source/target is only used by documents that carry no refs.
func Decode(r io.Reader) (*model.Model, error) {
	var doc xmlModel
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		var unexpected xml.UnmarshalError
		if errors.As(err, &unexpected) {
			return nil, fmt.Errorf("%w: %v", ErrNotKAOSModel, err)
		}
		return nil, fmt.Errorf("decode KAOS model: %w", err)
	}

	m := model.New(doc.ID)
	pending := make([]*types.Item, len(doc.Items))
	byRef := make(map[string]*types.Item)

	for i, x := range doc.Items {
		item, err := decodeItem(m, x)
		if err != nil {
			return nil, err
		}
		pending[i] = item
		if x.Ref != "" {
			if _, dup := byRef[x.Ref]; !dup {
				byRef[x.Ref] = item
			}
		}
	}

	for i, x := range doc.Items {
		rel := pending[i]
		if !rel.IsRelationship() {
			continue
		}
		source, err := resolveEndpoint(m, byRef, x.SourceRef, x.Source, x.ID)
		if err != nil {
			return nil, err
		}
		target, err := resolveEndpoint(m, byRef, x.TargetRef, x.Target, x.ID)
		if err != nil {
			return nil, err
		}
		// Constraint results are not enforced here; an invalid relationship
		// is kept so that validation can report it.
		m.SetSource(rel, source)
		m.SetTarget(rel, target)
	}
	return m, nil
}

func decodeItem(m *model.Model, x xmlItem) (*types.Item, error) {
	kind, ok := types.ParseItemKind(x.XMLName.Local)
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownElement, x.XMLName.Local)
	}
	item, err := m.RestoreItem(kind, x.Ref, x.ID)
	if err != nil {
		return nil, err
	}

	if x.Description != nil && item.IsElement() {
		item.Description = *x.Description
	}
	if x.Objective != nil && kind == types.KindGoal {
		if !types.IsValidObjective(*x.Objective) {
			return nil, fmt.Errorf("%w: objective %q on %s", ErrInvalidAttribute, *x.Objective, x.ID)
		}
		item.Objective = types.Objective(*x.Objective)
	}
	if x.Topic != nil && kind == types.KindAgent {
		item.Topic = *x.Topic
	}

	for _, child := range x.Children {
		if err := decodeChild(item, child); err != nil {
			return nil, fmt.Errorf("%s: %w", x.ID, err)
		}
	}
	return item, nil
}

func decodeChild(item *types.Item, child xmlFunction) error {
	var role types.FunctionRole
	switch child.XMLName.Local {
	case elemAgentTopic:
		if item.Kind == types.KindAgent && child.Topic != nil {
			item.Topic = *child.Topic
		}
		return nil
	case elemUtilityFunction:
		role = types.RoleUtility
	case elemOperatingCondition:
		role = types.RoleOperating
	case elemFunction:
		role = types.RoleUtility
		if item.Kind.SupportsOperating() {
			role = types.RoleOperating
		}
	default:
		return fmt.Errorf("%w: <%s>", ErrUnknownElement, child.XMLName.Local)
	}

	f, ok := types.NewFunction(role, child.Type)
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownFunction, role, child.Type)
	}
	for _, p := range child.Parameters {
		f.SetParameter(p.Index, p.value())
	}

	switch {
	case role == types.RoleUtility && item.Kind.SupportsUtility():
		item.UtilityFunction = f
	case role == types.RoleOperating && item.Kind.SupportsOperating():
		item.OperatingCondition = f
	default:
		return fmt.Errorf("%w: %s function on %s", ErrUnknownElement, role, item.Kind)
	}
	return nil
}

func resolveEndpoint(m *model.Model, byRef map[string]*types.Item, ref, identifier, owner string) (*types.Item, error) {
	if ref != "" {
		item, ok := byRef[ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s refers to ref %q", ErrDanglingEndpoint, owner, ref)
		}
		return item, nil
	}
	if identifier == "" {
		return nil, nil
	}
	item := m.FindItem(identifier, model.AttrIdentifier)
	if item == nil {
		return nil, fmt.Errorf("%w: %s refers to %q", ErrDanglingEndpoint, owner, identifier)
	}
	return item, nil
}

func strPtr(s string) *string {
	return &s
}
