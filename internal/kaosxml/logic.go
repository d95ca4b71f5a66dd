package kaosxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/scrypster/kaosdraw/internal/logic"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// Element names of the Logic dialect.
const (
	elemLeaf      = "Function"
	elemAgentLeaf = "Agent"
)

// LogicDocument is a decoded Logic dialect document: one tree per root.
type LogicDocument struct {
	ID    string
	Roots []*types.LogicNode
}

type xmlLogic struct {
	XMLName xml.Name       `xml:"Logic"`
	ID      string         `xml:"id,attr"`
	Nodes   []xmlLogicNode `xml:",any"`
}

// xmlLogicNode is either an operator element (Conjunction, Disjunction,
// Conditional, Biconditional) or a Function leaf.
type xmlLogicNode struct {
	XMLName    xml.Name
	ID         string         `xml:"id,attr"`
	Type       string         `xml:"type,attr,omitempty"`
	Kind       string         `xml:"kind,attr,omitempty"`
	Objective  string         `xml:"objective,attr,omitempty"`
	Key        string         `xml:"key,attr,omitempty"`
	Topic      string         `xml:"topic,attr,omitempty"`
	Parameters []xmlParam     `xml:"Parameter"`
	Children   []xmlLogicNode `xml:",any"`
}

// MarshalLogic encodes the logic of every root into a Logic document
// labelled with the model identifier. Roots without logic are omitted.
func MarshalLogic(modelID string, roots []logic.RootLogic) ([]byte, error) {
	doc := xmlLogic{ID: modelID}
	for _, r := range roots {
		if r.Logic == nil {
			continue
		}
		doc.Nodes = append(doc.Nodes, encodeLogicNode(r.Logic))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode logic: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeLogicNode(n *types.LogicNode) xmlLogicNode {
	if n.IsLeaf() {
		leaf := n.Leaf
		x := xmlLogicNode{
			XMLName:   xml.Name{Local: elemLeaf},
			ID:        leaf.Identifier,
			Kind:      string(leaf.Kind),
			Objective: string(leaf.Objective),
		}
		if f := leaf.Function; f != nil {
			x.Type = f.Type
			for _, i := range f.SortedParameterIndices() {
				x.Parameters = append(x.Parameters, xmlParam{Index: i, Value: f.Parameters[i]})
			}
		}
		return x
	}

	x := xmlLogicNode{
		XMLName: xml.Name{Local: types.ExportTag(n.Op)},
		ID:      n.Identifier,
	}
	for _, c := range n.Children {
		x.Children = append(x.Children, encodeLogicNode(c))
	}
	return x
}

// IsLogicDocument reports whether data's root element is a Logic document
// rather than a structural model.
func IsLogicDocument(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local == "Logic"
		}
	}
}

// UnmarshalLogic decodes a Logic document.
func UnmarshalLogic(data []byte) (*LogicDocument, error) {
	return DecodeLogic(bytes.NewReader(data))
}

// DecodeLogic reads a Logic document from r. Agent elements carry no
// condition and are skipped.
func DecodeLogic(r io.Reader) (*LogicDocument, error) {
	var doc xmlLogic
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode logic: %w", err)
	}

	out := &LogicDocument{ID: doc.ID}
	for _, x := range doc.Nodes {
		node, err := decodeLogicNode(x)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out.Roots = append(out.Roots, node)
		}
	}
	return out, nil
}

func decodeLogicNode(x xmlLogicNode) (*types.LogicNode, error) {
	switch x.XMLName.Local {
	case elemAgentLeaf:
		return nil, nil
	case elemLeaf:
		return decodeLeaf(x)
	}

	op, ok := types.OperatorForTag(x.XMLName.Local)
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownElement, x.XMLName.Local)
	}
	node := &types.LogicNode{Op: op, Identifier: x.ID}
	for _, c := range x.Children {
		child, err := decodeLogicNode(c)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

func decodeLeaf(x xmlLogicNode) (*types.LogicNode, error) {
	kind, _ := types.ParseItemKind(x.Kind)
	f, ok := lookupFunction(kind, x.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownFunction, x.Type, x.ID)
	}
	for _, p := range x.Parameters {
		f.SetParameter(p.Index, p.value())
	}
	if x.Objective != "" && !types.IsValidObjective(x.Objective) {
		return nil, fmt.Errorf("%w: objective %q on %s", ErrInvalidAttribute, x.Objective, x.ID)
	}
	return &types.LogicNode{Leaf: &types.LogicLeaf{
		Identifier: x.ID,
		Kind:       kind,
		Objective:  types.Objective(x.Objective),
		Function:   f,
	}}, nil
}

// lookupFunction picks the catalog for the owning kind when it is known and
// otherwise tries utility functions before operating conditions.
func lookupFunction(kind types.ItemKind, typ string) (*types.Function, bool) {
	if kind.SupportsOperating() {
		return types.NewFunction(types.RoleOperating, typ)
	}
	if f, ok := types.NewFunction(types.RoleUtility, typ); ok {
		return f, true
	}
	return types.NewFunction(types.RoleOperating, typ)
}
