// Package render draws a KAOS model as a layered diagram. Roots sit in the
// top layer and every element that refines, conflicts with or resolves an
// element is placed one layer below it.
package render

import (
	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// Layout dimensions in pixels.
const (
	NodeWidth  = 180.0
	NodeHeight = 56.0
	ColumnGap  = 40.0
	LayerGap   = 70.0
	Margin     = 30.0
)

// Node is a placed element.
type Node struct {
	Item   *types.Item
	Layer  int
	Column int
	X, Y   float64
}

// Center returns the midpoint of the node's box.
func (n *Node) Center() (float64, float64) {
	return n.X + NodeWidth/2, n.Y + NodeHeight/2
}

// Edge is a relationship between two placed elements.
type Edge struct {
	Relationship *types.Item
	From, To     *Node
}

// Diagram is a laid-out model.
type Diagram struct {
	Title  string
	Nodes  []*Node
	Edges  []*Edge
	Layers int
	Width  float64
	Height float64
}

// Node returns the placed node for an item identifier, or nil.
func (d *Diagram) Node(identifier string) *Node {
	for _, n := range d.Nodes {
		if n.Item.Identifier == identifier {
			return n
		}
	}
	return nil
}

// Layout places every element of m. Layers are assigned breadth-first from
// the roots along incoming relationships; elements only reachable through a
// cycle with no root go into an extra bottom layer. Within a layer elements
// keep model order. Relationships with a missing endpoint are not drawn.
func Layout(m *model.Model) *Diagram {
	d := &Diagram{Title: m.Identifier}
	items := m.Items()

	// incoming[target] lists the sources of relationships into target
	incoming := make(map[string][]string)
	for _, item := range items {
		if item.IsRelationship() && item.Source != "" && item.Target != "" {
			incoming[item.Target] = append(incoming[item.Target], item.Source)
		}
	}

	layers := make(map[string]int)
	var queue []string
	for _, root := range m.FindRoots() {
		layers[root.Reference] = 0
		queue = append(queue, root.Reference)
	}
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		for _, src := range incoming[ref] {
			if _, seen := layers[src]; seen {
				continue
			}
			layers[src] = layers[ref] + 1
			queue = append(queue, src)
		}
	}

	maxLayer := -1
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}
	orphanLayer := maxLayer + 1

	byRef := make(map[string]*Node)
	columns := make(map[int]int)
	for _, item := range items {
		if item.IsRelationship() {
			continue
		}
		layer, ok := layers[item.Reference]
		if !ok {
			layer = orphanLayer
		}
		n := &Node{Item: item, Layer: layer, Column: columns[layer]}
		columns[layer]++
		n.X = Margin + float64(n.Column)*(NodeWidth+ColumnGap)
		n.Y = Margin + float64(layer)*(NodeHeight+LayerGap)
		d.Nodes = append(d.Nodes, n)
		byRef[item.Reference] = n
		if layer+1 > d.Layers {
			d.Layers = layer + 1
		}
	}

	for _, item := range items {
		if !item.IsRelationship() {
			continue
		}
		from, to := byRef[item.Source], byRef[item.Target]
		if from == nil || to == nil {
			continue
		}
		d.Edges = append(d.Edges, &Edge{Relationship: item, From: from, To: to})
	}

	widest := 0
	for _, c := range columns {
		if c > widest {
			widest = c
		}
	}
	if widest > 0 {
		d.Width = 2*Margin + float64(widest)*NodeWidth + float64(widest-1)*ColumnGap
		d.Height = 2*Margin + float64(d.Layers)*NodeHeight + float64(d.Layers-1)*LayerGap
	}
	return d
}
