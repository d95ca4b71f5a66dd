package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// ErrEmptyDiagram is returned when there is nothing to draw.
var ErrEmptyDiagram = errors.New("nothing to render")

// maxLabel is the number of description runes shown inside a node.
const maxLabel = 24

var (
	fillColors = map[types.ItemKind]color.Color{
		types.KindGoal:           color.RGBA{R: 0xd6, G: 0xe4, B: 0xff, A: 0xff},
		types.KindObstacle:       color.RGBA{R: 0xff, G: 0xd6, B: 0xd6, A: 0xff},
		types.KindAgent:          color.RGBA{R: 0xff, G: 0xf2, B: 0xc2, A: 0xff},
		types.KindDomainProperty: color.RGBA{R: 0xd8, G: 0xf5, B: 0xd8, A: 0xff},
	}
	edgeColors = map[types.ItemKind]color.Color{
		types.KindRefinement: color.Black,
		types.KindConflict:   color.RGBA{R: 0xc0, G: 0x10, B: 0x10, A: 0xff},
		types.KindResolution: color.RGBA{R: 0x10, G: 0x80, B: 0x10, A: 0xff},
	}
)

// WritePNG draws d and encodes it as PNG to w.
func WritePNG(w io.Writer, d *Diagram) error {
	dc, err := draw(d)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG draws d into the file at path.
func SavePNG(path string, d *Diagram) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePNG(f, d); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func draw(d *Diagram) (*gg.Context, error) {
	if len(d.Nodes) == 0 {
		return nil, ErrEmptyDiagram
	}

	dc := gg.NewContext(int(math.Ceil(d.Width)), int(math.Ceil(d.Height)))
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    11,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	// Edges first so boxes cover their ends
	for _, e := range d.Edges {
		drawEdge(dc, e)
	}
	for _, n := range d.Nodes {
		drawNode(dc, n)
	}
	return dc, nil
}

func drawEdge(dc *gg.Context, e *Edge) {
	// Sources sit below their targets: leave the top of the source box and
	// arrive at the bottom of the target box.
	fx, _ := e.From.Center()
	tx, _ := e.To.Center()
	fy := e.From.Y
	ty := e.To.Y + NodeHeight
	if e.From.Layer <= e.To.Layer {
		fy = e.From.Y + NodeHeight
		ty = e.To.Y
	}

	c, ok := edgeColors[e.Relationship.Kind]
	if !ok {
		c = color.Black
	}
	dc.SetColor(c)
	dc.SetLineWidth(1.5)
	if e.Relationship.Kind == types.KindConflict {
		dc.SetDash(6, 4)
	}
	dc.DrawLine(fx, fy, tx, ty)
	dc.Stroke()
	dc.SetDash()
	drawArrow(dc, fx, fy, tx, ty)

	dc.DrawStringAnchored(e.Relationship.Identifier, (fx+tx)/2+4, (fy+ty)/2, 0, 0.5)
}

func drawArrow(dc *gg.Context, fx, fy, tx, ty float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const size, spread = 8.0, 0.5
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-size*dx+size*dy*spread, ty-size*dy-size*dx*spread)
	dc.LineTo(tx-size*dx-size*dy*spread, ty-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func drawNode(dc *gg.Context, n *Node) {
	fill, ok := fillColors[n.Item.Kind]
	if !ok {
		fill = color.White
	}
	nodePath(dc, n)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(color.Black)
	width := 1.0
	if n.Item.IsRequirement {
		width = 2.5
	}
	dc.SetLineWidth(width)
	dc.Stroke()

	cx, cy := n.Center()
	dc.DrawStringAnchored(heading(n.Item), cx, cy-8, 0.5, 0.5)
	dc.DrawStringAnchored(truncate(n.Item.Description, maxLabel), cx, cy+8, 0.5, 0.5)
}

// nodePath traces the KAOS shape for the node's kind: goals lean right,
// obstacles lean left, agents are hexagons and domain properties are plain
// boxes.
func nodePath(dc *gg.Context, n *Node) {
	x, y, w, h := n.X, n.Y, NodeWidth, NodeHeight
	const slant = 12.0
	switch n.Item.Kind {
	case types.KindGoal:
		polygon(dc, x+slant, y, x+w, y, x+w-slant, y+h, x, y+h)
	case types.KindObstacle:
		polygon(dc, x, y, x+w-slant, y, x+w, y+h, x+slant, y+h)
	case types.KindAgent:
		polygon(dc, x+slant, y, x+w-slant, y, x+w, y+h/2, x+w-slant, y+h, x+slant, y+h, x, y+h/2)
	default:
		dc.DrawRectangle(x, y, w, h)
	}
}

func polygon(dc *gg.Context, coords ...float64) {
	dc.NewSubPath()
	for i := 0; i+1 < len(coords); i += 2 {
		dc.LineTo(coords[i], coords[i+1])
	}
	dc.ClosePath()
}

func heading(item *types.Item) string {
	if item.Objective != types.ObjectiveNone {
		return fmt.Sprintf("%s [%s]", item.Identifier, item.Objective)
	}
	return item.Identifier
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
