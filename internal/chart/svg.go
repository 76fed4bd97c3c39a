package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

const (
	axisStyle  = "stroke:#000;shape-rendering:crispEdges"
	labelStyle = "font:10px sans-serif;fill:#000"
	tickSize   = 6
)

// WriteSVG draws the plot: x axis along the bottom, y axis on the left and
// the bid and ask lines inside the margins.
func (p Plot) WriteSVG(w io.Writer) {
	l := p.Layout
	width, height := int(l.InnerWidth()), int(l.InnerHeight())

	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height, `class="chart"`)
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", l.Margins.Left, l.Margins.Top))

	canvas.Gtransform(fmt.Sprintf("translate(0,%d)", height))
	canvas.Line(0, 0, width, 0, axisStyle)
	for _, t := range p.TimeTicks {
		x := px(t.Pos)
		canvas.Line(x, 0, x, tickSize, axisStyle)
		canvas.Text(x, tickSize+12, t.Label, labelStyle+";text-anchor:middle")
	}
	canvas.Gend()

	canvas.Line(0, 0, 0, height, axisStyle)
	for _, t := range p.PriceTicks {
		y := px(t.Pos)
		canvas.Line(-tickSize, y, 0, y, axisStyle)
		canvas.Text(-tickSize-3, y+3, t.Label, labelStyle+";text-anchor:end")
	}

	if d := PathData(p.Bid); d != "" {
		canvas.Path(d, "fill:none;stroke-width:1.5;stroke:"+BidColor)
	}
	if d := PathData(p.Ask); d != "" {
		canvas.Path(d, "fill:none;stroke-width:1.5;stroke:"+AskColor)
	}

	canvas.Gend()
	canvas.End()
}

// InlineSVG returns the drawing without the XML declaration, ready to be
// embedded in an HTML document.
func (p Plot) InlineSVG() string {
	var buf bytes.Buffer
	p.WriteSVG(&buf)
	out := buf.Bytes()
	if i := bytes.Index(out, []byte("<svg")); i > 0 {
		out = out[i:]
	}
	return string(out)
}

func px(v float64) int {
	return int(math.Round(v))
}
