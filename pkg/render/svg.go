// Package render generates output artifacts from normalized sequence models
// and mapped alignments.
//
// Sequence maps are drawn as one horizontal track per chain with one
// proportional-width block per annotated region, colored by the palette.
// Alignments are drawn as fixed-width line pairs with per-character
// classification coloring and boundary overlays. A plain-text alignment
// formatter is provided for terminal output.
package render

import (
	"bytes"
	"fmt"

	"github.com/tmonheim/chainview/pkg/alignment"
	"github.com/tmonheim/chainview/pkg/annot"
)

// Default geometry for SVG output.
const (
	defaultTrackWidth  = 800.0
	defaultTrackHeight = 26.0
	trackSpacing       = 54.0
	labelOffset        = 14.0
	margin             = 20.0
)

// backgroundColor is the unannotated part of a chain track.
const backgroundColor = "#eceff1"

// SVGOption configures the SVG renderers.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	trackWidth  float64
	trackHeight float64
	charWidth   float64
}

// WithTrackWidth overrides the drawable track width in pixels.
func WithTrackWidth(w float64) SVGOption {
	return func(r *svgRenderer) { r.trackWidth = w }
}

// WithTrackHeight overrides the track height in pixels.
func WithTrackHeight(h float64) SVGOption {
	return func(r *svgRenderer) { r.trackHeight = h }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		trackWidth:  defaultTrackWidth,
		trackHeight: defaultTrackHeight,
		charWidth:   9.0,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSequenceSVG draws one track per chain across all models. Region
// blocks are positioned proportionally: a region spanning [start,stop] of a
// chain of length L occupies the matching fraction of the track width.
func RenderSequenceSVG(models []annot.SequenceModel, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	tracks := 0
	for _, m := range models {
		tracks += len(m.Chains)
	}
	width := r.trackWidth + 2*margin
	height := float64(tracks)*trackSpacing + 2*margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)

	y := margin
	for _, m := range models {
		for _, c := range m.Chains {
			r.renderTrack(&buf, m.Name, c, y)
			y += trackSpacing
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderTrack(buf *bytes.Buffer, seqName string, c annot.ChainModel, y float64) {
	fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12">%s · %s (%d aa)</text>`+"\n",
		margin, y+labelOffset-4, escape(seqName), escape(c.Name), len(c.Sequence))

	if len(c.Sequence) == 0 {
		return
	}
	trackY := y + labelOffset

	fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="3"/>`+"\n",
		margin, trackY, r.trackWidth, r.trackHeight, backgroundColor)

	unit := r.trackWidth / float64(len(c.Sequence))
	for _, region := range c.Annotations {
		x := margin + float64(region.Start-1)*unit
		w := float64(region.Length()) * unit
		color := region.Color
		if color == "" {
			color = backgroundColor
		}
		fmt.Fprintf(buf, `<rect id="region-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="3"><title>%s [%d-%d]</title></rect>`+"\n",
			escape(region.ID), x, trackY, w, r.trackHeight, color, escape(region.Name), region.Start, region.Stop)

		// Label only blocks wide enough to hold their name.
		if w > float64(len(region.Name))*7.5 {
			fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="11" text-anchor="middle" fill="#263238">%s</text>`+"\n",
				x+w/2, trackY+r.trackHeight/2+4, escape(region.Name))
		}
	}
}

// Cell colors for alignment rendering.
var cellColors = map[alignment.Cell]string{
	alignment.CellMismatch: "#ffcdd2",
	alignment.CellGap:      "#cfd8dc",
}

// RenderAlignmentSVG draws the display lines of a pairwise alignment. Each
// line is a query/subject text pair with mismatch and gap cells shaded.
// Boundaries, when given, are projected onto every line as shaded spans plus
// edge tick marks labelled at their start.
func RenderAlignmentSVG(lines []alignment.Line, boundaries []alignment.Boundary, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)

	const rowHeight = 16.0
	const blockHeight = 4 * rowHeight
	numWidth := 6 * r.charWidth

	maxLen := 0
	for _, l := range lines {
		if len(l.Query) > maxLen {
			maxLen = len(l.Query)
		}
	}
	width := 2*margin + numWidth + float64(maxLen)*r.charWidth
	height := 2*margin + float64(len(lines))*blockHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)

	y := margin
	for _, l := range lines {
		if err := r.renderAlignmentLine(&buf, l, boundaries, margin+numWidth, y, rowHeight); err != nil {
			return nil, err
		}
		y += blockHeight
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *svgRenderer) renderAlignmentLine(buf *bytes.Buffer, l alignment.Line, boundaries []alignment.Boundary, x0, y, rowHeight float64) error {
	// Boundary overlays live in original query coordinates and sit above the
	// query row.
	if len(boundaries) > 0 {
		overlays, err := alignment.ProjectBoundaries(boundaries, l.QueryStart, l.QueryEnd, len(l.Query))
		if err != nil {
			return err
		}
		lineWidth := float64(len(l.Query)) * r.charWidth
		for _, o := range overlays {
			switch o.Kind {
			case alignment.OverlaySpan:
				fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#b3e5fc" opacity="0.6"/>`+"\n",
					x0+float64(o.Offset)*r.charWidth, y, o.Width*lineWidth, rowHeight-4)
			case alignment.OverlayStart:
				tickX := x0 + float64(o.Offset)*r.charWidth
				fmt.Fprintf(buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#0277bd"/>`+"\n",
					tickX, y, tickX, y+rowHeight)
				fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="monospace" font-size="10" fill="#0277bd">%s</text>`+"\n",
					tickX+2, y+rowHeight-6, escape(o.Label))
			case alignment.OverlayEnd:
				tickX := x0 + float64(o.Offset+1)*r.charWidth
				fmt.Fprintf(buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#0277bd"/>`+"\n",
					tickX, y, tickX, y+rowHeight)
			}
		}
	}

	// Shade mismatch and gap cells behind both sequence rows.
	queryY := y + rowHeight
	subjectY := y + 2*rowHeight
	for i, cell := range l.Cells {
		color, ok := cellColors[cell]
		if !ok {
			continue
		}
		x := x0 + float64(i)*r.charWidth
		fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			x, queryY, r.charWidth, 2*rowHeight, color)
	}

	fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="monospace" font-size="13">%d</text>`+"\n",
		margin, queryY+rowHeight-4, l.QueryStart)
	fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="monospace" font-size="13" textLength="%.1f">%s</text>`+"\n",
		x0, queryY+rowHeight-4, float64(len(l.Query))*r.charWidth, escape(l.Query))
	fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="monospace" font-size="13">%d</text>`+"\n",
		margin, subjectY+rowHeight-4, l.SubjectStart)
	fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-family="monospace" font-size="13" textLength="%.1f">%s</text>`+"\n",
		x0, subjectY+rowHeight-4, float64(len(l.Subject))*r.charWidth, escape(l.Subject))

	return nil
}

// escape replaces the characters that terminate SVG text or attributes.
func escape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
