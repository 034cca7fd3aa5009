// Package alignment maps pairwise sequence alignments onto fixed-width
// display lines.
//
// The mapper consumes two equal-length aligned strings (with '-' as the gap
// character), classifies every aligned character pair, splits the alignment
// into fixed-width lines, and projects region boundaries defined in original
// (ungapped) query coordinates onto the wrapped display lines as proportional
// overlays.
//
// Alignments and boundaries are supplied by an external search service; this
// package computes nothing about the alignment itself.
package alignment

import (
	"github.com/tmonheim/chainview/pkg/errors"
)

// GapChar marks a gap in an aligned sequence.
const GapChar = '-'

// DefaultLineWidth is the display width used when callers pass none.
const DefaultLineWidth = 60

// Cell classifies one aligned character pair.
type Cell string

// Cell classifications.
const (
	CellMatch    Cell = "match"
	CellMismatch Cell = "mismatch"
	CellGap      Cell = "gap"
)

// Chunk is one fixed-width slice of a single aligned sequence. Start and End
// are 1-based inclusive positions derived from the caller's start position by
// plain index arithmetic over the aligned string.
type Chunk struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Sequence string `json:"sequence"`
}

// Line is one display line of a pairwise alignment: the query and subject
// chunks at the same line index plus the per-character classification.
// Query and subject ranges on the same line may differ; the two sequences
// are split independently using their own start positions.
type Line struct {
	QueryStart   int    `json:"query_start"`
	QueryEnd     int    `json:"query_end"`
	SubjectStart int    `json:"subject_start"`
	SubjectEnd   int    `json:"subject_end"`
	Query        string `json:"query"`
	Subject      string `json:"subject"`
	Cells        []Cell `json:"cells"`
}

// Boundary is a region boundary in original (ungapped) query coordinates.
type Boundary struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// OverlayKind distinguishes span overlays from edge markers.
type OverlayKind string

// Overlay kinds. Renderers use edge markers for labels and span overlays for
// shading; both are emitted even when a boundary edge coincides with a line
// edge.
const (
	OverlaySpan  OverlayKind = "span"
	OverlayStart OverlayKind = "start"
	OverlayEnd   OverlayKind = "end"
)

// Overlay is one render instruction for a boundary on a single display line.
// Offset is the 0-based position within the line. For span overlays, Span is
// the clipped length in positions and Width its share of the displayed line
// for proportional rendering.
type Overlay struct {
	Kind   OverlayKind `json:"kind"`
	Type   string      `json:"type"`
	Label  string      `json:"label"`
	Offset int         `json:"offset"`
	Span   int         `json:"span,omitempty"`
	Width  float64     `json:"width,omitempty"`
}

// Classify compares the aligned strings character by character. A pair with a
// gap on either side is a gap; equal characters are a match; anything else is
// a mismatch. The comparison is a pure character-equality test: callers must
// pre-normalize case.
func Classify(query, subject string) ([]Cell, error) {
	if len(query) != len(subject) {
		return nil, errors.New(errors.ErrCodeLengthMismatch,
			"aligned sequences differ in length: query %d, subject %d", len(query), len(subject))
	}
	cells := make([]Cell, len(query))
	for i := 0; i < len(query); i++ {
		switch {
		case query[i] == GapChar || subject[i] == GapChar:
			cells[i] = CellGap
		case query[i] == subject[i]:
			cells[i] = CellMatch
		default:
			cells[i] = CellMismatch
		}
	}
	return cells, nil
}

// SplitIntoLines partitions an aligned sequence into consecutive chunks of
// lineWidth characters; the last chunk may be shorter. Chunk positions are
// startPos + chunkIndex*lineWidth through the end of the chunk.
func SplitIntoLines(seq string, startPos, lineWidth int) ([]Chunk, error) {
	if lineWidth <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "line width must be positive, got %d", lineWidth)
	}
	var chunks []Chunk
	for i := 0; i < len(seq); i += lineWidth {
		end := i + lineWidth
		if end > len(seq) {
			end = len(seq)
		}
		chunks = append(chunks, Chunk{
			Start:    startPos + i,
			End:      startPos + end - 1,
			Sequence: seq[i:end],
		})
	}
	return chunks, nil
}

// BuildLines splits query and subject independently and zips the chunks by
// line index, attaching the per-character classification of each slice.
func BuildLines(query, subject string, queryStart, subjectStart, lineWidth int) ([]Line, error) {
	cells, err := Classify(query, subject)
	if err != nil {
		return nil, err
	}
	qChunks, err := SplitIntoLines(query, queryStart, lineWidth)
	if err != nil {
		return nil, err
	}
	sChunks, err := SplitIntoLines(subject, subjectStart, lineWidth)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, len(qChunks))
	for i := range qChunks {
		lines[i] = Line{
			QueryStart:   qChunks[i].Start,
			QueryEnd:     qChunks[i].End,
			SubjectStart: sChunks[i].Start,
			SubjectEnd:   sChunks[i].End,
			Query:        qChunks[i].Sequence,
			Subject:      sChunks[i].Sequence,
			Cells:        cells[i*lineWidth : i*lineWidth+len(qChunks[i].Sequence)],
		}
	}
	return lines, nil
}

// ProjectBoundaries maps boundaries onto one display line covering positions
// [lineStart, lineEnd]. Each intersecting boundary is clipped to the line and
// emitted as a span overlay with a proportional width; a boundary whose
// original start or end is visible on the line additionally emits an edge
// marker at that position. Boundaries fully outside the line contribute
// nothing.
func ProjectBoundaries(boundaries []Boundary, lineStart, lineEnd, displayedLength int) ([]Overlay, error) {
	if displayedLength <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "displayed length must be positive, got %d", displayedLength)
	}
	if lineEnd < lineStart {
		return nil, errors.New(errors.ErrCodeInvalidRange, "line end %d before line start %d", lineEnd, lineStart)
	}

	var overlays []Overlay
	for _, b := range boundaries {
		if b.End < lineStart || b.Start > lineEnd {
			continue
		}

		clippedStart := max(b.Start, lineStart)
		clippedEnd := min(b.End, lineEnd)
		span := clippedEnd - clippedStart + 1

		overlays = append(overlays, Overlay{
			Kind:   OverlaySpan,
			Type:   b.Type,
			Label:  b.Label,
			Offset: clippedStart - lineStart,
			Span:   span,
			Width:  float64(span) / float64(displayedLength),
		})
		if b.Start >= lineStart && b.Start <= lineEnd {
			overlays = append(overlays, Overlay{
				Kind:   OverlayStart,
				Type:   b.Type,
				Label:  b.Label,
				Offset: b.Start - lineStart,
			})
		}
		if b.End >= lineStart && b.End <= lineEnd {
			overlays = append(overlays, Overlay{
				Kind:   OverlayEnd,
				Type:   b.Type,
				Label:  b.Label,
				Offset: b.End - lineStart,
			})
		}
	}
	return overlays, nil
}
