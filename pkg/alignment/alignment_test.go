package alignment

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tmonheim/chainview/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		subject string
		want    []Cell
		wantErr errors.Code
	}{
		{
			name:    "AllMatch",
			query:   "ACGT",
			subject: "ACGT",
			want:    []Cell{CellMatch, CellMatch, CellMatch, CellMatch},
		},
		{
			name:    "Mismatch",
			query:   "ACGT",
			subject: "ACTT",
			want:    []Cell{CellMatch, CellMatch, CellMismatch, CellMatch},
		},
		{
			name:    "GapEitherSide",
			query:   "A-GT",
			subject: "AC-T",
			want:    []Cell{CellMatch, CellGap, CellGap, CellMatch},
		},
		{
			name:    "GapBothSides",
			query:   "-",
			subject: "-",
			want:    []Cell{CellGap},
		},
		{
			name:    "CaseSensitive",
			query:   "a",
			subject: "A",
			want:    []Cell{CellMismatch},
		},
		{
			name:    "LengthMismatch",
			query:   "ACGT",
			subject: "ACG",
			wantErr: errors.ErrCodeLengthMismatch,
		},
		{
			name:    "Empty",
			query:   "",
			subject: "",
			want:    []Cell{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.query, tt.subject)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("cells = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClassifyGapNotSymmetric checks that swapping query and subject preserves
// match/mismatch but a gap stays a gap regardless of which side carries it.
func TestClassifyGapNotSymmetric(t *testing.T) {
	a, err := Classify("A-C", "AG-")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Classify("AG-", "A-C")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("swapped classification differs: %v vs %v", a, b)
	}
	if a[1] != CellGap || a[2] != CellGap {
		t.Errorf("cells = %v, want gaps at 1 and 2", a)
	}
}

func TestSplitIntoLines(t *testing.T) {
	tests := []struct {
		name      string
		seq       string
		startPos  int
		lineWidth int
		want      []Chunk
		wantErr   errors.Code
	}{
		{
			name:      "EvenSplit",
			seq:       "ABCDEFGH",
			startPos:  1,
			lineWidth: 4,
			want: []Chunk{
				{Start: 1, End: 4, Sequence: "ABCD"},
				{Start: 5, End: 8, Sequence: "EFGH"},
			},
		},
		{
			name:      "ShortTail",
			seq:       "ABCDEFGHIJ",
			startPos:  100,
			lineWidth: 4,
			want: []Chunk{
				{Start: 100, End: 103, Sequence: "ABCD"},
				{Start: 104, End: 107, Sequence: "EFGH"},
				{Start: 108, End: 109, Sequence: "IJ"},
			},
		},
		{
			name:      "SingleChunk",
			seq:       "AB",
			startPos:  7,
			lineWidth: 60,
			want:      []Chunk{{Start: 7, End: 8, Sequence: "AB"}},
		},
		{
			name:      "EmptySequence",
			seq:       "",
			startPos:  1,
			lineWidth: 10,
			want:      nil,
		},
		{
			name:      "ZeroWidth",
			seq:       "ABC",
			startPos:  1,
			lineWidth: 0,
			wantErr:   errors.ErrCodeInvalidConfig,
		},
		{
			name:      "NegativeWidth",
			seq:       "ABC",
			startPos:  1,
			lineWidth: -3,
			wantErr:   errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitIntoLines(tt.seq, tt.startPos, tt.lineWidth)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitIntoLines: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chunks = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestSplitRoundTrip checks that reassembling the chunks restores the
// original sequence.
func TestSplitRoundTrip(t *testing.T) {
	seq := "EVQLVESGGGLVQPGGSLRLSCAASGFTFS-DYAMS-WVRQAPGK"
	for _, width := range []int{1, 7, 60} {
		chunks, err := SplitIntoLines(seq, 1, width)
		if err != nil {
			t.Fatalf("width %d: %v", width, err)
		}
		var sb strings.Builder
		for _, c := range chunks {
			sb.WriteString(c.Sequence)
		}
		if sb.String() != seq {
			t.Errorf("width %d: round trip = %q", width, sb.String())
		}
	}
}

func TestBuildLines(t *testing.T) {
	// Scenario from the alignment display: query ACGT--AC against subject
	// ACG-TTAC at width 4 gives two lines with the classifications below.
	lines, err := BuildLines("ACGT--AC", "ACG-TTAC", 10, 20, 4)
	if err != nil {
		t.Fatalf("BuildLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	first := lines[0]
	if first.QueryStart != 10 || first.QueryEnd != 13 {
		t.Errorf("line 1 query range = [%d,%d], want [10,13]", first.QueryStart, first.QueryEnd)
	}
	if first.SubjectStart != 20 || first.SubjectEnd != 23 {
		t.Errorf("line 1 subject range = [%d,%d], want [20,23]", first.SubjectStart, first.SubjectEnd)
	}
	wantFirst := []Cell{CellMatch, CellMatch, CellMatch, CellGap}
	if !reflect.DeepEqual(first.Cells, wantFirst) {
		t.Errorf("line 1 cells = %v, want %v", first.Cells, wantFirst)
	}

	second := lines[1]
	wantSecond := []Cell{CellGap, CellGap, CellMatch, CellMatch}
	if !reflect.DeepEqual(second.Cells, wantSecond) {
		t.Errorf("line 2 cells = %v, want %v", second.Cells, wantSecond)
	}
	if second.Query != "--AC" || second.Subject != "TTAC" {
		t.Errorf("line 2 = %q / %q", second.Query, second.Subject)
	}

	if _, err := BuildLines("ACGT", "AC", 1, 1, 4); !errors.Is(err, errors.ErrCodeLengthMismatch) {
		t.Errorf("length mismatch error = %v", err)
	}
}

func TestProjectBoundaries(t *testing.T) {
	boundaries := []Boundary{
		{Type: "CDR", Start: 26, End: 33, Label: "CDR1"},
		{Type: "FR", Start: 1, End: 25, Label: "FR1"},
		{Type: "CDR", Start: 200, End: 210, Label: "CDR3"},
	}

	tests := []struct {
		name            string
		lineStart       int
		lineEnd         int
		displayedLength int
		want            []Overlay
		wantErr         errors.Code
	}{
		{
			name:            "FullyInsideLine",
			lineStart:       1,
			lineEnd:         60,
			displayedLength: 60,
			want: []Overlay{
				{Kind: OverlaySpan, Type: "CDR", Label: "CDR1", Offset: 25, Span: 8, Width: 8.0 / 60.0},
				{Kind: OverlayStart, Type: "CDR", Label: "CDR1", Offset: 25},
				{Kind: OverlayEnd, Type: "CDR", Label: "CDR1", Offset: 32},
				{Kind: OverlaySpan, Type: "FR", Label: "FR1", Offset: 0, Span: 25, Width: 25.0 / 60.0},
				{Kind: OverlayStart, Type: "FR", Label: "FR1", Offset: 0},
				{Kind: OverlayEnd, Type: "FR", Label: "FR1", Offset: 24},
			},
		},
		{
			name:            "ClippedAtLineStart",
			lineStart:       30,
			lineEnd:         89,
			displayedLength: 60,
			want: []Overlay{
				// CDR1 [26,33] clips to [30,33]: span only, start edge is on a
				// previous line, end edge visible here.
				{Kind: OverlaySpan, Type: "CDR", Label: "CDR1", Offset: 0, Span: 4, Width: 4.0 / 60.0},
				{Kind: OverlayEnd, Type: "CDR", Label: "CDR1", Offset: 3},
			},
		},
		{
			name:            "EdgeOnLineBoundaryEmitsBoth",
			lineStart:       26,
			lineEnd:         33,
			displayedLength: 8,
			want: []Overlay{
				// Start falls exactly on lineStart and end exactly on lineEnd:
				// the span and both edge markers must all be emitted.
				{Kind: OverlaySpan, Type: "CDR", Label: "CDR1", Offset: 0, Span: 8, Width: 1.0},
				{Kind: OverlayStart, Type: "CDR", Label: "CDR1", Offset: 0},
				{Kind: OverlayEnd, Type: "CDR", Label: "CDR1", Offset: 7},
			},
		},
		{
			name:            "FullyOutside",
			lineStart:       100,
			lineEnd:         159,
			displayedLength: 60,
			want:            nil,
		},
		{
			name:            "ZeroDisplayedLength",
			lineStart:       1,
			lineEnd:         60,
			displayedLength: 0,
			wantErr:         errors.ErrCodeInvalidConfig,
		},
		{
			name:            "InvertedLine",
			lineStart:       60,
			lineEnd:         1,
			displayedLength: 60,
			wantErr:         errors.ErrCodeInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectBoundaries(boundaries, tt.lineStart, tt.lineEnd, tt.displayedLength)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProjectBoundaries: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("overlays = %+v, want %+v", got, tt.want)
			}
		})
	}
}
