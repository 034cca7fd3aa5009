package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/tmonheim/chainview/pkg/cache"
	"github.com/tmonheim/chainview/pkg/errors"
)

// testPayload is a minimal annotation response: one sequence, one heavy chain
// with a single variable domain carrying FR1 and CDR1.
const testPayload = `{
  "results": [
    {
      "name": "seq1",
      "success": true,
      "data": {
        "sequence": {
          "name": "seq1",
          "species": "human",
          "chains": [
            {
              "name": "H",
              "chain_type": "H",
              "sequences": [
                {
                  "domains": [
                    {
                      "domain_type": "V",
                      "start_position": 1,
                      "end_position": 10,
                      "sequence_data": "EVQLVESGGG",
                      "features": [
                        {"name": "FR1", "feature_type": "FR1", "start_position": 1, "end_position": 5},
                        {"name": "CDR1", "feature_type": "CDR1", "start_position": 6, "end_position": 8}
                      ]
                    }
                  ]
                }
              ]
            }
          ]
        }
      }
    }
  ]
}`

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t)

	result, err := runner.Execute(ctx, []byte(testPayload), Options{Formats: []string{FormatJSON, FormatSVG}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.SequenceCount != 1 || result.Stats.ChainCount != 1 || result.Stats.RegionCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.ModelHash == "" {
		t.Error("expected model hash")
	}
	if result.CacheInfo.AnnotationHit || result.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}

	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, `id="region-seq1:H:CDR1:0"`) {
		t.Error("SVG artifact missing CDR1 region")
	}
	if !strings.Contains(string(result.Artifacts[FormatJSON]), `"seq1:H:FR1:0"`) {
		t.Error("JSON artifact missing FR1 region")
	}
}

func TestExecuteCacheHit(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t)
	opts := Options{Formats: []string{FormatJSON}}

	if _, err := runner.Execute(ctx, []byte(testPayload), opts); err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(ctx, []byte(testPayload), Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.AnnotationHit {
		t.Error("expected annotation cache hit on second run")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("expected render cache hit on second run")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t)

	if _, err := runner.Execute(ctx, []byte(testPayload), Options{Formats: []string{FormatJSON}}); err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(ctx, []byte(testPayload), Options{Formats: []string{FormatJSON}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.AnnotationHit {
		t.Error("refresh should bypass the annotation cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	tests := []struct {
		name     string
		payload  string
		opts     Options
		wantCode errors.Code
	}{
		{
			name:     "MalformedPayload",
			payload:  "{not json",
			opts:     Options{},
			wantCode: errors.ErrCodeMalformedInput,
		},
		{
			name:     "InvalidFormat",
			payload:  testPayload,
			opts:     Options{Formats: []string{"png"}},
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name:     "MissingScheme",
			payload:  testPayload,
			opts:     Options{SchemePath: "/nonexistent/scheme.toml"},
			wantCode: errors.ErrCodeInvalidScheme,
		},
		{
			name:     "NegativeTrackWidth",
			payload:  testPayload,
			opts:     Options{TrackWidth: -1},
			wantCode: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(ctx, []byte(tt.payload), tt.opts)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestExecuteAlign(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t)

	in := AlignInput{Query: "ACGT--AC", Subject: "ACG-TTAC"}
	result, err := runner.ExecuteAlign(ctx, in, Options{Formats: []string{FormatText, FormatSVG}, LineWidth: 4})
	if err != nil {
		t.Fatalf("ExecuteAlign: %v", err)
	}

	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	text := string(result.Artifacts[FormatText])
	if !strings.Contains(text, "Query       1  ACGT  4") {
		t.Errorf("text artifact missing query row:\n%s", text)
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not an SVG document")
	}

	// Same input again should be served from the render cache.
	again, err := runner.ExecuteAlign(ctx, in, Options{Formats: []string{FormatText, FormatSVG}, LineWidth: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !again.RenderHit {
		t.Error("expected render cache hit on second run")
	}
}

func TestExecuteAlignLengthMismatch(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.ExecuteAlign(context.Background(), AlignInput{Query: "ACGT", Subject: "AC"}, Options{})
	if !errors.Is(err, errors.ErrCodeLengthMismatch) {
		t.Errorf("expected LENGTH_MISMATCH, got %v", err)
	}
}

func TestOptionsValidateIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.TrackWidth != DefaultTrackWidth || opts.LineWidth != DefaultLineWidth {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("default format not applied: %v", opts.Formats)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second validation failed: %v", err)
	}
}
