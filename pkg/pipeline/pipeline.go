// Package pipeline ties annotation normalization and rendering together.
//
// This package implements the normalize → render flow shared by the CLI and
// the API server. By centralizing this logic, both entry points get the same
// defaults, validation, and caching behavior.
//
// # Usage
//
// Create a Runner and execute the pipeline on a raw annotation payload:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg"}}
//	result, err := runner.Execute(ctx, payload, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Alignments run through ExecuteAlign with an AlignInput.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tmonheim/chainview/pkg/alignment"
	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/cache"
	"github.com/tmonheim/chainview/pkg/errors"
)

const (
	// DefaultTrackWidth is the default sequence-map track width in pixels.
	DefaultTrackWidth = 800.0

	// DefaultLineWidth is the default alignment line width in residues.
	DefaultLineWidth = alignment.DefaultLineWidth
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatText = "text"
)

// ValidFormats is the set of supported annotation output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
}

// ValidAlignFormats is the set of supported alignment output formats.
var ValidAlignFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatText: true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Render options
	Formats    []string `json:"formats,omitempty"`
	SchemePath string   `json:"scheme,omitempty"`      // Path to a TOML color scheme
	TrackWidth float64  `json:"track_width,omitempty"` // Sequence-map track width in px
	LineWidth  int      `json:"line_width,omitempty"`  // Alignment residues per line

	// Refresh bypasses cached annotation results.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of an annotation pipeline run.
type Result struct {
	// Sequences are the normalized display models.
	Sequences []annot.SequenceModel

	// Failures are the per-item skips reported by the normalizer.
	Failures []annot.ItemFailure

	// ModelHash is the content hash of the normalized models.
	ModelHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SequenceCount int
	ChainCount    int
	RegionCount   int
	NormalizeTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnnotationHit bool // Whether the normalized model came from cache
	RenderHit     bool // Whether all artifacts came from cache
}

// AlignInput is the pairwise alignment to display.
type AlignInput struct {
	Query        string               `json:"query"`
	Subject      string               `json:"subject"`
	QueryStart   int                  `json:"query_start,omitempty"`   // 1 if unset
	SubjectStart int                  `json:"subject_start,omitempty"` // 1 if unset
	Boundaries   []alignment.Boundary `json:"boundaries,omitempty"`
}

// AlignResult contains the outputs of an alignment pipeline run.
type AlignResult struct {
	Lines     []alignment.Line
	Artifacts map[string][]byte
	RenderHit bool
}

// ValidateFormat checks that an annotation output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg)", format)
	}
	return nil
}

// ValidateAlignFormat checks that an alignment output format is valid.
func ValidateAlignFormat(format string) error {
	if !ValidAlignFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, text)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent, calling it multiple times has the same effect as
// calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.TrackWidth == 0 {
		o.TrackWidth = DefaultTrackWidth
	}
	if o.TrackWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "track width must be positive, got %v", o.TrackWidth)
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.LineWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "line width must be positive, got %d", o.LineWidth)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format, schemeHash string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:     format,
		Scheme:     schemeHash,
		TrackWidth: o.TrackWidth,
		LineWidth:  o.LineWidth,
	}
}
