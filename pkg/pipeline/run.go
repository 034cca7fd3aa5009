package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tmonheim/chainview/pkg/alignment"
	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/cache"
	"github.com/tmonheim/chainview/pkg/errors"
	"github.com/tmonheim/chainview/pkg/observability"
	"github.com/tmonheim/chainview/pkg/palette"
	"github.com/tmonheim/chainview/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// annotationRecord is the cached shape of a normalized annotation result.
type annotationRecord struct {
	Sequences []annot.SequenceModel `json:"sequences"`
	Failures  []annot.ItemFailure   `json:"failures,omitempty"`
}

// Execute runs the complete normalize → render pipeline with caching.
// payload is the raw annotation service response.
func (r *Runner) Execute(ctx context.Context, payload []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	for _, f := range opts.Formats {
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
	}

	scheme, schemeHash, err := loadScheme(opts.SchemePath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Normalize
	normalizeStart := time.Now()
	observability.Pipeline().OnNormalizeStart(ctx)
	record, annotHit, err := r.normalizeWithCache(ctx, payload, scheme, schemeHash, opts)
	observability.Pipeline().OnNormalizeComplete(ctx, len(record.Sequences), time.Since(normalizeStart), err)
	if err != nil {
		return nil, err
	}
	result.Sequences = record.Sequences
	result.Failures = record.Failures
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	result.CacheInfo.AnnotationHit = annotHit
	countStats(record.Sequences, &result.Stats)

	// Compute model hash for render cache keys and API responses
	modelData, err := json.Marshal(record.Sequences)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize models")
	}
	result.ModelHash = cache.Hash(modelData)

	r.Logger.Info("normalized annotations",
		"sequences", result.Stats.SequenceCount,
		"chains", result.Stats.ChainCount,
		"regions", result.Stats.RegionCount,
		"skipped", len(record.Failures),
		"duration", result.Stats.NormalizeTime)

	// Stage 2: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.renderWithCache(ctx, record, result.ModelHash, schemeHash, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// normalizeWithCache decodes and normalizes the payload, consulting the cache
// first. The second return value reports a cache hit.
func (r *Runner) normalizeWithCache(ctx context.Context, payload []byte, scheme *palette.Scheme, schemeHash string, opts Options) (annotationRecord, bool, error) {
	// Custom schemes change the colors baked into the models, so they
	// participate in the annotation key.
	payloadHash := cache.Hash(payload)
	if schemeHash != "" {
		payloadHash = cache.Hash([]byte(payloadHash + schemeHash))
	}
	cacheKey := r.Keyer.AnnotationKey(payloadHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var record annotationRecord
			if err := json.Unmarshal(data, &record); err == nil {
				observability.Cache().OnCacheHit(ctx, "annotation")
				return record, true, nil
			}
			// Corrupt entry, fall through to recompute.
		}
	}
	observability.Cache().OnCacheMiss(ctx, "annotation")

	resp, err := annot.DecodeResponse(payload)
	if err != nil {
		return annotationRecord{}, false, err
	}
	models, failures := annot.NewNormalizer(scheme).Normalize(resp)
	record := annotationRecord{Sequences: models, Failures: failures}

	if data, err := json.Marshal(record); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultTTL)
		observability.Cache().OnCacheSet(ctx, "annotation", len(data))
	}

	return record, false, nil
}

// renderWithCache renders all requested formats, consulting the cache first.
// Cached artifacts are used only when every format hits.
func (r *Runner) renderWithCache(ctx context.Context, record annotationRecord, modelHash, schemeHash string, opts Options) (map[string][]byte, bool, error) {
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(modelHash, opts.RenderKeyOpts(format, schemeHash))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "render")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.renderFormat(record, format, opts)
		if err != nil {
			return nil, false, err
		}
		rendered[format] = data
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(modelHash, opts.RenderKeyOpts(format, schemeHash))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultTTL)
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}

	return rendered, false, nil
}

func (r *Runner) renderFormat(record annotationRecord, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize result")
		}
		return data, nil
	case FormatSVG:
		return render.RenderSequenceSVG(record.Sequences, render.WithTrackWidth(opts.TrackWidth)), nil
	default:
		return nil, ValidateFormat(format)
	}
}

// ExecuteAlign builds display lines for a pairwise alignment and renders the
// requested formats with caching.
func (r *Runner) ExecuteAlign(ctx context.Context, in AlignInput, opts Options) (*AlignResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	for _, f := range opts.Formats {
		if err := ValidateAlignFormat(f); err != nil {
			return nil, err
		}
	}
	if in.QueryStart == 0 {
		in.QueryStart = 1
	}
	if in.SubjectStart == 0 {
		in.SubjectStart = 1
	}

	lines, err := alignment.BuildLines(in.Query, in.Subject, in.QueryStart, in.SubjectStart, opts.LineWidth)
	if err != nil {
		return nil, err
	}

	inputData, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize alignment input")
	}
	inputHash := cache.Hash(inputData)

	result := &AlignResult{
		Lines:     lines,
		Artifacts: make(map[string][]byte),
	}

	allCached := !opts.Refresh
	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.RenderKey(inputHash, opts.RenderKeyOpts(format, ""))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				result.Artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}
	if allCached && len(result.Artifacts) == len(opts.Formats) {
		result.RenderHit = true
		return result, nil
	}

	result.Artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(lines, "", "  ")
			if err != nil {
				err = errors.Wrap(errors.ErrCodeInternal, err, "serialize lines")
			}
		case FormatSVG:
			data, err = render.RenderAlignmentSVG(lines, in.Boundaries)
		case FormatText:
			data = []byte(render.FormatAlignment(lines))
		}
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}

	for format, data := range result.Artifacts {
		cacheKey := r.Keyer.RenderKey(inputHash, opts.RenderKeyOpts(format, ""))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultTTL)
	}

	r.Logger.Info("built alignment",
		"lines", len(lines),
		"formats", opts.Formats)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// loadScheme resolves the color scheme for a run. The hash identifies custom
// schemes in cache keys; the default scheme hashes to the empty string.
func loadScheme(path string) (*palette.Scheme, string, error) {
	if path == "" {
		return palette.Default(), "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidScheme, err, "read color scheme %s", path)
	}
	scheme, err := palette.ParseScheme(string(data))
	if err != nil {
		return nil, "", err
	}
	return scheme, cache.Hash(data), nil
}

func countStats(models []annot.SequenceModel, stats *Stats) {
	stats.SequenceCount = len(models)
	for _, m := range models {
		stats.ChainCount += len(m.Chains)
		for _, c := range m.Chains {
			stats.RegionCount += len(c.Annotations)
		}
	}
}
