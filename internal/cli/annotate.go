package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tmonheim/chainview/pkg/errors"
	"github.com/tmonheim/chainview/pkg/history"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

// annotateOpts holds the command-line flags for the annotate command.
type annotateOpts struct {
	output     string   // output file (single format) or base path (multiple)
	formats    []string // output formats: "json", "svg"
	scheme     string   // path to a TOML color scheme
	trackWidth float64  // sequence-map track width in px
	refresh    bool     // bypass cached annotation results
	noCache    bool     // disable the cache entirely
	save       bool     // persist the run to history
	name       string   // run name used with --save
	historyDir string   // history directory override
}

// annotateCommand creates the annotate command. It normalizes a raw
// annotation payload into display models and renders the requested formats.
func (c *CLI) annotateCommand() *cobra.Command {
	var formatsStr string
	opts := annotateOpts{
		trackWidth: pipeline.DefaultTrackWidth,
	}

	cmd := &cobra.Command{
		Use:   "annotate [payload.json]",
		Short: "Normalize an annotation payload and render outputs",
		Long:  `Annotate reads a raw annotation service response, flattens it into per-chain display models with stable region IDs and colors, and writes the requested output formats. Use "-" to read the payload from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, pipeline.FormatJSON)
			return c.runAnnotate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), svg (comma-separated)")
	cmd.Flags().StringVar(&opts.scheme, "scheme", "", "TOML color scheme file")
	cmd.Flags().Float64Var(&opts.trackWidth, "track-width", opts.trackWidth, "sequence-map track width in pixels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached annotation results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the run to history")
	cmd.Flags().StringVar(&opts.name, "name", "", "run name used with --save")
	cmd.Flags().StringVar(&opts.historyDir, "history-dir", "", "history directory (default ~/.config/chainview/history)")

	return cmd
}

func (c *CLI) runAnnotate(ctx context.Context, input string, opts *annotateOpts) error {
	payload, err := readInput(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMalformedInput, err, "read payload %s", input)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	p := newProgress(c.Logger)
	result, err := runner.Execute(ctx, payload, pipeline.Options{
		Formats:    opts.formats,
		SchemePath: opts.scheme,
		TrackWidth: opts.trackWidth,
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Normalized %d sequences", result.Stats.SequenceCount))

	for _, failure := range result.Failures {
		printWarning("skipped %s: %s", failure.Name, failure.Reason)
	}

	if err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input); err != nil {
		return err
	}

	printSuccess("Annotated %s", displayName(input))
	printStats(result.Stats.SequenceCount, result.Stats.ChainCount, result.Stats.RegionCount, result.CacheInfo.AnnotationHit)

	if opts.save {
		run, err := c.saveRun(ctx, opts, result)
		if err != nil {
			return err
		}
		printDetail("saved run %s", run.ID)
	}

	return nil
}

func (c *CLI) saveRun(ctx context.Context, opts *annotateOpts, result *pipeline.Result) (history.Run, error) {
	store, err := newHistoryStore(opts.historyDir)
	if err != nil {
		return history.Run{}, err
	}
	defer store.Close(ctx)

	name := opts.name
	if name == "" {
		name = "run"
	}
	run := history.NewRun(name, "", "", history.Result{
		Sequences: result.Sequences,
		Failures:  result.Failures,
	})
	if err := store.Save(ctx, run); err != nil {
		return history.Run{}, err
	}
	return run, nil
}

// writeArtifacts writes each rendered format to its output file. With a
// single format the output flag names the file directly; with multiple
// formats it is treated as a base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) error {
	base := artifactBase(output, input)
	for _, format := range formats {
		path := output
		if path == "" || len(formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// artifactBase derives the base output path from the output and input paths.
func artifactBase(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if input == "-" {
		return "chainview"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

func displayName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return filepath.Base(input)
}
