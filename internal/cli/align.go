package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmonheim/chainview/pkg/alignment"
	"github.com/tmonheim/chainview/pkg/errors"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

// alignOpts holds the command-line flags for the align command.
type alignOpts struct {
	formats      []string // output formats: "text", "svg", "json"
	output       string   // output file, empty writes text to stdout
	lineWidth    int      // residues per display line
	queryStart   int      // ungapped start position of the query
	subjectStart int      // ungapped start position of the subject
	boundaries   string   // JSON file with region boundaries to overlay
	noCache      bool     // disable the cache
}

// alignCommand creates the align command. It classifies a gapped pairwise
// alignment and renders it as wrapped display lines.
func (c *CLI) alignCommand() *cobra.Command {
	var formatsStr string
	opts := alignOpts{
		lineWidth:    pipeline.DefaultLineWidth,
		queryStart:   1,
		subjectStart: 1,
	}

	cmd := &cobra.Command{
		Use:   "align QUERY SUBJECT",
		Short: "Display a pairwise alignment",
		Long:  `Align takes two gapped sequences of equal length, classifies each column as match, mismatch, or gap, and renders the alignment wrapped to a fixed line width. Region boundaries given in ungapped query coordinates are projected onto the display lines.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, pipeline.FormatText)
			return c.runAlign(cmd.Context(), args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), svg, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout for text)")
	cmd.Flags().IntVar(&opts.lineWidth, "line-width", opts.lineWidth, "residues per display line")
	cmd.Flags().IntVar(&opts.queryStart, "query-start", opts.queryStart, "ungapped start position of the query")
	cmd.Flags().IntVar(&opts.subjectStart, "subject-start", opts.subjectStart, "ungapped start position of the subject")
	cmd.Flags().StringVar(&opts.boundaries, "boundaries", "", "JSON file with region boundaries to overlay")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runAlign(ctx context.Context, query, subject string, opts *alignOpts) error {
	boundaries, err := loadBoundaries(opts.boundaries)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.ExecuteAlign(ctx, pipeline.AlignInput{
		Query:        query,
		Subject:      subject,
		QueryStart:   opts.queryStart,
		SubjectStart: opts.subjectStart,
		Boundaries:   boundaries,
	}, pipeline.Options{
		Formats:   opts.formats,
		LineWidth: opts.lineWidth,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	// Text to stdout unless an output file is named.
	if opts.output == "" && len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatText {
		fmt.Print(string(result.Artifacts[pipeline.FormatText]))
		return nil
	}

	base := opts.output
	if base == "" {
		base = "alignment"
	}
	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = artifactBase(base, "-") + "." + format
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Aligned %d lines", len(result.Lines))
	return nil
}

// loadBoundaries reads region boundaries from a JSON file. The file holds an
// array of objects with type, start, end, and label fields in ungapped query
// coordinates.
func loadBoundaries(path string) ([]alignment.Boundary, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read boundaries %s", path)
	}
	var boundaries []alignment.Boundary
	if err := json.Unmarshal(data, &boundaries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "parse boundaries %s", path)
	}
	return boundaries, nil
}
