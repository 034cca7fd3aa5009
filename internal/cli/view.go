package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/errors"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	scheme     string // path to a TOML color scheme
	runID      string // load a saved run instead of a payload
	historyDir string // history directory override
	noCache    bool   // disable the cache
}

// viewCommand creates the view command, an interactive terminal browser for
// annotated chains.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [payload.json]",
		Short: "Browse annotated chains interactively",
		Long:  `View opens an interactive terminal browser over the annotated chains of a payload or a saved run. Regions and positions can be toggled in and out of the selection; the sequence panel highlights the selected positions.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runID == "" && len(args) == 0 {
				return errors.New(errors.ErrCodeMalformedInput, "a payload file or --run is required")
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runView(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.scheme, "scheme", "", "TOML color scheme file")
	cmd.Flags().StringVar(&opts.runID, "run", "", "load a saved run by ID")
	cmd.Flags().StringVar(&opts.historyDir, "history-dir", "", "history directory (default ~/.config/chainview/history)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, opts *viewOpts) error {
	models, err := c.loadModels(ctx, input, opts)
	if err != nil {
		return err
	}

	program := tea.NewProgram(NewViewerModel(models), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

func (c *CLI) loadModels(ctx context.Context, input string, opts *viewOpts) ([]annot.SequenceModel, error) {
	if opts.runID != "" {
		store, err := newHistoryStore(opts.historyDir)
		if err != nil {
			return nil, err
		}
		defer store.Close(ctx)
		run, err := store.Get(ctx, opts.runID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRunNotFound, err, "load run %s", opts.runID)
		}
		return run.Result.Sequences, nil
	}

	payload, err := readInput(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read payload %s", input)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, payload, pipeline.Options{
		Formats:    []string{pipeline.FormatJSON},
		SchemePath: opts.scheme,
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, err
	}
	for _, failure := range result.Failures {
		printWarning("skipped %s: %s", failure.Name, failure.Reason)
	}
	return result.Sequences, nil
}
