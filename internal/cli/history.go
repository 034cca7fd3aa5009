package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmonheim/chainview/pkg/errors"
	"github.com/tmonheim/chainview/pkg/history"
)

// historyCommand creates the history command group for managing saved runs.
func (c *CLI) historyCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved annotation runs",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "history directory (default ~/.config/chainview/history)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryList(cmd.Context(), dir)
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryShow(cmd.Context(), dir, args[0])
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryClear(cmd.Context(), dir)
		},
	}

	cmd.AddCommand(list, show, clear)
	return cmd
}

func (c *CLI) runHistoryList(ctx context.Context, dir string) error {
	store, err := newHistoryStore(dir)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	runs, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printDetail("no saved runs")
		return nil
	}

	for _, run := range runs {
		fmt.Println(StyleValue.Render(run.ID) + "  " + run.Name)
		printDetail("%s · %d sequences · %d chains · %d regions",
			run.Timestamp.Format("2006-01-02 15:04"),
			run.Summary.Sequences, run.Summary.Chains, run.Summary.Regions)
	}
	return nil
}

func (c *CLI) runHistoryShow(ctx context.Context, dir, id string) error {
	store, err := newHistoryStore(dir)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	run, err := store.Get(ctx, id)
	if err == history.ErrNotFound {
		return errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func (c *CLI) runHistoryClear(ctx context.Context, dir string) error {
	store, err := newHistoryStore(dir)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	if err := store.Clear(ctx); err != nil {
		return err
	}
	printSuccess("Cleared run history")
	return nil
}
