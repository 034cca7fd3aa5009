package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmonheim/chainview/internal/api"
	"github.com/tmonheim/chainview/pkg/cache"
	"github.com/tmonheim/chainview/pkg/history"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string // listen address
	redisAddr  string // redis cache backend, empty uses the file cache
	mongoURI   string // mongo history backend, empty uses the file store
	mongoDB    string // mongo database name
	historyDir string // file store directory
	noCache    bool   // disable the cache
}

// serveCommand creates the serve command, running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:    ":8080",
		mongoDB: appName,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  `Serve exposes annotation, alignment, and run history over HTTP. By default it uses the local file cache and file-backed history; pass --redis and --mongo-uri for shared deployments.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for the shared cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "mongodb URI for the shared run store")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "mongodb database name")
	cmd.Flags().StringVar(&opts.historyDir, "history-dir", "", "history directory when not using mongo")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	store, err := c.newServeStore(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	runner, err := c.newServeRunner(ctx, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, store, c.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	c.Logger.Info("listening", "addr", opts.addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

func (c *CLI) newServeRunner(ctx context.Context, opts *serveOpts) (*pipeline.Runner, error) {
	if opts.redisAddr == "" {
		return c.newRunner(opts.noCache)
	}
	redisCache, err := cache.NewRedisCache(ctx, opts.redisAddr)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(redisCache, nil, c.Logger), nil
}

func (c *CLI) newServeStore(ctx context.Context, opts *serveOpts) (history.Store, error) {
	if opts.mongoURI != "" {
		return history.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
	}
	return newHistoryStore(opts.historyDir)
}
