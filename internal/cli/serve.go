package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/covercluster/pkg/api"
	"github.com/matzehuels/covercluster/pkg/config"
	"github.com/matzehuels/covercluster/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cluster build API",
		Long: `Serve starts the HTTP API. Clients post an index and receive a stored build
whose image is served under /v1/clusters/{id}/image. Covers are read from the
configured cover directory.

Builds are kept in a local directory or, with server.store = "mongo", in
MongoDB. Layouts and images are cached in the configured cache backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := api.New(api.Config{
				Runner:    runner,
				Store:     st,
				CoversDir: c.Config.Paths.Covers,
				Logger:    logger,
			})
			logger.Info("serving",
				"covers", c.Config.Paths.Covers,
				"store", c.Config.Server.Store,
				"cache", c.Config.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout and render caching")

	return cmd
}

// openStore opens the configured build store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Server
	if cfg.Store == config.StoreMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	}
	dir := cfg.StoreDir
	if dir == "" {
		dir = config.Default().Server.StoreDir
	}
	return store.NewFileStore(dir)
}
