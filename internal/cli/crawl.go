package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/covercluster/pkg/covers"
	"github.com/matzehuels/covercluster/pkg/crawl"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/integrations/spotify"
	"github.com/matzehuels/covercluster/pkg/session"
)

// crawlCommand creates the crawl command.
func (c *CLI) crawlCommand() *cobra.Command {
	var (
		indexFile string
		coversDir string
		workers   int
		noCache   bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "crawl [playlist...]",
		Short: "Build the index and download covers from playlists",
		Long: `Crawl reads every track of the given playlists, counts songs per album and
per artist, writes the index file and downloads each album cover once.

Playlists may be ids, spotify:playlist: URIs or playlist URLs. Without
arguments the playlists from the config file are used. Credentials are read
from SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET.`,
		Example: `  covercluster crawl 3vgCWrOBB1CCYzdNhHqQWh
  covercluster crawl https://open.spotify.com/playlist/3vgCWrOBB1CCYzdNhHqQWh --refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			playlists := args
			if len(playlists) == 0 {
				playlists = c.Config.Spotify.Playlists
			}
			if len(playlists) == 0 {
				return fmt.Errorf("no playlists given and none configured")
			}
			if !cmd.Flags().Changed("index") {
				indexFile = c.Config.Paths.Index
			}
			if !cmd.Flags().Changed("covers") {
				coversDir = c.Config.Paths.Covers
			}

			httpCache, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer httpCache.Close()

			sessions, err := session.NewFileStore("")
			if err != nil {
				logger.Warn("token store unavailable", "error", err)
			}
			cfg := spotify.Config{
				ClientID:     c.Config.Spotify.ClientID,
				ClientSecret: c.Config.Spotify.ClientSecret,
				Cache:        httpCache,
			}
			if sessions != nil {
				if err := sessions.Cleanup(ctx); err != nil {
					logger.Debug("token cleanup failed", "error", err)
				}
				cfg.Sessions = sessions
			}
			client, err := spotify.NewClient(cfg)
			if err != nil {
				return err
			}

			crawler := &crawl.Crawler{
				Catalog: client,
				Covers:  covers.NewDir(coversDir),
				Logger:  logger,
				Workers: workers,
				Refresh: refresh,
			}

			spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Crawling %d playlists...", len(playlists)))
			spin.Start()
			res, err := crawler.Crawl(ctx, playlists)
			spin.Stop()
			if err != nil {
				return err
			}

			if err := index.WriteFile(indexFile, res.Index); err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout())
			out.success("Crawled %d songs", res.Songs)
			out.crawlStats(len(res.Index.Albums), res.Downloaded, res.Skipped, len(res.Failed))
			for _, name := range res.Failed {
				out.warning("no cover for %s", name)
			}
			out.file(indexFile)
			out.file(coversDir)
			out.nextStep("Render the cluster", "covercluster build -i "+indexFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexFile, "index", "i", "", "index file to write (default from config, index.txt)")
	cmd.Flags().StringVar(&coversDir, "covers", "", "cover directory (default from config, covers)")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent cover downloads")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the API response cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch playlists and covers")

	return cmd
}
