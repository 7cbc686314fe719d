// Package crawl builds a song index and a cover directory from catalog
// playlists.
//
// The crawler walks every track of the given playlists, counts songs per
// album and per artist and downloads each album's cover once. Covers already
// on disk are kept unless a refresh is requested. A failed download is
// logged and skipped; the album still counts in the index and is excluded
// later when the cluster is built.
package crawl

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/covercluster/pkg/covers"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/integrations"
)

// DefaultWorkers bounds concurrent cover downloads.
const DefaultWorkers = 4

// Catalog is the part of a music catalog client the crawler needs.
// [spotify.Client] implements it.
//
// [spotify.Client]: github.com/matzehuels/covercluster/pkg/integrations/spotify.Client
type Catalog interface {
	PlaylistTracks(ctx context.Context, playlistID string, refresh bool) ([]integrations.Track, error)
	AlbumCoverURL(ctx context.Context, albumID string, refresh bool) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Crawler fetches playlists and stores album covers.
type Crawler struct {
	Catalog Catalog
	Covers  covers.Dir
	Logger  *log.Logger
	// Workers bounds concurrent downloads. Defaults to [DefaultWorkers].
	Workers int
	// Refresh bypasses cached catalog responses and re-downloads covers
	// that already exist.
	Refresh bool
}

// Result summarizes a crawl.
type Result struct {
	Index      index.Index
	Songs      int
	Downloaded int
	Skipped    int
	// Failed lists the albums whose cover could not be downloaded.
	Failed []string
}

// album is a unique album seen during the crawl.
type album struct {
	id   string
	name string
}

// Crawl reads every playlist and downloads the covers of the albums found.
// Playlist references may be bare ids, spotify:playlist: URIs or playlist
// URLs. A playlist that cannot be read fails the crawl.
func (c *Crawler) Crawl(ctx context.Context, playlists []string) (*Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	ids := make([]string, len(playlists))
	for i, ref := range playlists {
		id, err := errs.ValidatePlaylistID(ref)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}

	var (
		res    Result
		albums []album
		seen   = map[string]bool{}
		counts = newCounter()
	)
	for _, id := range ids {
		tracks, err := c.Catalog.PlaylistTracks(ctx, id, c.Refresh)
		if err != nil {
			return nil, errs.Wrap(errorCode(err), err, "read playlist %s", id)
		}
		logger.Info("read playlist", "id", id, "tracks", len(tracks))

		for _, t := range tracks {
			res.Songs++
			counts.album(t.Album)
			for _, a := range t.Artists {
				counts.artist(a)
			}
			if !seen[t.Album] {
				seen[t.Album] = true
				albums = append(albums, album{id: t.AlbumID, name: t.Album})
			}
		}
	}

	res.Index = counts.index(res.Songs)
	if err := c.download(ctx, logger, albums, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Crawler) download(ctx context.Context, logger *log.Logger, albums []album, res *Result) error {
	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var downloaded, skipped atomic.Int32
	failed := make([]bool, len(albums))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, a := range albums {
		g.Go(func() error {
			if !c.Refresh && c.Covers.Exists(a.name) {
				skipped.Add(1)
				return nil
			}
			path, err := c.fetchCover(gctx, a)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("cover download failed", "album", a.name, "reason", err)
				failed[i] = true
				return nil
			}
			downloaded.Add(1)
			logger.Debug("saved cover", "album", a.name, "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, a := range albums {
		if failed[i] {
			res.Failed = append(res.Failed, a.name)
		}
	}
	res.Downloaded = int(downloaded.Load())
	res.Skipped = int(skipped.Load())
	return nil
}

func (c *Crawler) fetchCover(ctx context.Context, a album) (string, error) {
	url, err := c.Catalog.AlbumCoverURL(ctx, a.id, c.Refresh)
	if err != nil {
		return "", err
	}
	data, err := c.Catalog.Download(ctx, url)
	if err != nil {
		return "", err
	}
	return c.Covers.Save(a.name, data)
}

// errorCode classifies a catalog error.
func errorCode(err error) errs.Code {
	if code := errs.GetCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return errs.ErrCodeNotFound
	case errors.Is(err, integrations.ErrUnauthorized):
		return errs.ErrCodeUnauthorized
	}
	return errs.ErrCodeNetwork
}

// counter accumulates song counts in first-seen order.
type counter struct {
	albums, artists []index.Entry
	albumPos        map[string]int
	artistPos       map[string]int
}

func newCounter() *counter {
	return &counter{albumPos: map[string]int{}, artistPos: map[string]int{}}
}

func (c *counter) album(name string)  { c.albums = bump(c.albums, c.albumPos, name) }
func (c *counter) artist(name string) { c.artists = bump(c.artists, c.artistPos, name) }

func bump(entries []index.Entry, pos map[string]int, name string) []index.Entry {
	if i, ok := pos[name]; ok {
		entries[i].Songs++
		return entries
	}
	pos[name] = len(entries)
	return append(entries, index.Entry{Name: name, Songs: 1})
}

func (c *counter) index(songs int) index.Index {
	return index.Index{Albums: c.albums, Artists: c.artists, Total: songs, HasTotal: true}
}
