// Package spotify provides an HTTP client for the Spotify Web API.
//
// # Overview
//
// The crawler needs three things from the catalog: the tracks of a
// playlist, the cover art URL of an album and the cover bytes. This package
// fetches them from https://api.spotify.com with caching and retries from
// [integrations.Client].
//
// # Usage
//
//	client, err := spotify.NewClient(spotify.Config{
//	    ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
//	    ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
//	    Sessions:     sessions,
//	    Cache:        backend,
//	})
//
//	tracks, err := client.PlaylistTracks(ctx, "37i9dQZF1DXcBWIGoYBM5M", false)
//	for _, t := range tracks {
//	    fmt.Println(t.Album, t.Name)
//	}
//
// # Authentication
//
// Requests use the client-credentials flow: an application token is
// requested from accounts.spotify.com with the client id and secret and
// kept in a [session.Store] until it expires. A 401 from the API drops the
// stored token and the request is retried once with a fresh one.
//
// [integrations.Client]: github.com/matzehuels/covercluster/pkg/integrations.Client
// [session.Store]: github.com/matzehuels/covercluster/pkg/session.Store
package spotify
