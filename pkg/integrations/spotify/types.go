package spotify

import "github.com/matzehuels/covercluster/pkg/integrations"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type playlistPage struct {
	Items []struct {
		Track *trackResponse `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}

type trackResponse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Album   albumResponse `json:"album"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

type albumResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []image `json:"images"`
}

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (t *trackResponse) toTrack() integrations.Track {
	tr := integrations.Track{
		ID:      t.ID,
		Name:    t.Name,
		AlbumID: t.Album.ID,
		Album:   t.Album.Name,
	}
	for _, a := range t.Artists {
		tr.Artists = append(tr.Artists, a.Name)
	}
	return tr
}
