package providers

import (
	"collection-manager/core/reconcile"
	"collection-manager/core/utils"
)

// Item is a title returned by a provider feed, with the metadata filters need.
type Item struct {
	Title       string
	Year        int
	IDs         map[string]string
	VoteAverage float64
	VoteCount   int
	Countries   []string
	Source      string
}

func (i Item) desired(rank int) reconcile.DesiredItem {
	return reconcile.DesiredItem{
		ExternalIDs: i.IDs,
		Title:       i.Title,
		Year:        i.Year,
		SourceRank:  rank,
		Source:      i.Source,
	}
}

// ids builds the provider id map, skipping zero numeric ids and empty strings.
func ids(tmdb, tvdb int, imdb string) map[string]string {
	out := make(map[string]string, 3)
	if tmdb > 0 {
		out[reconcile.NamespaceTMDb] = utils.ToString(tmdb)
	}
	if tvdb > 0 {
		out[reconcile.NamespaceTVDb] = utils.ToString(tvdb)
	}
	if imdb != "" {
		out[reconcile.NamespaceIMDb] = imdb
	}
	return out
}
