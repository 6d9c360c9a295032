// Package collections loads the collection definitions file.
//
// The YAML file groups collections by media server library. Each collection names
// its provider feeds (TMDb, Trakt), optional static items, filters, a limit, a
// schedule and whether unmatched titles go to Radarr/Sonarr. The package validates
// the file, selects libraries and collections for a run and converts them into
// reconcile.LibraryTarget values. It also serves GET /collections.
package collections
