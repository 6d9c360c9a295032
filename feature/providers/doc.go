// Package providers turns collection definitions into ranked desired items.
//
// TMDbClient and TraktClient read the trending, popular and chart feeds. Source
// implements reconcile.DesiredItemSource: it concatenates the static items and the
// configured feeds of a collection in a fixed order, drops duplicates, applies the
// filters and the limit, and numbers the survivors to give each its SourceRank.
package providers
