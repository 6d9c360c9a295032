// Package reconcile provides the matching and collection reconciliation engine.
//
// A reconciliation run takes the titles a collection should contain (desired items,
// produced by provider feeds and static lists) and a snapshot of the media server
// library, resolves every desired item to a concrete library entry, and computes the
// minimal add/remove diff that turns the collection's current membership into the
// desired one.
//
// # Architecture
//
// The engine consists of four components:
//
// 1. Index: a per-run snapshot index of the library, keyed by provider identifier
// (tmdb, imdb, tvdb) and by normalized title plus year.
//
// 2. Matcher: resolves a desired item through an ordered list of resolvers
// (exact_id, title_year, fuzzy_title). Results are memoized in a MatchCache that
// belongs to exactly one run.
//
// 3. Differ: ComputeDiff derives the add and remove sets from the matched entry ids
// and the current membership.
//
// 4. Engine: drives a run through init, snapshot_loaded, matched, diffed, applied and
// reported, talking to the collaborators declared in adapter.go.
//
// # Cache lifetime
//
// The Index and the MatchCache are created by Engine.Run for every run and dropped
// when it returns. There is no package-level cache: a cache that outlives its run
// hides items added to the library since the previous run.
//
// # Usage Example
//
//	engine, err := reconcile.NewEngine(reconcile.Dependencies{
//	    Library:     jellyfinClient,
//	    Collections: jellyfinClient,
//	    Source:      providerSource,
//	    Reporter:    reconcile.MultiReporter(discord, history),
//	}, reconcile.Options{Match: reconcile.DefaultMatchConfig()}, log)
//
//	summary, err := engine.Run(ctx, reconcile.RunRequest{Libraries: targets})
package reconcile
