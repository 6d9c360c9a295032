// Package runs starts reconciliation runs and exposes them over HTTP.
//
// Runner turns a trigger (CLI flags, API body or the scheduler) into a
// reconcile.RunRequest by selecting libraries and collections from the
// definitions file, and keeps track of the current and last run. Handler serves
// the health check, run status, run history and the POST /runs trigger.
package runs
