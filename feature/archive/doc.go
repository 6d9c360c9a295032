// Package archive keeps run reports as JSON objects in S3-compatible storage.
//
// Archive implements reconcile.RunReporter. Reports are written under
// <prefix>/reports/<yyyy>/<mm>/<run id>.json; Prune removes reports older than a
// retention window.
package archive
