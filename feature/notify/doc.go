// Package notify posts run notifications to Discord webhooks.
//
// Discord implements reconcile.RunReporter and reconcile.RunStartReporter. Each
// event (run start, run end, collection changes, errors) can go to its own
// webhook; events without one fall back to the default webhook, and events with
// no webhook at all are dropped.
package notify
