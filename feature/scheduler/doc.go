// Package scheduler triggers a scheduled run once a day.
//
// The daemon wakes at scheduler.run_at (HH:MM) in scheduler.timezone and calls
// its trigger, which starts a run limited to the collections due that day.
package scheduler
