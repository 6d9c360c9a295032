// Package history stores run summaries in a SQL database through gorm.
//
// Store implements reconcile.RunReporter: every finished run becomes one
// RunRecord row with the headline totals in columns and the full summary as
// JSON. The runs API reads the history back with List and Get.
package history
