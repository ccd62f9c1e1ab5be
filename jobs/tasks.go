// Package jobs hosts the asynq background worker and its task
// definitions.
package jobs

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
)
