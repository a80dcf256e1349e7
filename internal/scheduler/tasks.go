// Package scheduler runs background work over asynq: the quote expiry sweep
// and the marketplace listing sync.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuoteExpirySweep = "quotes.expiry.sweep"

const TaskListingSync = "listings.sync"

// QuoteExpirySweepPayload is empty today; the sweep is global. Kept as a
// struct so a scope can be added without changing the task name.
type QuoteExpirySweepPayload struct{}

// ListingSyncPayload is empty today; the sync covers all active listings.
type ListingSyncPayload struct{}

func NewQuoteExpirySweepTask() (*asynq.Task, error) {
	data, err := json.Marshal(QuoteExpirySweepPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteExpirySweep, data), nil
}

func NewListingSyncTask() (*asynq.Task, error) {
	data, err := json.Marshal(ListingSyncPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskListingSync, data), nil
}
