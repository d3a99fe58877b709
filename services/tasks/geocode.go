// Package tasks defines the background jobs queued through asynq.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeGeocodeBackfill re-geocodes a listing that was saved with fallback
// coordinates.
const TypeGeocodeBackfill = "geocode:backfill"

// GeocodeBackfillPayload identifies the listing to re-geocode.
type GeocodeBackfillPayload struct {
	ListingID string `json:"listingId"`
}

// NewGeocodeBackfillTask builds the asynq task for a listing.
func NewGeocodeBackfillTask(listingID string) (*asynq.Task, error) {
	b, err := json.Marshal(GeocodeBackfillPayload{ListingID: listingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGeocodeBackfill, b), nil
}

// Enqueuer queues background tasks.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueGeocodeBackfill schedules a listing for background re-geocoding.
func (e *Enqueuer) EnqueueGeocodeBackfill(listingID string) error {
	task, err := NewGeocodeBackfillTask(listingID)
	if err != nil {
		return fmt.Errorf("failed to build geocode backfill task: %w", err)
	}
	if _, err := e.client.Enqueue(task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue geocode backfill for %s: %w", listingID, err)
	}
	return nil
}
