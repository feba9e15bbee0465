// Package messagingtest provides a StatusPublisher that records messages in memory.
package messagingtest

import (
	"context"
	"sync"

	"restaurant-ordering/internal/models"
)

// Recorder keeps every published message. Set Err to make publishing fail.
type Recorder struct {
	mu       sync.Mutex
	messages []models.StatusUpdateMessage
	Err      error
}

func (r *Recorder) PublishStatusUpdate(_ context.Context, msg *models.StatusUpdateMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, *msg)
	return nil
}

// Messages returns a copy of what has been published so far
func (r *Recorder) Messages() []models.StatusUpdateMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.StatusUpdateMessage(nil), r.messages...)
}
