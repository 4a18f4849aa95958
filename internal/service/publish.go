package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/events"
)

// fillEvent assigns an id and timestamp when the publisher left them unset.
func fillEvent(event *events.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
}
