package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventRecordResult carries a finished match result into the engine.
	EventRecordResult EventType = "record-result"
	// EventRatingUpdated is published after a result's deltas were applied.
	EventRatingUpdated EventType = "rating-updated"
)
