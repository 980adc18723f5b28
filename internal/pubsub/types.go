package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventNotifyInvitation carries a notification for the participants of
	// an event or matchmaking request.
	EventNotifyInvitation EventType = "notify-invitation"
)
