// Package audit records subscriber provisioning changes. Every mutation of
// the subscriber store emits one event; operators replay the topic to answer
// "who changed what, when" for the live network.
package audit

import "time"

// Action identifies what happened to a subscriber record.
type Action string

const (
	ActionSubscriberCreated  Action = "subscriber_created"
	ActionSubscriberReplaced Action = "subscriber_replaced"
	ActionSubscriberDeleted  Action = "subscriber_deleted"
)

// Event is emitted from the subscriber service on successful mutations.
// Keep it transport-agnostic so publishers can fan out.
type Event struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	IMSI       string    `json:"imsi"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
