// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import "time"

// ChangesQueue is the durable queue resource change events are published to.
const ChangesQueue = "resource.changed"

// ResourceChangedEvent is published after a write on a resource has been
// committed. It carries enough for downstream consumers to audit the change
// without querying the primary database.
type ResourceChangedEvent struct {
    Resource   string    `json:"resource"`    // URL prefix of the resource, e.g. "user"
    Operation  string    `json:"operation"`   // create, update, partial_update or delete
    ID         string    `json:"id"`          // identifier of the affected record
    TokenTitle string    `json:"token_title"` // title of the auth token that made the change
    OccurredAt time.Time `json:"occurred_at"`
}
