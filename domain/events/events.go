package events

import (
	"time"
)

// Kind identifies what happened to an aggregate, scoped per aggregate type
type Kind string

// User event kinds
const (
	UserCreated  Kind = "user.created"
	UserUpdated  Kind = "user.updated"
	UserDisabled Kind = "user.disabled"
	UserEnabled  Kind = "user.enabled"
	UserDeleted  Kind = "user.deleted"
)

// UserGroup event kinds
const (
	GroupCreated     Kind = "group.created"
	GroupUpdated     Kind = "group.updated"
	GroupDeleted     Kind = "group.deleted"
	GroupRoleAdded   Kind = "group.role_added"
	GroupRoleRemoved Kind = "group.role_removed"
	GroupUserAdded   Kind = "group.user_added"
	GroupUserRemoved Kind = "group.user_removed"
)

// Event is an immutable record of something that happened to an aggregate.
// Events are recorded by aggregate mutation methods, persisted in the same
// transaction as the owning aggregate's row, and handed to the dispatcher
// after commit. Current state is always read from the aggregate's row; events
// are an audit/integration side channel and are never replayed.
type Event struct {
	AggregateID   string                 `json:"aggregate_id"`
	AggregateName string                 `json:"aggregate_name"`
	Kind          Kind                   `json:"kind"`
	Data          map[string]interface{} `json:"data,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// New creates an event stamped with the current time
func New(aggregateID, aggregateName string, kind Kind, data map[string]interface{}) Event {
	return Event{
		AggregateID:   aggregateID,
		AggregateName: aggregateName,
		Kind:          kind,
		Data:          data,
		OccurredAt:    time.Now().UTC(),
	}
}
