package aggregates

import (
	"time"

	"idadmin/domain/events"
)

// Aggregate names used on persisted events and conflict reports
const (
	UserAggregateName      = "user"
	UserGroupAggregateName = "user_group"
)

// Base carries the identity, optimistic-concurrency token, audit metadata and
// pending-events buffer shared by every aggregate. One instance is owned
// exclusively by the handler invocation that loaded or created it; aggregates
// are never shared across concurrent requests in memory.
type Base struct {
	id             string
	name           string
	version        int
	createdAt      time.Time
	createdBy      string
	lastModifiedAt time.Time
	lastModifiedBy string
	pending        []events.Event
}

func newBase(id, name, createdBy string) Base {
	return Base{
		id:        id,
		name:      name,
		version:   0,
		createdAt: time.Now().UTC(),
		createdBy: createdBy,
	}
}

func rehydrateBase(id, name string, version int, createdAt time.Time, createdBy string, lastModifiedAt time.Time, lastModifiedBy string) Base {
	return Base{
		id:             id,
		name:           name,
		version:        version,
		createdAt:      createdAt,
		createdBy:      createdBy,
		lastModifiedAt: lastModifiedAt,
		lastModifiedBy: lastModifiedBy,
	}
}

// ID returns the immutable aggregate identifier
func (b *Base) ID() string { return b.id }

// AggregateName returns the logical entity type name
func (b *Base) AggregateName() string { return b.name }

// Version returns the optimistic-concurrency token. It starts at 0 and is
// advanced by the repository after each successful persisted update.
func (b *Base) Version() int { return b.version }

// CreatedAt returns the creation timestamp
func (b *Base) CreatedAt() time.Time { return b.createdAt }

// CreatedBy returns the creating operator, empty for system-created aggregates
func (b *Base) CreatedBy() string { return b.createdBy }

// LastModifiedAt returns the last modification timestamp, zero until the
// first update
func (b *Base) LastModifiedAt() time.Time { return b.lastModifiedAt }

// LastModifiedBy returns the last modifying operator, empty until the first
// update
func (b *Base) LastModifiedBy() string { return b.lastModifiedBy }

// recordEvent appends to the pending buffer. It is the only way events are
// produced and never touches version or timestamps; the repository owns those.
func (b *Base) recordEvent(kind events.Kind, data map[string]interface{}) {
	b.pending = append(b.pending, events.New(b.id, b.name, kind, data))
}

// Events returns a copy of the pending-events buffer
func (b *Base) Events() []events.Event {
	out := make([]events.Event, len(b.pending))
	copy(out, b.pending)
	return out
}

// ClearEvents empties the pending-events buffer
func (b *Base) ClearEvents() {
	b.pending = nil
}

// PrepareUpdate stamps the modifier metadata prior to an update-save.
// Calling convention: a handler mutating an existing aggregate must call this
// before Save. The repository does not guard against a missing call; the
// split lets the stamped operator differ from the saver.
func (b *Base) PrepareUpdate(operatorID string) {
	b.lastModifiedBy = operatorID
	b.lastModifiedAt = time.Now().UTC()
}

// AdvanceVersion moves the in-memory token forward after a successful
// persisted update. Called by repositories only.
func (b *Base) AdvanceVersion() {
	b.version++
}
