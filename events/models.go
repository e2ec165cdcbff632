package events

import (
	"time"

	"github.com/goliatone/go-access/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LogEntry models the persisted row in access_events.
type LogEntry struct {
	bun.BaseModel `bun:"table:access_events"`

	ID         uuid.UUID `bun:",pk,type:uuid"`
	Type       string    `bun:"type,notnull"`
	Role       string    `bun:"role,notnull"`
	Account    string    `bun:"account,notnull"`
	OccurredAt time.Time `bun:"occurred_at,notnull"`
}

// Record is the read model returned by ListEvents.
type Record struct {
	ID         uuid.UUID
	Event      types.Event
	OccurredAt time.Time
}
