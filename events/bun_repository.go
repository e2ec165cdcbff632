package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-access/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed event log.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type eventStore interface {
	repository.Repository[*LogEntry]
}

// Repository persists role change events as an audit trail.
type Repository struct {
	eventStore
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the event log. Either DB or Repository must be set.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("events: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Repository{
		eventStore: repo,
		clock:      clock,
		idGen:      idGen,
	}, nil
}

var _ types.EventSink = (*Repository)(nil)

// Publish appends the event to access_events.
func (r *Repository) Publish(ctx context.Context, event types.Event) error {
	if event == nil {
		return nil
	}
	role, account := event.Subject()
	entry := &LogEntry{
		ID:         r.idGen.UUID(),
		Type:       string(event.Type()),
		Role:       string(role),
		Account:    string(account),
		OccurredAt: r.clock.Now(),
	}
	_, err := r.Create(ctx, entry)
	return err
}

// ListEvents returns up to limit events, newest first.
func (r *Repository) ListEvents(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("occurred_at DESC").Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		event, err := toEvent(row)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			ID:         row.ID,
			Event:      event,
			OccurredAt: row.OccurredAt,
		})
	}
	return records, nil
}

func toEvent(entry *LogEntry) (types.Event, error) {
	role, account := types.Role(entry.Role), types.Account(entry.Account)
	switch types.EventType(entry.Type) {
	case types.EventTypeRoleGranted:
		return types.RoleGranted{Role: role, Account: account}, nil
	case types.EventTypeRoleRevoked:
		return types.RoleRevoked{Role: role, Account: account}, nil
	default:
		return nil, fmt.Errorf("events: unknown event type %q", entry.Type)
	}
}
