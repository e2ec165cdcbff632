package store

import (
	"context"

	"github.com/goliatone/go-access/pkg/types"
)

type pendingWrite struct {
	key     types.Key
	value   []byte
	deleted bool
}

// overlay buffers writes on top of a base store so a transaction reads its
// own writes and the backend can apply them in one step.
type overlay struct {
	base   types.Store
	writes map[string]pendingWrite
	order  []string
}

func newOverlay(base types.Store) *overlay {
	return &overlay{
		base:   base,
		writes: make(map[string]pendingWrite),
	}
}

var _ types.Store = (*overlay)(nil)

func (o *overlay) Has(ctx context.Context, key types.Key) (bool, error) {
	if w, ok := o.writes[key.String()]; ok {
		return !w.deleted, nil
	}
	return o.base.Has(ctx, key)
}

func (o *overlay) Get(ctx context.Context, key types.Key) ([]byte, error) {
	if w, ok := o.writes[key.String()]; ok {
		if w.deleted {
			return nil, types.ErrKeyNotFound
		}
		return cloneBytes(w.value), nil
	}
	return o.base.Get(ctx, key)
}

func (o *overlay) Set(_ context.Context, key types.Key, value []byte) error {
	o.record(pendingWrite{key: key, value: cloneBytes(value)})
	return nil
}

func (o *overlay) Remove(_ context.Context, key types.Key) error {
	o.record(pendingWrite{key: key, deleted: true})
	return nil
}

func (o *overlay) record(w pendingWrite) {
	id := w.key.String()
	if _, ok := o.writes[id]; !ok {
		o.order = append(o.order, id)
	}
	o.writes[id] = w
}

// changes returns the final write per key in first-touch order.
func (o *overlay) changes() []pendingWrite {
	out := make([]pendingWrite, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.writes[id])
	}
	return out
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
