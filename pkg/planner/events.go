package planner

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

type EventKind uint8

const (
	NODE_CHANGED EventKind = iota
	MOVE
	PATH_CHANGED
	FULL_UPDATE
)

func (k EventKind) String() string {
	switch k {
	case NODE_CHANGED:
		return "node_changed"
	case MOVE:
		return "move"
	case PATH_CHANGED:
		return "path_changed"
	case FULL_UPDATE:
		return "full_update"
	default:
		return "unknown"
	}
}

// Event is one observable planner mutation. Node is set for NODE_CHANGED, From and To for MOVE.
type Event struct {
	Kind EventKind
	Node da.Index
	From da.Index
	To   da.Index
}

func (e Event) String() string {
	switch e.Kind {
	case NODE_CHANGED:
		return fmt.Sprintf("%v(%d)", e.Kind, e.Node)
	case MOVE:
		return fmt.Sprintf("%v(%d, %d)", e.Kind, e.From, e.To)
	default:
		return e.Kind.String()
	}
}

type subscriber struct {
	seq uint64
	fn  func(Event)
}

// EventBus fans planner events out to subscribers. Publish calls every subscriber synchronously
// on the publishing goroutine, in subscription order, so subscribers must not block.
type EventBus struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]subscriber
	seq  uint64
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[uuid.UUID]subscriber)}
}

// Subscribe registers fn and returns the id to unsubscribe with.
func (b *EventBus) Subscribe(fn func(Event)) uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.seq++
	b.subs[id] = subscriber{seq: b.seq, fn: fn}
	return id
}

func (b *EventBus) Unsubscribe(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[id]
	delete(b.subs, id)
	return ok
}

func (b *EventBus) NumSubscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers events in order to every subscriber.
func (b *EventBus) Publish(events ...Event) {
	if b == nil || len(events) == 0 {
		return
	}
	b.mu.RLock()
	subs := make([]subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.RUnlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })

	for _, s := range subs {
		for _, e := range events {
			s.fn(e)
		}
	}
}
