package store

import (
	"strings"
	"sync"
)

// Op identifies the kind of change a watch event describes.
type Op int

const (
	// OpPut fires on Create.
	OpPut Op = iota
	// OpDelete fires on Delete.
	OpDelete
)

// Event describes a single committed change to a key in the store.
type Event struct {
	Key string
	Op  Op
}

// subscriber is one registered Watch call: events matching prefix are
// delivered to ch in commit order.
type subscriber struct {
	prefix string
	ch     chan Event
}

// broadcaster fans committed events out to every subscriber whose prefix
// matches, mirroring the teacher-original's sled::Subscriber semantics:
// delivery is commit-ordered and back-pressures the publisher if a
// subscriber's channel is full, by design — a slow watcher stalls further
// commits rather than silently dropping events.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]*subscriber)}
}

// subscribe registers a new watcher for keys under prefix. A subscriber
// registered before publish is called is guaranteed to observe that event;
// registration and fan-out share the same mutex.
func (b *broadcaster) subscribe(prefix string, bufSize int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	sub := &subscriber{prefix: prefix, ch: make(chan Event, bufSize)}
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			close(s.ch)
			delete(b.subs, id)
		}
	}
	return sub.ch, cancel
}

// publish delivers ev to every subscriber whose prefix matches. It holds
// the broadcaster's mutex across the send, so a full subscriber channel
// blocks the publishing goroutine (the commit that produced ev) until the
// subscriber drains it.
func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if strings.HasPrefix(ev.Key, s.prefix) {
			s.ch <- ev
		}
	}
}
