package watcher

import (
	"sync"
	"time"
)

// Op is the kind of a coalesced filesystem event.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// Event is a debounced filesystem event for one path.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Coalescer debounces bursts of events per path. Editors save by writing a
// temp file and renaming it over the original, so a remove followed by a
// create inside the window is reported as a single write.
type Coalescer struct {
	debounce    time.Duration
	removeGrace time.Duration

	mu      sync.Mutex
	pending map[string]*pending
	events  chan Event
	stopped bool
}

type pending struct {
	event Event
	timer *time.Timer
}

// NewCoalescer creates a Coalescer. Removes wait removeGrace so that a
// replacing create can cancel them.
func NewCoalescer(debounce, removeGrace time.Duration) *Coalescer {
	return &Coalescer{
		debounce:    debounce,
		removeGrace: removeGrace,
		pending:     make(map[string]*pending),
		events:      make(chan Event, 64),
	}
}

// Add queues an event, merging it with any pending event for the same path.
func (c *Coalescer) Add(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	path := ev.Path
	if p, ok := c.pending[path]; ok {
		p.timer.Stop()
		if p.event.Op == OpCreate && ev.Op == OpRemove {
			delete(c.pending, path)
			return
		}
		p.event = merge(p.event, ev)
		p.timer = time.AfterFunc(c.delay(p.event.Op), func() { c.emit(path) })
		return
	}

	p := &pending{event: ev}
	p.timer = time.AfterFunc(c.delay(ev.Op), func() { c.emit(path) })
	c.pending[path] = p
}

// Events returns the channel of coalesced events. It is closed by Stop.
func (c *Coalescer) Events() <-chan Event {
	return c.events
}

// Stop discards pending events and closes the events channel.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	for path, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, path)
	}
	close(c.events)
	c.mu.Unlock()
}

// Pending returns the number of queued paths.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coalescer) emit(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[path]
	if !ok || c.stopped {
		return
	}
	delete(c.pending, path)

	select {
	case c.events <- p.event:
	default:
		// Reader is behind; a later event for the path will follow.
	}
}

func merge(old, ev Event) Event {
	switch {
	case old.Op == OpCreate && ev.Op == OpWrite:
		return Event{Path: ev.Path, Op: OpCreate, Time: ev.Time}
	case old.Op == OpRemove && ev.Op == OpCreate:
		return Event{Path: ev.Path, Op: OpWrite, Time: ev.Time}
	default:
		return ev
	}
}

func (c *Coalescer) delay(op Op) time.Duration {
	if op == OpRemove {
		return c.removeGrace
	}
	return c.debounce
}
