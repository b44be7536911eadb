package watcher

import (
	"testing"
	"time"
)

func receive(t *testing.T, c *Coalescer, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestCoalescer_SingleEvent(t *testing.T) {
	c := NewCoalescer(50*time.Millisecond, 100*time.Millisecond)
	defer c.Stop()

	c.Add(Event{Path: "/test/notes.md", Op: OpWrite, Time: time.Now()})

	ev, ok := receive(t, c, 300*time.Millisecond)
	if !ok {
		t.Fatal("timeout waiting for event")
	}
	if ev.Path != "/test/notes.md" || ev.Op != OpWrite {
		t.Errorf("event = %+v, want write of /test/notes.md", ev)
	}
}

func TestCoalescer_WriteBurstCoalesced(t *testing.T) {
	c := NewCoalescer(100*time.Millisecond, 200*time.Millisecond)
	defer c.Stop()

	for i := 0; i < 5; i++ {
		c.Add(Event{Path: "/test/notes.md", Op: OpWrite, Time: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	if _, ok := receive(t, c, 400*time.Millisecond); !ok {
		t.Fatal("timeout waiting for event")
	}
	if ev, ok := receive(t, c, 150*time.Millisecond); ok {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestCoalescer_Merge(t *testing.T) {
	tests := []struct {
		name  string
		first Op
		then  Op
		want  Op
	}{
		{"create then write", OpCreate, OpWrite, OpCreate},
		{"remove then create is a replace", OpRemove, OpCreate, OpWrite},
		{"write then remove", OpWrite, OpRemove, OpRemove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCoalescer(30*time.Millisecond, 60*time.Millisecond)
			defer c.Stop()

			c.Add(Event{Path: "/test/a", Op: tt.first, Time: time.Now()})
			time.Sleep(5 * time.Millisecond)
			c.Add(Event{Path: "/test/a", Op: tt.then, Time: time.Now()})

			ev, ok := receive(t, c, 300*time.Millisecond)
			if !ok {
				t.Fatal("timeout waiting for event")
			}
			if ev.Op != tt.want {
				t.Errorf("Op = %v, want %v", ev.Op, tt.want)
			}
		})
	}
}

func TestCoalescer_CreateThenRemoveDropped(t *testing.T) {
	c := NewCoalescer(30*time.Millisecond, 60*time.Millisecond)
	defer c.Stop()

	c.Add(Event{Path: "/test/tmp", Op: OpCreate, Time: time.Now()})
	c.Add(Event{Path: "/test/tmp", Op: OpRemove, Time: time.Now()})

	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
	if ev, ok := receive(t, c, 150*time.Millisecond); ok {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestCoalescer_RemoveGracePeriod(t *testing.T) {
	grace := 150 * time.Millisecond
	c := NewCoalescer(20*time.Millisecond, grace)
	defer c.Stop()

	start := time.Now()
	c.Add(Event{Path: "/test/a", Op: OpRemove, Time: start})

	if _, ok := receive(t, c, 500*time.Millisecond); !ok {
		t.Fatal("timeout waiting for remove event")
	}
	if elapsed := time.Since(start); elapsed < grace-10*time.Millisecond {
		t.Errorf("remove emitted too early: %v < %v", elapsed, grace)
	}
}

func TestCoalescer_Stop(t *testing.T) {
	c := NewCoalescer(time.Second, time.Second)
	c.Add(Event{Path: "/test/a", Op: OpWrite, Time: time.Now()})
	c.Stop()
	c.Stop()

	if _, ok := <-c.Events(); ok {
		t.Error("Events() should be closed after Stop")
	}
	c.Add(Event{Path: "/test/b", Op: OpWrite, Time: time.Now()})
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d after Stop, want 0", c.Pending())
	}
}

func TestOp_String(t *testing.T) {
	for op, want := range map[Op]string{OpCreate: "create", OpWrite: "write", OpRemove: "remove", Op(9): "unknown"} {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}
