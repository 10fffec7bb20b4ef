package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   []string
	fail   bool
	closed bool
}

func (c *fakeConn) WriteText(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestRemoveIsIdempotent(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}

	hub.Add(conn)
	assert.Equal(t, 1, hub.Count())

	hub.Remove(conn)
	hub.Remove(conn) // second removal is a no-op
	assert.Equal(t, 0, hub.Count())

	hub.Remove(&fakeConn{}) // unknown handle is a no-op too
	assert.Equal(t, 0, hub.Count())
}

func TestAddSameConnectionTwice(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}

	hub.Add(conn)
	hub.Add(conn)
	assert.Equal(t, 1, hub.Count())
}

func TestBroadcastWithNoConnections(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Broadcast("nobody home") })
}

func TestBroadcastPrunesFailedConnection(t *testing.T) {
	hub := NewHub()

	conns := make([]*fakeConn, 5)
	for i := range conns {
		conns[i] = &fakeConn{}
		hub.Add(conns[i])
	}
	broken := conns[2]
	broken.fail = true

	hub.Broadcast("first")

	assert.Equal(t, 4, hub.Count())
	assert.True(t, broken.closed)
	assert.Empty(t, broken.received())

	hub.Broadcast("second")

	for i, c := range conns {
		if c == broken {
			continue
		}
		assert.Equal(t, []string{"first", "second"}, c.received(), "conn %d", i)
	}
}

func TestBroadcastPrunesNilConnection(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Add(conn)
	hub.Add(nil)

	assert.NotPanics(t, func() { hub.Broadcast("hello") })

	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, []string{"hello"}, conn.received())
}

func TestSnapshotIsIndependent(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Add(a)
	hub.Add(b)

	snap := hub.Snapshot()
	hub.Remove(a)
	hub.Remove(b)

	assert.Len(t, snap, 2)
	assert.Equal(t, 0, hub.Count())
}

func TestConcurrentAddRemoveBroadcast(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &fakeConn{}
			hub.Add(conn)
			hub.Broadcast("ping")
			hub.Remove(conn)
			hub.Remove(conn)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock in concurrent add/remove/broadcast")
	}
	assert.Equal(t, 0, hub.Count())
}

func TestBroadcasterDeliversInOrder(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Add(conn)

	b := NewBroadcaster(hub)
	b.Publish("one")
	b.Publish("two")
	b.Publish("three")
	b.Close()

	assert.Equal(t, []string{"one", "two", "three"}, conn.received())
}

func TestBroadcasterDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	b := &Broadcaster{
		hub:   hub,
		queue: make(chan string, 1),
		done:  make(chan struct{}),
	}
	// no consumer running: the second publish has nowhere to go
	b.Publish("kept")
	assert.NotPanics(t, func() { b.Publish("dropped") })

	go b.loop()
	b.Close()
	assert.Equal(t, 0, hub.Count())
}
