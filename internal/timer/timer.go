package timer

import (
	"sync"
	"time"
)

// Group tracks delayed tasks so they can be cancelled together when their
// owner goes away.
type Group struct {
	mu     sync.Mutex
	timers map[uint64]*time.Timer
	next   uint64
	closed bool
	wg     sync.WaitGroup
}

func NewGroup() *Group {
	return &Group{timers: make(map[uint64]*time.Timer)}
}

// After runs fn once d has elapsed. The returned func cancels the task and
// reports whether it was still pending. After on a closed group schedules
// nothing.
func (g *Group) After(d time.Duration, fn func()) (cancel func() bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return func() bool { return false }
	}

	g.next++
	id := g.next
	g.wg.Add(1)
	g.timers[id] = time.AfterFunc(d, func() {
		defer g.wg.Done()
		if !g.claim(id) {
			return
		}
		fn()
	})

	return func() bool { return g.cancel(id) }
}

// Pending is the number of tasks that have not fired yet.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

// Close cancels every pending task and waits for running ones. It must not
// be called from inside a task of the same group.
func (g *Group) Close() {
	g.mu.Lock()
	g.closed = true
	for id, t := range g.timers {
		delete(g.timers, id)
		if t.Stop() {
			g.wg.Done()
		}
	}
	g.mu.Unlock()

	g.wg.Wait()
}

func (g *Group) claim(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.timers[id]; !ok {
		return false
	}
	delete(g.timers, id)
	return true
}

func (g *Group) cancel(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.timers[id]
	if !ok {
		return false
	}
	delete(g.timers, id)
	if t.Stop() {
		g.wg.Done()
	}
	return true
}
