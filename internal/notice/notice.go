package notice

import (
	"sync"
	"time"

	"github.com/fjod/forgeline/internal/timer"
)

type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

// DismissAfter is how long a notice stays visible.
const DismissAfter = 3 * time.Second

type Notice struct {
	ID       uint64    `json:"id"`
	Level    Level     `json:"level"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"posted_at"`
}

// Board holds the transient notices of one session.
type Board struct {
	mu      sync.Mutex
	notices []Notice
	next    uint64
	ttl     time.Duration
	timers  *timer.Group
}

func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DismissAfter
	}
	return &Board{
		ttl:    ttl,
		timers: timer.NewGroup(),
	}
}

// Post shows msg and schedules its dismissal.
func (b *Board) Post(level Level, msg string) Notice {
	b.mu.Lock()
	b.next++
	n := Notice{ID: b.next, Level: level, Message: msg, PostedAt: time.Now()}
	b.notices = append(b.notices, n)
	b.mu.Unlock()

	b.timers.After(b.ttl, func() { b.Dismiss(n.ID) })
	return n
}

func (b *Board) Dismiss(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Active lists visible notices, oldest first.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

// Close cancels pending dismissals. Notices already shown stay in place.
func (b *Board) Close() {
	b.timers.Close()
}
