package tui

import (
	"sync"

	"github.com/verte-zerg/tuircle/internal/game"
)

// Notices queues game notices until the model renders them.
type Notices struct {
	mu    sync.Mutex
	items []game.Notice
}

// NewNotices returns an empty queue.
func NewNotices() *Notices {
	return &Notices{}
}

// Notify implements game.Notifier.
func (n *Notices) Notify(notice game.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notice)
}

func (n *Notices) drain() []game.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	items := n.items
	n.items = nil
	return items
}
