package app

import (
	"time"

	"savings/internal/core"
)

type deletedGoal struct {
	goal      core.Goal
	removedAt time.Time
}

// undoBuffer keeps recently deleted goals for a fixed window. It is not
// safe for concurrent use; the controller guards it with its own mutex.
type undoBuffer struct {
	window  time.Duration
	entries []deletedGoal
}

func newUndoBuffer(window time.Duration) *undoBuffer {
	return &undoBuffer{window: window}
}

func (b *undoBuffer) push(g core.Goal, now time.Time) {
	b.entries = append(b.entries, deletedGoal{goal: g, removedAt: now})
}

func (b *undoBuffer) expired(e deletedGoal, now time.Time) bool {
	return now.Sub(e.removedAt) >= b.window
}

// prune drops entries older than the window and reports how many went.
func (b *undoBuffer) prune(now time.Time) int {
	kept := b.entries[:0]
	for _, e := range b.entries {
		if !b.expired(e, now) {
			kept = append(kept, e)
		}
	}
	removed := len(b.entries) - len(kept)
	for i := len(kept); i < len(b.entries); i++ {
		b.entries[i] = deletedGoal{}
	}
	b.entries = kept
	return removed
}

// pop removes and returns the most recent entry still inside the window.
func (b *undoBuffer) pop(now time.Time) (core.Goal, bool) {
	b.prune(now)
	if len(b.entries) == 0 {
		return core.Goal{}, false
	}
	last := b.entries[len(b.entries)-1]
	b.entries = b.entries[:len(b.entries)-1]
	return last.goal, true
}

func (b *undoBuffer) available(now time.Time) bool {
	for _, e := range b.entries {
		if !b.expired(e, now) {
			return true
		}
	}
	return false
}

func (b *undoBuffer) size() int { return len(b.entries) }
