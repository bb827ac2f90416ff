package chat

import (
	"context"
	"sync"
)

// ticketLock is a FIFO mutex: holders are served in the order they took a ticket.
// A waiter whose context ends gives its ticket up and release skips over it.
type ticketLock struct {
	mu        sync.Mutex
	cond      *sync.Cond
	next      uint64
	serving   uint64
	abandoned map[uint64]struct{}
}

func newTicketLock() *ticketLock {
	l := &ticketLock{abandoned: make(map[uint64]struct{})}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// take reserves a place in the queue without blocking.
func (l *ticketLock) take() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.next
	l.next++
	return t
}

// wait blocks until the ticket is being served or ctx ends. On error the
// ticket is abandoned and the caller must not release.
func (l *ticketLock) wait(ctx context.Context, ticket uint64) error {
	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	defer stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	for l.serving != ticket {
		if err := ctx.Err(); err != nil {
			l.abandoned[ticket] = struct{}{}
			return err
		}
		l.cond.Wait()
	}
	return nil
}

func (l *ticketLock) release() {
	l.mu.Lock()
	l.serving++
	for {
		if _, ok := l.abandoned[l.serving]; !ok {
			break
		}
		delete(l.abandoned, l.serving)
		l.serving++
	}
	l.cond.Broadcast()
	l.mu.Unlock()
}

// pending counts the holder plus every live waiter.
func (l *ticketLock) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.next-l.serving) - len(l.abandoned)
}
