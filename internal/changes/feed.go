// Package changes delivers change notifications for stored collections to
// live observers.
package changes

import (
	"sync"
	"time"
)

// Collection names a stored collection observers can watch.
type Collection string

const (
	WorkEntries Collection = "workEntries"
	PaidBlocks  Collection = "paidBlocks"
)

// Event reports that one or more collections changed.
type Event struct {
	Collections []Collection
	At          time.Time
}

// Has reports whether c is among the changed collections.
func (e Event) Has(c Collection) bool {
	for _, x := range e.Collections {
		if x == c {
			return true
		}
	}
	return false
}

// Feed fans change events out to subscribers. The zero value is ready to use.
type Feed struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription receives events for the collections it was created with.
// At most one event is pending per subscription; while one is pending further
// events are dropped, so receivers should re-read state rather than count
// events.
type Subscription struct {
	C <-chan Event

	c     chan Event
	cols  map[Collection]bool
	feed  *Feed
	close sync.Once
}

// Subscribe registers a subscription for cols, or for every collection when
// cols is empty.
func (f *Feed) Subscribe(cols ...Collection) *Subscription {
	c := make(chan Event, 1)
	s := &Subscription{C: c, c: c, feed: f}
	if len(cols) > 0 {
		s.cols = make(map[Collection]bool, len(cols))
		for _, col := range cols {
			s.cols[col] = true
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[*Subscription]struct{})
	}
	f.subs[s] = struct{}{}
	return s
}

// Publish notifies subscribers watching any of cols. It never blocks.
func (f *Feed) Publish(cols ...Collection) {
	if len(cols) == 0 {
		return
	}
	ev := Event{Collections: cols, At: time.Now()}

	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		if !s.wants(cols) {
			continue
		}
		select {
		case s.c <- ev:
		default:
		}
	}
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.close.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
		close(s.c)
	})
}

func (s *Subscription) wants(cols []Collection) bool {
	if s.cols == nil {
		return true
	}
	for _, c := range cols {
		if s.cols[c] {
			return true
		}
	}
	return false
}
