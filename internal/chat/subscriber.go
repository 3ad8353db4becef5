package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/ws"
)

// State is the lifecycle of a conversation subscription
type State int

const (
	StateClosed State = iota
	StateSubscribing
	StateActive
)

// Feed is the slice of the hub a subscriber needs: a per-user stream of
// message events plus a release func.
type Feed interface {
	SubscribeLocal(userID string) (<-chan *ws.MessageEvent, func())
}

// Subscriber holds the in-memory message log of one open conversation
// between user U and counterpart C, and keeps it fed from the realtime
// message stream while the conversation is open.
//
// The log is owned exclusively by this subscriber: it is seeded once from
// the history fetch and then mutated only by the feed goroutine. History
// load and subscription activation may race; a message arriving in that
// window can appear twice. There is deliberately no id-based dedup here,
// matching the observed product behavior.
type Subscriber struct {
	userID        string
	counterpartID string
	feed          Feed

	mu     sync.Mutex
	state  State
	log    []*domain.MessageResponse
	closed bool

	cancel func()
	done   chan struct{}

	// notify fires after each accepted append (scroll-to-latest hook).
	// Never fires after Close returns.
	notify func()
}

// NewSubscriber creates a subscriber for the conversation (userID, counterpartID)
func NewSubscriber(feed Feed, userID, counterpartID string) *Subscriber {
	return &Subscriber{
		userID:        userID,
		counterpartID: counterpartID,
		feed:          feed,
		state:         StateClosed,
	}
}

// OnAppend registers the append hook. Must be called before Open.
func (s *Subscriber) OnAppend(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// SeedHistory installs the initial history fetch (ascending created_at).
// The input is re-sorted defensively rather than trusting query order.
func (s *Subscriber) SeedHistory(history []*domain.MessageResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.log = make([]*domain.MessageResponse, len(history))
	copy(s.log, history)
	sortByCreatedAt(s.log)
}

// Open transitions Closed -> Subscribing -> Active and starts consuming
// the feed. Calling Open on a non-closed subscriber is a no-op.
func (s *Subscriber) Open() {
	s.mu.Lock()
	if s.state != StateClosed || s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StateSubscribing
	s.mu.Unlock()

	ch, cancel := s.feed.SubscribeLocal(s.userID)

	s.mu.Lock()
	if s.closed {
		// Closed mid-flight, before the subscription acknowledged.
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateActive
	s.mu.Unlock()

	go s.consume(ch)
}

func (s *Subscriber) consume(ch <-chan *ws.MessageEvent) {
	defer close(s.done)
	for event := range ch {
		s.handle(event)
	}
}

// handle filters and appends one event. The subscription may be scoped
// wider than this conversation, so only messages from the counterpart to
// the user are accepted.
func (s *Subscriber) handle(event *ws.MessageEvent) {
	if event == nil || event.Payload == nil {
		return
	}
	msg := event.Payload
	if msg.SenderID != s.counterpartID || msg.ReceiverID != s.userID {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.log = append(s.log, msg)
	// Appends are assumed to arrive in creation order; re-sort only when
	// that assumption is violated so the render order invariant holds.
	if n := len(s.log); n > 1 && createdAt(s.log[n-1]).Before(createdAt(s.log[n-2])) {
		sortByCreatedAt(s.log)
	}
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Close releases the subscription. It is idempotent and safe to call in
// any state; once it returns, the log is never mutated again and the
// append hook never fires again.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// State returns the current lifecycle state
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Log returns a snapshot of the conversation log in non-decreasing
// created_at order.
func (s *Subscriber) Log() []*domain.MessageResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.MessageResponse, len(s.log))
	copy(out, s.log)
	return out
}

func createdAt(m *domain.MessageResponse) time.Time {
	t, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func sortByCreatedAt(msgs []*domain.MessageResponse) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return createdAt(msgs[i]).Before(createdAt(msgs[j]))
	})
}
