package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/ws"
)

// fakeFeed hands out one channel per subscription and tracks releases.
type fakeFeed struct {
	mu       sync.Mutex
	ch       chan *ws.MessageEvent
	released bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan *ws.MessageEvent, 16)}
}

func (f *fakeFeed) SubscribeLocal(userID string) (<-chan *ws.MessageEvent, func()) {
	return f.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.released {
			f.released = true
			close(f.ch)
		}
	}
}

func (f *fakeFeed) wasReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func event(sender, receiver, content, createdAt string) *ws.MessageEvent {
	return &ws.MessageEvent{
		Type: "message",
		Payload: &domain.MessageResponse{
			ID:         sender + "-" + content,
			SenderID:   sender,
			ReceiverID: receiver,
			Content:    content,
			CreatedAt:  createdAt,
		},
	}
}

func waitForLog(t *testing.T, s *Subscriber, want int) []*domain.MessageResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if log := s.Log(); len(log) == want {
			return log
		}
		time.Sleep(5 * time.Millisecond)
	}
	log := s.Log()
	assert.Len(t, log, want)
	return log
}

func TestSubscriber_LifecycleStates(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")

	assert.Equal(t, StateClosed, s.State())

	s.Open()
	assert.Equal(t, StateActive, s.State())

	s.Close()
	assert.Equal(t, StateClosed, s.State())
	assert.True(t, feed.wasReleased())
}

func TestSubscriber_AcceptsOnlyCounterpartToUser(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")
	s.Open()
	defer s.Close()

	feed.ch <- event("C", "U", "keep", "2026-03-01T12:00:00Z")
	feed.ch <- event("U", "C", "own outgoing", "2026-03-01T12:00:01Z")
	feed.ch <- event("X", "U", "other sender", "2026-03-01T12:00:02Z")
	feed.ch <- event("C", "X", "other receiver", "2026-03-01T12:00:03Z")
	feed.ch <- event("C", "U", "keep too", "2026-03-01T12:00:04Z")

	log := waitForLog(t, s, 2)
	assert.Equal(t, "keep", log[0].Content)
	assert.Equal(t, "keep too", log[1].Content)
}

func TestSubscriber_SeedThenAppendKeepsOrder(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")

	// History arrives descending; seeding re-sorts it ascending.
	s.SeedHistory([]*domain.MessageResponse{
		{SenderID: "C", ReceiverID: "U", Content: "second", CreatedAt: "2026-03-01T12:00:01Z"},
		{SenderID: "U", ReceiverID: "C", Content: "first", CreatedAt: "2026-03-01T12:00:00Z"},
	})
	s.Open()
	defer s.Close()

	feed.ch <- event("C", "U", "third", "2026-03-01T12:00:02Z")

	log := waitForLog(t, s, 3)
	assert.Equal(t, "first", log[0].Content)
	assert.Equal(t, "second", log[1].Content)
	assert.Equal(t, "third", log[2].Content)
}

func TestSubscriber_OutOfOrderAppendReSorts(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")
	s.Open()
	defer s.Close()

	feed.ch <- event("C", "U", "later", "2026-03-01T12:00:05Z")
	feed.ch <- event("C", "U", "earlier", "2026-03-01T12:00:01Z")

	log := waitForLog(t, s, 2)
	assert.Equal(t, "earlier", log[0].Content)
	assert.Equal(t, "later", log[1].Content)
}

func TestSubscriber_DuplicatesAreKept(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")

	// A message already present from the history fetch may arrive again
	// on the feed; there is no id-based dedup.
	s.SeedHistory([]*domain.MessageResponse{
		{ID: "m1", SenderID: "C", ReceiverID: "U", Content: "hi", CreatedAt: "2026-03-01T12:00:00Z"},
	})
	s.Open()
	defer s.Close()

	feed.ch <- event("C", "U", "hi", "2026-03-01T12:00:00Z")

	log := waitForLog(t, s, 2)
	assert.Equal(t, log[0].Content, log[1].Content)
}

func TestSubscriber_CloseIsIdempotent(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")
	s.Open()

	s.Close()
	s.Close()
	assert.Equal(t, StateClosed, s.State())
}

func TestSubscriber_CloseBeforeOpenReleasesNothing(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")

	s.Close()
	assert.Equal(t, StateClosed, s.State())

	// Open after Close stays closed and never subscribes.
	s.Open()
	assert.Equal(t, StateClosed, s.State())
	assert.False(t, feed.wasReleased())
}

func TestSubscriber_NoLogMutationAfterClose(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")

	notified := 0
	s.OnAppend(func() { notified++ })
	s.Open()

	feed.ch <- event("C", "U", "before close", "2026-03-01T12:00:00Z")
	waitForLog(t, s, 1)

	s.Close()
	lenAtClose := len(s.Log())
	notifiedAtClose := notified

	// The feed channel is closed by the release func, so nothing further
	// can be delivered; the log and the hook counter must stay frozen.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, lenAtClose, len(s.Log()))
	assert.Equal(t, notifiedAtClose, notified)
}

func TestSubscriber_AppendHookFires(t *testing.T) {
	feed := newFakeFeed()
	s := NewSubscriber(feed, "U", "C")

	var mu sync.Mutex
	fired := 0
	s.OnAppend(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	s.Open()
	defer s.Close()

	feed.ch <- event("C", "U", "a", "2026-03-01T12:00:00Z")
	feed.ch <- event("X", "U", "filtered", "2026-03-01T12:00:01Z")
	feed.ch <- event("C", "U", "b", "2026-03-01T12:00:02Z")

	waitForLog(t, s, 2)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, fired)
}
