package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/journaly/internal/mailer"
	"github.com/d60-Lab/journaly/internal/model"
)

// gaugeTransport records the peak number of concurrent sends.
type gaugeTransport struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32

	mu   sync.Mutex
	sent []string
}

func (g *gaugeTransport) Send(_ context.Context, msg mailer.Message) error {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(g.delay)
	g.mu.Lock()
	g.sent = append(g.sent, msg.To)
	g.mu.Unlock()
	return nil
}

func threadWithSubscribers(n int) *model.Thread {
	th := &model.Thread{ID: 1, PostID: 7, HighlightedContent: "snippet", Post: &model.Post{ID: 7, Title: "T"}}
	for i := 1; i <= n; i++ {
		th.Subscriptions = append(th.Subscriptions, &model.ThreadSubscription{
			UserID:   i,
			ThreadID: 1,
			User:     &model.User{ID: i, Handle: fmt.Sprintf("u%d", i), Email: fmt.Sprintf("u%d@example.com", i)},
		})
	}
	return th
}

func TestNotifierCapsConcurrency(t *testing.T) {
	tr := &gaugeTransport{delay: 5 * time.Millisecond}
	n := NewNotifier(tr, nil, NotifierConfig{MaxConcurrency: 2})

	res := n.NotifySubscribers(context.Background(), threadWithSubscribers(8),
		&model.Comment{Body: "hi"}, &model.User{ID: 99, Handle: "x"}, 99)

	assert.Equal(t, DispatchResult{Attempted: 8}, res)
	assert.Len(t, tr.sent, 8)
	assert.LessOrEqual(t, tr.peak.Load(), int32(2))
}

func TestNotifierExcludesCommenter(t *testing.T) {
	rec := mailer.NewRecorder()
	n := NewNotifier(rec, nil, NotifierConfig{})

	res := n.NotifySubscribers(context.Background(), threadWithSubscribers(3),
		&model.Comment{Body: "hi"}, &model.User{ID: 2, Handle: "u2"}, 2)

	assert.Equal(t, 2, res.Attempted)
	assert.ElementsMatch(t, []string{"u1@example.com", "u3@example.com"}, rec.Recipients())
	for _, m := range rec.Sent() {
		assert.Equal(t, defaultSender, m.From)
		assert.Contains(t, m.HTML, "https://journaly.com/post/7")
	}
}

func TestNotifierCountsFailures(t *testing.T) {
	rec := mailer.NewRecorder()
	rec.FailFor("u1@example.com", -1)
	rec.FailFor("u2@example.com", 1)
	n := NewNotifier(rec, nil, NotifierConfig{Retry: mailer.RetryPolicy{Attempts: 2, Delay: time.Millisecond}})

	res := n.NotifySubscribers(context.Background(), threadWithSubscribers(3),
		&model.Comment{Body: "hi"}, &model.User{ID: 50, Handle: "z"}, 50)

	assert.Equal(t, DispatchResult{Attempted: 3, Failed: 1}, res)
	assert.ElementsMatch(t, []string{"u2@example.com", "u3@example.com"}, rec.Recipients())
}

func TestNotifierNoRecipients(t *testing.T) {
	rec := mailer.NewRecorder()
	n := NewNotifier(rec, nil, NotifierConfig{})

	res := n.NotifySubscribers(context.Background(), threadWithSubscribers(1),
		&model.Comment{Body: "hi"}, &model.User{ID: 1, Handle: "u1"}, 1)
	assert.Equal(t, DispatchResult{}, res)
	assert.Empty(t, rec.Sent())
}
