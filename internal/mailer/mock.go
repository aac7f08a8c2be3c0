package mailer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/pkg/logger"
)

// LogTransport logs messages instead of sending them. Used when SMTP is not configured.
type LogTransport struct{}

func (LogTransport) Send(_ context.Context, msg Message) error {
	logger.Info("MOCK EMAIL",
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)))
	return nil
}

// ErrRecorderRejected is returned by Recorder for addresses marked with FailFor.
var ErrRecorderRejected = errors.New("recipient rejected")

// Recorder keeps every sent message in memory.
type Recorder struct {
	mu       sync.Mutex
	sent     []Message
	failFor  map[string]int // 剩余失败次数，<0 表示一直失败
	attempts map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{failFor: map[string]int{}, attempts: map[string]int{}}
}

// FailFor makes the next n sends to addr fail; n < 0 fails forever.
func (r *Recorder) FailFor(addr string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[addr] = n
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[msg.To]++
	if n, ok := r.failFor[msg.To]; ok && n != 0 {
		if n > 0 {
			r.failFor[msg.To] = n - 1
		}
		return ErrRecorderRejected
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of delivered messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// Recipients returns the To address of every delivered message.
func (r *Recorder) Recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	for i, m := range r.sent {
		out[i] = m.To
	}
	return out
}

// Attempts counts sends to addr, failed ones included.
func (r *Recorder) Attempts(addr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[addr]
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.failFor = map[string]int{}
	r.attempts = map[string]int{}
}
