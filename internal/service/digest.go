package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/logger"
)

const maxDigestItems = 50

// DigestWorker 定期为选择 DAILY/WEEKLY 的用户汇总订阅评论串上的新评论
type DigestWorker struct {
	users        repository.UserRepository
	subs         repository.SubscriptionRepository
	comments     repository.CommentRepository
	notifier     *Notifier
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
}

func NewDigestWorker(users repository.UserRepository, subs repository.SubscriptionRepository, comments repository.CommentRepository, notifier *Notifier, pollInterval time.Duration, batchSize int) *DigestWorker {
	if pollInterval <= 0 {
		pollInterval = time.Hour
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &DigestWorker{
		users:        users,
		subs:         subs,
		comments:     comments,
		notifier:     notifier,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start 启动轮询 goroutine；返回的函数停止并等待当前一轮结束
func (w *DigestWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	go w.loop(stop, done)
	return func(ctx context.Context) error {
		close(stop)
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *DigestWorker) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sent, err := w.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				logger.Error("digest run failed", zap.Error(err))
				continue
			}
			if sent > 0 {
				logger.Info("digest run finished", zap.Int("sent", sent))
			}
		}
	}
}

// RunOnce 处理所有到期用户，返回发送的摘要邮件数
func (w *DigestWorker) RunOnce(ctx context.Context) (int, error) {
	sent := 0
	for _, cfg := range []model.DigestEmailConfig{model.DigestDaily, model.DigestWeekly} {
		n, err := w.runConfig(ctx, cfg)
		sent += n
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}

func (w *DigestWorker) runConfig(ctx context.Context, cfg model.DigestEmailConfig) (int, error) {
	now := w.now()
	before := now.Add(-cfg.Interval())
	period := strings.ToLower(string(cfg))

	sent, afterID := 0, 0
	for {
		batch, err := w.users.ListDigestDue(ctx, cfg, before, afterID, w.batchSize)
		if err != nil {
			return sent, err
		}
		for _, u := range batch {
			afterID = u.ID
			out, err := w.digestUser(ctx, u, before, now, period)
			if err != nil {
				return sent, err
			}
			if out.sent {
				sent++
			}
			// 发送失败不打时间戳，下一轮重发同一批评论
			if out.stampAt.IsZero() {
				continue
			}
			if err := w.users.TouchDigest(ctx, u.ID, out.stampAt); err != nil {
				return sent, err
			}
		}
		if len(batch) < w.batchSize {
			return sent, nil
		}
	}
}

type digestOutcome struct {
	sent    bool
	stampAt time.Time
}

// digestUser 汇总 (lastDigestAt, until] 内的评论。超过 maxDigestItems 时只发前面一部分，
// 时间戳停在最后一条已发送评论上，剩余评论进入下一封摘要。
func (w *DigestWorker) digestUser(ctx context.Context, u *model.User, fallbackSince, until time.Time, period string) (digestOutcome, error) {
	since := fallbackSince
	if u.LastDigestAt != nil {
		since = *u.LastDigestAt
	}
	threadIDs, err := w.subs.ListThreadIDs(ctx, u.ID)
	if err != nil {
		return digestOutcome{}, err
	}
	comments, err := w.comments.ListSince(ctx, threadIDs, since, until, u.ID, maxDigestItems)
	if err != nil {
		return digestOutcome{}, err
	}
	if len(comments) == 0 {
		return digestOutcome{stampAt: until}, nil
	}

	res := w.notifier.SendDigest(ctx, u, period, comments)
	if res.Failed > 0 {
		logger.Warn("digest not sent, will retry next run",
			zap.Int("user_id", u.ID),
			zap.Int("comments", len(comments)))
		return digestOutcome{}, nil
	}
	stampAt := until
	if len(comments) == maxDigestItems {
		stampAt = comments[len(comments)-1].CreatedAt
	}
	return digestOutcome{sent: true, stampAt: stampAt}, nil
}
