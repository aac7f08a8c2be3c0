package service

import (
	"context"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/internal/mailer"
	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/logger"
	"github.com/d60-Lab/journaly/pkg/monitor"
)

const defaultSender = "robin@journaly.com"

// NotifierConfig 通知邮件发送配置
type NotifierConfig struct {
	From           string
	SiteDomain     string
	MaxConcurrency int // 0 表示每个收件人一个 goroutine
	Retry          mailer.RetryPolicy
	SendTimeout    time.Duration
}

// DispatchResult 一次扇出的汇总结果
type DispatchResult struct {
	Attempted int
	Failed    int
}

type mailJob struct {
	kind        string
	recipientID int
	msg         mailer.Message
}

// Notifier 组装通知邮件，并发发送给每个收件人，等待全部结束后汇总结果
type Notifier struct {
	transport  mailer.Transport
	deliveries repository.DeliveryRepository
	cfg        NotifierConfig
}

func NewNotifier(transport mailer.Transport, deliveries repository.DeliveryRepository, cfg NotifierConfig) *Notifier {
	if cfg.From == "" {
		cfg.From = defaultSender
	}
	if cfg.SiteDomain == "" {
		cfg.SiteDomain = "journaly.com"
	}
	return &Notifier{transport: transport, deliveries: deliveries, cfg: cfg}
}

// NotifySubscribers 给评论串的每个订阅者（excludeUserID 除外）发一封邮件。
// thread 需预加载 Subscriptions.User 与 Post。
func (n *Notifier) NotifySubscribers(ctx context.Context, thread *model.Thread, comment *model.Comment, commenter *model.User, excludeUserID int) DispatchResult {
	var recipients []*model.User
	seen := make(map[int]bool, len(thread.Subscriptions))
	for _, sub := range thread.Subscriptions {
		if sub.UserID == excludeUserID || sub.User == nil || seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		recipients = append(recipients, sub.User)
	}
	if len(recipients) == 0 {
		return DispatchResult{}
	}

	title := ""
	if thread.Post != nil {
		title = thread.Post.Title
	}
	html, err := mailer.RenderThreadComment(mailer.ThreadCommentData{
		CommenterHandle:    commenter.Handle,
		PostTitle:          title,
		HighlightedContent: thread.HighlightedContent,
		CommentBody:        comment.Body,
		PostURL:            mailer.PostURL(n.cfg.SiteDomain, thread.PostID),
	})
	if err != nil {
		return n.renderFailed(err, model.EmailKindThreadComment, len(recipients))
	}

	subject := mailer.ThreadCommentSubject(title)
	jobs := make([]mailJob, 0, len(recipients))
	for _, u := range recipients {
		jobs = append(jobs, mailJob{
			kind:        model.EmailKindThreadComment,
			recipientID: u.ID,
			msg:         mailer.Message{From: n.cfg.From, To: u.Email, Subject: subject, HTML: html},
		})
	}
	return n.dispatch(ctx, jobs)
}

// NotifyPostAuthor 整篇评论通知日记作者，作者自己评论时不发送。post 需预加载 Author。
func (n *Notifier) NotifyPostAuthor(ctx context.Context, post *model.Post, comment *model.PostComment, commenter *model.User) DispatchResult {
	if post.Author == nil || post.AuthorID == commenter.ID {
		return DispatchResult{}
	}
	html, err := mailer.RenderPostComment(mailer.PostCommentData{
		CommenterHandle: commenter.Handle,
		PostTitle:       post.Title,
		CommentBody:     comment.Body,
		PostURL:         mailer.PostURL(n.cfg.SiteDomain, post.ID),
	})
	if err != nil {
		return n.renderFailed(err, model.EmailKindPostComment, 1)
	}
	return n.dispatch(ctx, []mailJob{{
		kind:        model.EmailKindPostComment,
		recipientID: post.Author.ID,
		msg: mailer.Message{
			From:    n.cfg.From,
			To:      post.Author.Email,
			Subject: mailer.PostCommentSubject(post.Title),
			HTML:    html,
		},
	}})
}

// SendDigest 发送一封摘要邮件
func (n *Notifier) SendDigest(ctx context.Context, user *model.User, period string, comments []*model.Comment) DispatchResult {
	items := make([]mailer.DigestItem, 0, len(comments))
	for _, c := range comments {
		item := mailer.DigestItem{CommentBody: c.Body}
		if c.Author != nil {
			item.CommenterHandle = c.Author.Handle
		}
		if c.Thread != nil {
			item.HighlightedContent = c.Thread.HighlightedContent
			item.PostURL = mailer.PostURL(n.cfg.SiteDomain, c.Thread.PostID)
			if c.Thread.Post != nil {
				item.PostTitle = c.Thread.Post.Title
			}
		}
		items = append(items, item)
	}
	html, err := mailer.RenderDigest(mailer.DigestData{Handle: user.Handle, Period: period, Items: items})
	if err != nil {
		return n.renderFailed(err, model.EmailKindDigest, 1)
	}
	return n.dispatch(ctx, []mailJob{{
		kind:        model.EmailKindDigest,
		recipientID: user.ID,
		msg: mailer.Message{
			From:    n.cfg.From,
			To:      user.Email,
			Subject: mailer.DigestSubject(period, len(items)),
			HTML:    html,
		},
	}})
}

// dispatch 每个收件人一个任务，全部结束后批量写入投递记录
func (n *Notifier) dispatch(ctx context.Context, jobs []mailJob) DispatchResult {
	res := DispatchResult{Attempted: len(jobs)}
	if len(jobs) == 0 {
		return res
	}
	// 已提交的评论不因请求取消而丢失通知
	ctx = context.WithoutCancel(ctx)

	p := pool.NewWithResults[*model.EmailDelivery]()
	if n.cfg.MaxConcurrency > 0 {
		p = p.WithMaxGoroutines(n.cfg.MaxConcurrency)
	}
	for _, job := range jobs {
		job := job
		p.Go(func() *model.EmailDelivery {
			return n.deliver(ctx, job)
		})
	}
	rows := p.Wait()

	for _, row := range rows {
		if row.Status == model.DeliveryFailed {
			res.Failed++
		}
	}
	if n.deliveries != nil {
		if err := n.deliveries.CreateBatch(ctx, rows); err != nil {
			logger.Error("record email deliveries failed", zap.Error(err), zap.Int("rows", len(rows)))
		}
	}
	if res.Failed > 0 {
		logger.Warn("notification dispatch finished with failures",
			zap.Int("attempted", res.Attempted),
			zap.Int("failed", res.Failed))
	}
	return res
}

func (n *Notifier) deliver(ctx context.Context, job mailJob) *model.EmailDelivery {
	if n.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.SendTimeout)
		defer cancel()
	}

	row := &model.EmailDelivery{
		Kind:        job.kind,
		RecipientID: job.recipientID,
		Recipient:   job.msg.To,
		Subject:     job.msg.Subject,
		Status:      model.DeliverySent,
	}
	attempts, err := mailer.SendWithRetry(ctx, n.transport, job.msg, n.cfg.Retry)
	row.Attempts = attempts
	if err != nil {
		row.Status = model.DeliveryFailed
		row.LastError = err.Error()
		logger.Warn("send notification email failed",
			zap.String("kind", job.kind),
			zap.String("to", job.msg.To),
			zap.Int("attempts", attempts),
			zap.Error(err))
		monitor.CaptureError(err, map[string]string{
			"email_kind":   job.kind,
			"recipient_id": strconv.Itoa(job.recipientID),
		})
	}
	return row
}

func (n *Notifier) renderFailed(err error, kind string, count int) DispatchResult {
	logger.Error("render notification email failed", zap.String("kind", kind), zap.Error(err))
	monitor.CaptureError(err, map[string]string{"email_kind": kind})
	return DispatchResult{Attempted: count, Failed: count}
}
