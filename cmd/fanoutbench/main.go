package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/d60-Lab/journaly/internal/mailer"
	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/database"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

// slowTransport 模拟 SMTP 往返延迟
type slowTransport struct {
	delay time.Duration
}

func (t slowTransport) Send(ctx context.Context, _ mailer.Message) error {
	select {
	case <-time.After(t.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	SUBSCRIBERS := envInt("SUBSCRIBERS", 200)
	REPEAT := envInt("REPEAT", 20)
	DELAY := time.Duration(envInt("DELAY_MS", 20)) * time.Millisecond
	caps := []int{0, 4, 16, 64}
	if s := os.Getenv("CAPS"); s != "" {
		caps = caps[:0]
		for _, part := range strings.Split(s, ",") {
			if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && v >= 0 {
				caps = append(caps, v)
			}
		}
	}

	fmt.Printf("SUBSCRIBERS=%d REPEAT=%d DELAY=%v\n", SUBSCRIBERS, REPEAT, DELAY)
	for _, c := range caps {
		durations, res := run(SUBSCRIBERS, REPEAT, c, DELAY)
		label := "unbounded"
		if c > 0 {
			label = fmt.Sprintf("max %d", c)
		}
		fmt.Printf("createComment fan-out (%-9s): avg=%v p95=%v p99=%v attempted=%d failed=%d\n",
			label, avg(durations), pct(durations, 0.95), pct(durations, 0.99), res.Attempted, res.Failed)
	}
}

func run(subscribers, repeat, maxConcurrency int, delay time.Duration) ([]time.Duration, service.DispatchResult) {
	ctx := context.Background()
	db := must(database.OpenMemory())
	defer func() { _ = database.Close(db) }()

	author := model.User{Email: "author@example.com", Handle: "author", Password: "x", DigestEmailConfig: model.DigestOff}
	mustDo(db.Create(&author).Error)
	post := model.Post{AuthorID: author.ID, Title: "Mein Tag", Body: "Heute bin ich spazieren gegangen."}
	mustDo(db.Create(&post).Error)
	thread := model.Thread{PostID: post.ID, StartIndex: 0, EndIndex: 5, HighlightedContent: "Heute"}
	mustDo(repository.NewThreadRepository(db).CreateWithSubscription(ctx, &thread, author.ID))

	users := make([]model.User, subscribers)
	for i := range users {
		users[i] = model.User{
			Email:             fmt.Sprintf("reader_%d@example.com", i),
			Handle:            fmt.Sprintf("reader_%d", i),
			Password:          "x",
			DigestEmailConfig: model.DigestOff,
		}
	}
	mustDo(db.CreateInBatches(&users, 500).Error)
	subs := make([]model.ThreadSubscription, subscribers)
	for i, u := range users {
		subs[i] = model.ThreadSubscription{UserID: u.ID, ThreadID: thread.ID}
	}
	mustDo(db.CreateInBatches(&subs, 500).Error)

	commenter := model.User{Email: "native@example.com", Handle: "native", Password: "x", DigestEmailConfig: model.DigestOff}
	mustDo(db.Create(&commenter).Error)

	notifier := service.NewNotifier(slowTransport{delay: delay}, repository.NewDeliveryRepository(db), service.NotifierConfig{
		MaxConcurrency: maxConcurrency,
		Retry:          mailer.RetryPolicy{Attempts: 1, Delay: time.Millisecond},
	})
	svc := service.NewServices(db, service.Deps{Notifier: notifier, Tokens: jwt.NewManager("bench", "journaly", time.Hour)})
	actor := service.Actor{UserID: commenter.ID}

	out := make([]time.Duration, 0, repeat)
	var total service.DispatchResult
	for i := 0; i < repeat; i++ {
		start := time.Now()
		_, res, err := svc.Comments.CreateComment(ctx, actor, thread.ID, fmt.Sprintf("Korrektur %d", i))
		if err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
		total.Attempted += res.Attempted
		total.Failed += res.Failed
	}
	return out, total
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(float64(len(xs)) * p)
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
