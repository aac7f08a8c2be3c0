package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/journaly/internal/cache"
	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/database"
)

type request struct {
	authorID int
	cursor   int
	limit    int
}

type author struct {
	handle string
	posts  int
}

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=journaly_bench port=5432 sslmode=disable"
	}
	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}))

	mustDo(db.Migrator().DropTable(
		&model.EmailDelivery{}, &model.ThreadSubscription{}, &model.Comment{},
		&model.PostComment{}, &model.Thread{}, &model.Post{}, &model.User{},
	))
	mustDo(database.Migrate(db))

	authors := []author{{"prolific", 3000}, {"regular", 400}, {"casual", 20}}
	ids := make(map[int][]int, len(authors))

	fmt.Println("Setting up test data...")
	base := time.Now().Add(-time.Duration(len(authors)*4000) * time.Minute)
	for _, a := range authors {
		u := model.User{Email: a.handle + "@example.com", Handle: a.handle, Password: "x", DigestEmailConfig: model.DigestOff}
		mustDo(db.Create(&u).Error)
		posts := make([]model.Post, a.posts)
		for i := range posts {
			posts[i] = model.Post{
				AuthorID:  u.ID,
				Title:     fmt.Sprintf("%s #%d", a.handle, i),
				Body:      strings.Repeat("Heute habe ich Deutsch geübt. ", 20),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
		}
		mustDo(db.CreateInBatches(&posts, 500).Error)
		ids[u.ID] = must(repository.NewPostRepository(db).ListIDsByAuthor(ctx, u.ID))
	}
	fmt.Println("Test data ready:", len(authors), "authors")

	client := redisClient(ctx)
	defer client.Close()

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	index := cache.NewPostIndex(client, 10*time.Minute)

	n := 9000
	if s := os.Getenv("REQUESTS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			n = v
		}
	}
	reqs := makeRequests(n, ids)

	noCache := runScenario(ctx, service.NewPostService(users, posts, nil), reqs, false, client, index)
	cached := runScenario(ctx, service.NewPostService(users, posts, index), reqs, true, client, index)

	fmt.Printf("\nProfile post paging (%d req across %d authors)\n", n, len(authors))
	fmt.Printf("%-18s avg=%v p95=%v p99=%v\n",
		"No cache", avg(noCache.durations), pct(noCache.durations, 0.95), pct(noCache.durations, 0.99))
	fmt.Printf("%-18s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d\n",
		"Redis post index", avg(cached.durations), pct(cached.durations, 0.95), pct(cached.durations, 0.99),
		cached.counters.Hits, cached.counters.Misses, cached.cacheKeys)
}

// redisClient 优先使用 REDIS_ADDR，否则启动进程内 miniredis
func redisClient(ctx context.Context) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		mr := must(miniredis.Run())
		addr = mr.Addr()
		fmt.Println("REDIS_ADDR not set, using in-process miniredis at", addr)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
	}
	return client
}

type scenarioResult struct {
	durations []time.Duration
	counters  cache.Counters
	cacheKeys int
}

func runScenario(ctx context.Context, svc service.PostService, reqs []request, warm bool, client *redis.Client, index *cache.PostIndex) scenarioResult {
	client.FlushAll(ctx)

	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			if _, err := svc.ProfilePosts(ctx, r.authorID, r.cursor, r.limit); err != nil {
				panic(err)
			}
		}
		fmt.Println(" done")
	}
	index.ResetCounters()

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		if _, err := svc.ProfilePosts(ctx, r.authorID, r.cursor, r.limit); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "posts:index:*").Result()
	return scenarioResult{durations: out, counters: index.Counters(), cacheKeys: len(keys)}
}

// makeRequests 多数请求看第一页，其余随机翻到更深的位置
func makeRequests(n int, ids map[int][]int) []request {
	authorIDs := make([]int, 0, len(ids))
	for id := range ids {
		authorIDs = append(authorIDs, id)
	}
	sort.Ints(authorIDs)

	limits := []int{5, 10, 20}
	rnd := rand.New(rand.NewSource(42))
	out := make([]request, n)
	for i := range out {
		authorID := authorIDs[rnd.Intn(len(authorIDs))]
		r := request{authorID: authorID, limit: limits[rnd.Intn(len(limits))]}
		if list := ids[authorID]; rnd.Float64() > 0.72 && len(list) > 0 {
			r.cursor = list[rnd.Intn(len(list))]
		}
		out[i] = r
	}
	return out
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
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
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
