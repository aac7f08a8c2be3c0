package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/journaly/internal/cache"
	"github.com/d60-Lab/journaly/internal/model"
)

func postIDs(posts []*model.Post) []int {
	ids := make([]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.users, f.posts, nil)
	u1 := f.user(t, "u1")
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, Anonymous, CreatePostInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreatePost(ctx, Actor{UserID: u1.ID}, CreatePostInput{Title: " ", Body: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreatePost(ctx, Actor{UserID: u1.ID}, CreatePostInput{Title: "Tag 1", Body: "Heute"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "u1", p.Author.Handle)
}

func TestPostByIDLoadsDiscussion(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.users, f.posts, nil)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")
	p := f.post(t, u1, "Ich bin gegangen")
	th := f.thread(t, p, u2)
	_, _, err := f.commentSvc.CreateComment(ctx, Actor{UserID: u2.ID}, th.ID, "Ich ging")
	require.NoError(t, err)

	got, err := svc.PostByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Threads, 1)
	require.Len(t, got.Threads[0].Comments, 1)
	assert.Equal(t, "u2", got.Threads[0].Comments[0].Author.Handle)

	_, err = svc.PostByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfilePostsPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "u1")
	var created []int
	for i := 0; i < 7; i++ {
		created = append(created, f.post(t, u1, "x").ID)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	index := cache.NewPostIndex(client, time.Minute)

	for name, svc := range map[string]PostService{
		"database": NewPostService(f.users, f.posts, nil),
		"cached":   NewPostService(f.users, f.posts, index),
	} {
		t.Run(name, func(t *testing.T) {
			first, err := svc.ProfilePosts(ctx, u1.ID, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, []int{created[6], created[5], created[4], created[3], created[2]}, postIDs(first))

			second, err := svc.ProfilePosts(ctx, u1.ID, first[len(first)-1].ID, 5)
			require.NoError(t, err)
			assert.Equal(t, []int{created[1], created[0]}, postIDs(second))

			_, err = svc.ProfilePosts(ctx, 12345, 0, 5)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
	assert.Equal(t, int64(1), index.Counters().Misses)
	assert.Equal(t, int64(1), index.Counters().Hits)
}

func TestCreatePostInvalidatesIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "u1")
	old := f.post(t, u1, "x")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewPostService(f.users, f.posts, cache.NewPostIndex(client, time.Minute))

	page, err := svc.ProfilePosts(ctx, u1.ID, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{old.ID}, postIDs(page))

	fresh, err := svc.CreatePost(ctx, Actor{UserID: u1.ID}, CreatePostInput{Title: "Neu", Body: "y"})
	require.NoError(t, err)

	page, err = svc.ProfilePosts(ctx, u1.ID, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{fresh.ID, old.ID}, postIDs(page))
}

func TestProfilePostsLimitIsCapped(t *testing.T) {
	f := newFixture(t)
	u1 := f.user(t, "u1")
	for i := 0; i < MaxProfilePageSize+3; i++ {
		f.post(t, u1, "x")
	}
	svc := NewPostService(f.users, f.posts, nil)

	page, err := svc.ProfilePosts(context.Background(), u1.ID, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, page, MaxProfilePageSize)
}
