package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/journaly/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, handle string) *model.User {
	t.Helper()
	u := &model.User{Handle: handle, Email: handle + "@example.com", Password: "x", DigestEmailConfig: model.DigestOff}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createPost(t *testing.T, db *gorm.DB, author *model.User, title string) *model.Post {
	t.Helper()
	p := &model.Post{Title: title, Body: "Ich habe heute viel gelernt.", AuthorID: author.ID}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func countSubscriptions(t *testing.T, db *gorm.DB, userID, threadID int) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.ThreadSubscription{}).
		Where("user_id = ? AND thread_id = ?", userID, threadID).Count(&n).Error)
	return n
}

func TestThreadCreateSubscribesPostAuthor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	post := createPost(t, db, author, "Mein Tag")

	thread := &model.Thread{PostID: post.ID, StartIndex: 0, EndIndex: 3, HighlightedContent: "Ich"}
	require.NoError(t, NewThreadRepository(db).CreateWithSubscription(ctx, thread, author.ID))
	assert.NotZero(t, thread.ID)
	assert.Equal(t, int64(1), countSubscriptions(t, db, author.ID, thread.ID))
}

func TestGetForNotificationPreloads(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	post := createPost(t, db, author, "Mein Tag")
	threads := NewThreadRepository(db)
	thread := &model.Thread{PostID: post.ID, EndIndex: 3, HighlightedContent: "Ich"}
	require.NoError(t, threads.CreateWithSubscription(ctx, thread, author.ID))
	require.NoError(t, NewSubscriptionRepository(db).Subscribe(ctx, reader.ID, thread.ID))

	got, err := threads.GetForNotification(ctx, thread.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Post)
	require.NotNil(t, got.Post.Author)
	assert.Equal(t, "author", got.Post.Author.Handle)
	require.Len(t, got.Subscriptions, 2)
	assert.Equal(t, "author", got.Subscriptions[0].User.Handle)
	assert.Equal(t, "reader", got.Subscriptions[1].User.Handle)

	_, err = threads.GetForNotification(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentCreateSubscriptionIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	post := createPost(t, db, author, "Mein Tag")
	thread := &model.Thread{PostID: post.ID, EndIndex: 3, HighlightedContent: "Ich"}
	require.NoError(t, NewThreadRepository(db).CreateWithSubscription(ctx, thread, author.ID))

	comments := NewCommentRepository(db)
	for i := 0; i < 3; i++ {
		c := &model.Comment{ThreadID: thread.ID, AuthorID: reader.ID, Body: fmt.Sprintf("comment %d", i)}
		require.NoError(t, comments.CreateWithSubscription(ctx, c))
	}

	assert.Equal(t, int64(1), countSubscriptions(t, db, reader.ID, thread.ID))
	var n int64
	require.NoError(t, db.Model(&model.Comment{}).Where("thread_id = ?", thread.ID).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestCommentUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	post := createPost(t, db, author, "Mein Tag")
	thread := &model.Thread{PostID: post.ID, EndIndex: 3, HighlightedContent: "Ich"}
	require.NoError(t, NewThreadRepository(db).CreateWithSubscription(ctx, thread, author.ID))
	comments := NewCommentRepository(db)
	c := &model.Comment{ThreadID: thread.ID, AuthorID: author.ID, Body: "old"}
	require.NoError(t, comments.CreateWithSubscription(ctx, c))

	require.NoError(t, comments.UpdateBody(ctx, c.ID, "new"))
	got, err := comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Body)
	require.NotNil(t, got.Author)

	require.NoError(t, comments.Delete(ctx, c.ID))
	_, err = comments.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, comments.Delete(ctx, c.ID), ErrNotFound)
	assert.ErrorIs(t, comments.UpdateBody(ctx, c.ID, "x"), ErrNotFound)
}

func TestListSinceSkipsOwnAndOldComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	post := createPost(t, db, author, "Mein Tag")
	thread := &model.Thread{PostID: post.ID, EndIndex: 3, HighlightedContent: "Ich"}
	require.NoError(t, NewThreadRepository(db).CreateWithSubscription(ctx, thread, author.ID))

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, db.Create(&model.Comment{ThreadID: thread.ID, AuthorID: reader.ID, Body: "old", CreatedAt: old}).Error)
	require.NoError(t, db.Create(&model.Comment{ThreadID: thread.ID, AuthorID: reader.ID, Body: "fresh"}).Error)
	require.NoError(t, db.Create(&model.Comment{ThreadID: thread.ID, AuthorID: author.ID, Body: "mine"}).Error)

	got, err := NewCommentRepository(db).ListSince(ctx, []int{thread.ID}, time.Now().UTC().Add(-24*time.Hour), time.Now().UTC(), author.ID, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Body)
	require.NotNil(t, got[0].Thread)
	require.NotNil(t, got[0].Thread.Post)
	assert.Equal(t, "Mein Tag", got[0].Thread.Post.Title)
}

func TestPostListByAuthorCursor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	other := createUser(t, db, "other")
	var ids []int
	for i := 0; i < 7; i++ {
		ids = append(ids, createPost(t, db, author, fmt.Sprintf("p%d", i)).ID)
	}
	createPost(t, db, other, "not mine")

	posts := NewPostRepository(db)
	page1, err := posts.ListByAuthor(ctx, author.ID, 0, 5)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.Equal(t, ids[6], page1[0].ID)

	page2, err := posts.ListByAuthor(ctx, author.ID, page1[4].ID, 5)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ids[0], page2[1].ID)

	allIDs, err := posts.ListIDsByAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, allIDs, 7)

	byIDs, err := posts.GetByIDs(ctx, []int{ids[2], 9999, ids[0]})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, ids[2], byIDs[0].ID)
	assert.Equal(t, ids[0], byIDs[1].ID)
}

func TestUserSearchAndDigest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	anna := createUser(t, db, "anna")
	createUser(t, db, "annika")
	createUser(t, db, "bob")
	createUser(t, db, "an_x")

	found, err := users.SearchByHandle(ctx, "ann", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = users.SearchByHandle(ctx, "an_", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "an_x", found[0].Handle)

	byLogin, err := users.GetByLogin(ctx, " ANNA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, anna.ID, byLogin.ID)

	require.NoError(t, users.UpdateDigestConfig(ctx, anna.ID, model.DigestDaily))
	due, err := users.ListDigestDue(ctx, model.DigestDaily, time.Now().UTC(), 0, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	due, err = users.ListDigestDue(ctx, model.DigestDaily, time.Now().UTC(), anna.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, users.TouchDigest(ctx, anna.ID, time.Now().UTC()))
	due, err = users.ListDigestDue(ctx, model.DigestDaily, time.Now().UTC().Add(-time.Hour), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDeliveryCreateBatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewDeliveryRepository(db)
	require.NoError(t, repo.CreateBatch(ctx, nil))
	require.NoError(t, repo.CreateBatch(ctx, []*model.EmailDelivery{
		{Kind: model.EmailKindThreadComment, RecipientID: 1, Status: model.DeliverySent, Attempts: 1},
		{Kind: model.EmailKindThreadComment, RecipientID: 2, Status: model.DeliveryFailed, Attempts: 3, LastError: "boom"},
	}))
	n, err := repo.CountByStatus(ctx, model.DeliveryFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
