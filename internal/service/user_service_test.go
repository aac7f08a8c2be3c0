package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

func newUserService(f *fixture) (UserService, *jwt.Manager) {
	tokens := jwt.NewManager("test-secret", "journaly", time.Hour)
	return NewUserService(f.users, tokens, bcrypt.MinCost), tokens
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	svc, tokens := newUserService(f)
	ctx := context.Background()

	res, err := svc.Signup(ctx, SignupInput{Email: "Anna@Example.com ", Handle: "Anna_B", Name: "Anna", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", res.User.Email)
	assert.Equal(t, "anna_b", res.User.Handle)
	assert.Equal(t, model.DigestOff, res.User.DigestEmailConfig)
	assert.NotEqual(t, "correct horse", res.User.Password)

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	for _, ident := range []string{"anna@example.com", "ANNA_B"} {
		got, err := svc.Login(ctx, LoginInput{Identifier: ident, Password: "correct horse"})
		require.NoError(t, err, ident)
		assert.Equal(t, res.User.ID, got.User.ID)
	}

	_, err = svc.Login(ctx, LoginInput{Identifier: "anna_b", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Login(ctx, LoginInput{Identifier: "nobody", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignupRejectsDuplicatesAndBadInput(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Handle: "anna", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Email: "A@example.com", Handle: "other", Password: "password1"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Signup(ctx, SignupInput{Email: "b@example.com", Handle: "ANNA", Password: "password1"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Signup(ctx, SignupInput{Email: "not-an-email", Handle: "c", Password: "password1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Signup(ctx, SignupInput{Email: "c@example.com", Handle: "bad handle", Password: "password1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Signup(ctx, SignupInput{Email: "c@example.com", Handle: "cc", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCurrentUserAndLookup(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()
	u1 := f.user(t, "u1")

	me, err := svc.CurrentUser(ctx, Anonymous)
	require.NoError(t, err)
	assert.Nil(t, me)

	me, err = svc.CurrentUser(ctx, Actor{UserID: u1.ID})
	require.NoError(t, err)
	assert.Equal(t, "u1", me.Handle)

	_, err = svc.UserByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()
	for _, h := range []string{"kenji", "kendra", "kate", "ken_", "bob"} {
		f.user(t, h)
	}

	got, err := svc.SearchUsers(ctx, "Ken")
	require.NoError(t, err)
	handles := make([]string, len(got))
	for i, u := range got {
		handles[i] = u.Handle
	}
	assert.Equal(t, []string{"ken_", "kendra", "kenji"}, handles)

	got, err = svc.SearchUsers(ctx, "ken_")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = svc.SearchUsers(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	for i := 0; i < 15; i++ {
		f.user(t, "zz"+string(rune('a'+i)))
	}
	got, err = svc.SearchUsers(ctx, "zz")
	require.NoError(t, err)
	assert.Len(t, got, maxSearchResults)
}

func TestUpdateDigestEmailConfig(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(f)
	ctx := context.Background()
	u1 := f.user(t, "u1")

	_, err := svc.UpdateDigestEmailConfig(ctx, Anonymous, model.DigestDaily)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.UpdateDigestEmailConfig(ctx, Actor{UserID: u1.ID}, "HOURLY")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.UpdateDigestEmailConfig(ctx, Actor{UserID: u1.ID}, model.DigestWeekly)
	require.NoError(t, err)
	assert.Equal(t, model.DigestWeekly, got.DigestEmailConfig)
}
