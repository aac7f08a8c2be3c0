package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: login required", service.ErrUnauthenticated), http.StatusUnauthorized},
		{fmt.Errorf("%w: thread 3", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not the author", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: body is blank", service.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: handle taken", service.ErrConflict), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	h := &Handler{}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		h.fail(c, tc.err)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	(&Handler{}).fail(c, errors.New("pq: password authentication failed"))
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestViewUserShowsEmailOnlyToSelf(t *testing.T) {
	u := &model.User{ID: 7, Email: "a@example.com", Handle: "a", DigestEmailConfig: model.DigestOff}

	assert.Equal(t, "a@example.com", viewUser(u, 7).Email)
	assert.Empty(t, viewUser(u, 8).Email)
	assert.Empty(t, viewUser(u, 0).Email)
	assert.Nil(t, viewUser(nil, 7))

	views := viewUsers([]*model.User{u, {ID: 8, Email: "b@example.com"}}, 8)
	assert.Empty(t, views[0].Email)
	assert.Equal(t, "b@example.com", views[1].Email)
}

func TestPathIDRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"0", "-1", "abc"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := pathID(c, "id")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, 42, id)
}

func TestActorRequiresLogin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	_, ok := (&Handler{}).actor(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
