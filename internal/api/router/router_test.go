package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/journaly/config"
	"github.com/d60-Lab/journaly/internal/cache"
	"github.com/d60-Lab/journaly/internal/mailer"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/database"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

type testServer struct {
	engine *gin.Engine
	mail   *mailer.Recorder
	mr     *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rec := mailer.NewRecorder()
	tokens := jwt.NewManager("secret", "journaly", time.Hour)
	notifier := service.NewNotifier(rec, repository.NewDeliveryRepository(db), service.NotifierConfig{
		SiteDomain: "journaly.com",
		Retry:      mailer.RetryPolicy{Attempts: 1, Delay: time.Millisecond},
	})
	svc := service.NewServices(db, service.Deps{
		Notifier:   notifier,
		Tokens:     tokens,
		PostIndex:  cache.NewPostIndex(rdb, time.Minute),
		BcryptCost: bcrypt.MinCost,
	})

	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}
	engine := Setup(cfg, Deps{Services: svc, Tokens: tokens, DB: db, Redis: rdb})
	return &testServer{engine: engine, mail: rec, mr: mr}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) signup(t *testing.T, handle string) (token string, id int) {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": handle + "@example.com", "handle": handle, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var res struct {
		Token string
		User  struct{ ID int }
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token, res.User.ID
}

func decodeID(t *testing.T, raw json.RawMessage) int {
	t.Helper()
	var v struct{ ID int }
	require.NoError(t, json.Unmarshal(raw, &v))
	return v.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","redis":"ok"}}`, w.Body.String())

	s.mr.Close()
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestThreadWorkflowOverREST(t *testing.T) {
	s := newTestServer(t)
	t1, _ := s.signup(t, "u1")
	t2, _ := s.signup(t, "u2")
	t3, _ := s.signup(t, "u3")

	code, env := s.do(t, http.MethodPost, "/api/v1/posts", t1, map[string]string{"title": "Mein Tag", "body": "Ich bin gegangen"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	postID := decodeID(t, env.Data)
	assert.NotContains(t, string(env.Data), "@example.com")

	code, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/threads", postID), t2, map[string]interface{}{
		"start_index": 0, "end_index": 3, "highlighted_content": "Ich",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	threadID := decodeID(t, env.Data)

	code, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/threads/%d/comments", threadID), t3, map[string]string{"body": "Ich ging"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		Comment       struct{ ID int }
		Notifications struct{ Attempted, Failed int }
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 1, created.Notifications.Attempted)
	assert.Equal(t, []string{"u1@example.com"}, s.mail.Recipients())

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/threads/%d", threadID), "", nil)
	require.Equal(t, http.StatusOK, code)
	var fetched struct {
		HighlightedContent string `json:"highlighted_content"`
		Comments           []struct{ Body string }
	}
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "Ich", fetched.HighlightedContent)
	require.Len(t, fetched.Comments, 1)
	assert.Equal(t, "Ich ging", fetched.Comments[0].Body)
	code, _ = s.do(t, http.MethodGet, "/api/v1/threads/999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	commentPath := fmt.Sprintf("/api/v1/comments/%d", created.Comment.ID)
	code, _ = s.do(t, http.MethodPut, commentPath, t2, map[string]string{"body": "hijack"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPut, commentPath, "", map[string]string{"body": "anon"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPut, commentPath, t3, map[string]string{"body": "Ich ging gestern"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Ich ging gestern")

	code, _ = s.do(t, http.MethodDelete, commentPath, t3, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, commentPath, t3, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUnauthenticatedMutationWithBadBody(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/api/v1/posts/abc/threads", "", "not an object")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProfilePostsAndUserLookup(t *testing.T) {
	s := newTestServer(t)
	t1, id1 := s.signup(t, "u1")
	t2, _ := s.signup(t, "u2")
	for i := 0; i < 3; i++ {
		code, _ := s.do(t, http.MethodPost, "/api/v1/posts", t1, map[string]string{"title": fmt.Sprintf("T%d", i), "body": "x"})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/posts?limit=2", id1), "", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		List       []struct{ Title string }
		NextCursor int `json:"next_cursor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.List, 2)
	assert.Equal(t, "T2", page.List[0].Title)

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/posts?limit=2&cursor=%d", id1, page.NextCursor), "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.List, 1)
	assert.Equal(t, "T0", page.List[0].Title)

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id1), t2, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "u1@example.com")

	code, env = s.do(t, http.MethodGet, "/api/v1/users/me", t1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "u1@example.com")

	code, env = s.do(t, http.MethodPut, "/api/v1/users/me/digest", t1, map[string]string{"digest_email_config": "DAILY"})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), `"DAILY"`)

	code, env = s.do(t, http.MethodGet, "/api/v1/users?search=u", "", nil)
	require.Equal(t, http.StatusOK, code)
	var users []struct{ Handle string }
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)
}

func TestGraphQLEndpointUsesBearerToken(t *testing.T) {
	s := newTestServer(t)
	token, id := s.signup(t, "u1")

	body, err := json.Marshal(map[string]string{"query": "{ currentUser { id handle } }"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"data":{"currentUser":{"id":%d,"handle":"u1"}}}`, id), w.Body.String())
}

func TestSwaggerRoute(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/threads/{id}/comments")
}
