package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salescoach-api/internal/coach"
	"github.com/wolfman30/salescoach-api/internal/kv"
	"github.com/wolfman30/salescoach-api/internal/llm"
	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

// queueLLM answers with queued replies, then a fixed default.
type queueLLM struct {
	mu      sync.Mutex
	replies []string
}

func (q *queueLLM) Complete(_ context.Context, _ llm.Request) (llm.Response, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.replies) == 0 {
		return llm.Response{Text: "*nods* Go on."}, nil
	}
	next := q.replies[0]
	q.replies = q.replies[1:]
	return llm.Response{Text: next}, nil
}

type testEnv struct {
	handler  http.Handler
	redis    *miniredis.Miniredis
	sessions *session.Reducer
	llm      *queueLLM
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewCoachMetrics(reg)
	logger := logging.Discard()
	sessions := session.NewReducer(kv.NewRedisStore(client, nil),
		session.WithLogger(logger),
		session.WithMetrics(m),
	)
	fake := &queueLLM{}
	svc := coach.NewService(fake, sessions,
		coach.WithLogger(logger),
		coach.WithMetrics(m, reg),
	)

	return &testEnv{
		handler: New(&Config{
			Logger:             logger,
			Coach:              coach.NewHandler(svc, logger),
			MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			CORSAllowedOrigins: []string{"https://app.example.com"},
		}),
		redis:    mr,
		sessions: sessions,
		llm:      fake,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body, sid string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sid != "" {
		req.Header.Set("X-Session-ID", sid)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.sessions.Flush(ctx))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func TestRouterHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode(t, rr)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["aiConfigured"])
	assert.Regexp(t, `^sess_\d+_[0-9a-z]{9}$`, rr.Header().Get("X-Session-ID"))
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterStatusAliases(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/status", "/api/status"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "operational", decode(t, rr)["status"])
	}
}

func TestRouterNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/api/chat/send"},
	} {
		rr := env.do(t, tc.method, tc.path, "", "")
		require.Equal(t, http.StatusNotFound, rr.Code, tc.path)
		resp := decode(t, rr)
		assert.Equal(t, "Not found", resp["error"])
		assert.Equal(t, tc.path, resp["path"])
		assert.Equal(t, tc.method, resp["method"])
	}
}

func TestRouterPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/roleplay/respond", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "X-Session-ID", rr.Header().Get("Access-Control-Expose-Headers"))
}

func TestRouterRoleplayFlowPersistsToRedis(t *testing.T) {
	env := newTestEnv(t)
	const sid = "sess_1700000000000_abcdefghi"

	rr := env.do(t, http.MethodPost, "/api/roleplay/start", `{"scenarioId":"onc-1"}`, sid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, sid, rr.Header().Get("X-Session-ID"))

	key := "sess:" + sid
	require.True(t, env.redis.Exists(key))
	assert.Equal(t, 24*time.Hour, env.redis.TTL(key))

	env.llm.replies = []string{"*crosses arms* I've heard that before.", `{"empathy":4}`}
	rr = env.do(t, http.MethodPost, "/api/roleplay/respond", `{"message":"Our data shows fewer readmissions."}`, sid)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, "*crosses arms* I've heard that before.", resp["reply"])
	signals := resp["signals"].([]any)
	require.Len(t, signals, 1)
	assert.Equal(t, "engagement", signals[0].(map[string]any)["type"])

	stored, err := env.redis.Get(key)
	require.NoError(t, err)
	var st session.State
	require.NoError(t, json.Unmarshal([]byte(stored), &st))
	require.NotNil(t, st.Roleplay)
	assert.Len(t, st.Roleplay.Messages, 3)
	assert.Len(t, st.Signals, 1)

	rr = env.do(t, http.MethodPost, "/api/roleplay/end", "", sid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode(t, rr), "analysis")

	rr = env.do(t, http.MethodGet, "/api/roleplay/session", "", sid)
	assert.Equal(t, false, decode(t, rr)["active"])

	rr = env.do(t, http.MethodPost, "/api/roleplay/respond", `{"message":"hello?"}`, sid)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRouterChatAndSummaryAlias(t *testing.T) {
	env := newTestEnv(t)
	const sid = "sess_chat"

	env.llm.replies = []string{"Lead with a question."}
	rr := env.do(t, http.MethodPost, "/api/chat/send", `{"message":"How do I open?"}`, sid)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/chat/messages", "", sid)
	msgs := decode(t, rr)["messages"].([]any)
	assert.Len(t, msgs, 2)

	env.llm.replies = []string{"Summary text"}
	rr = env.do(t, http.MethodPost, "/summary", "", sid)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Summary text", decode(t, rr)["summary"])

	rr = env.do(t, http.MethodPost, "/api/chat/clear", "", sid)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/chat/messages", "", sid)
	assert.Empty(t, decode(t, rr)["messages"])
}

func TestRouterMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.replies = []string{"*leans forward* Tell me more."}
	env.do(t, http.MethodPost, "/api/roleplay/start", `{"scenarioId":"s"}`, "sess_m")
	env.do(t, http.MethodPost, "/api/roleplay/respond", `{"message":"hi"}`, "sess_m")

	rr := env.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `salescoach_signals_extracted_total{type="engagement"} 1`)
}
