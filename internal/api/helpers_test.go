package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartwaste-backend/config"
	"smartwaste-backend/internal/db"
	"smartwaste-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type published struct {
	Type string
	Data any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) Publish(msgType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{Type: msgType, Data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.Type
	}
	return out
}

type testEnv struct {
	state     *store.State
	db        *gorm.DB
	publisher *recordingPublisher
	router    *gin.Engine
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	return gdb
}

func newTestEnv(t *testing.T, webpushOptions *webpush.Options) *testEnv {
	t.Helper()

	state, err := store.New(store.DefaultSeed("2026-10-18"))
	require.NoError(t, err)

	env := &testEnv{
		state:     state,
		db:        newTestDB(t),
		publisher: &recordingPublisher{},
	}

	handler := NewHandler(state, env.db, env.publisher, webpushOptions)
	env.router = NewRouter(handler, routerConfig(), nil, nil)
	return env
}

func routerConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.RateLimitPerSec = 1000
	cfg.RateLimitBurst = 1000
	cfg.CacheTTL = time.Minute
	return cfg
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
