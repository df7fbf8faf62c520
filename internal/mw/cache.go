package mw

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// ResponseCache keeps rendered GET responses until the state behind them
// changes. Every Flush starts a new generation; a response rendered during an
// older generation is never stored.
type ResponseCache struct {
	entries *cache.Cache
	ttl     time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewResponseCache creates a cache whose entries live for at most ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: cache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// teeWriter copies the response body while it is written to the client.
type teeWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Flush drops every cached response.
func (rc *ResponseCache) Flush() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generation++
	rc.entries.Flush()
}

// Len returns the number of cached responses.
func (rc *ResponseCache) Len() int {
	return rc.entries.ItemCount()
}

func (rc *ResponseCache) currentGeneration() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generation
}

func (rc *ResponseCache) storeIfCurrent(key string, generation uint64, resp cachedResponse) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if generation == rc.generation {
		rc.entries.Set(key, resp, rc.ttl)
	}
}

// Handler serves repeated GETs for the same URI from the cache. Only 2xx
// responses are kept.
func (rc *ResponseCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if v, found := rc.entries.Get(key); found {
			hit := v.(cachedResponse)
			for k, vals := range hit.header {
				c.Writer.Header()[k] = vals
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(hit.status)
			c.Writer.Write(hit.body)
			c.Abort()
			return
		}

		generation := rc.currentGeneration()
		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee

		c.Next()

		status := tee.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		header := tee.Header().Clone()
		header.Del(RequestIDHeader)
		rc.storeIfCurrent(key, generation, cachedResponse{
			status: status,
			header: header,
			body:   bytes.Clone(tee.body.Bytes()),
		})
	}
}

// Invalidate flushes the cache after every successful write request.
func (rc *ResponseCache) Invalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() < http.StatusBadRequest {
			rc.Flush()
		}
	}
}
