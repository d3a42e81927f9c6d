// Package httpclient issues cancellable API calls and tracks whether any are
// in flight and the last failure, for a single consumer such as a CLI or UI.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Log        *logger.Logger
}

type Manager struct {
	log  *logger.Logger
	http *http.Client

	life context.Context
	stop context.CancelFunc

	group singleflight.Group

	mu       sync.Mutex
	handles  map[uint64]context.CancelFunc
	nextID   uint64
	inflight int
	lastErr  string
	closed   bool
}

func NewManager(opts Options) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	life, stop := context.WithCancel(context.Background())
	return &Manager{
		log:     log.With("client", "RequestManager"),
		http:    hc,
		life:    life,
		stop:    stop,
		handles: map[uint64]context.CancelFunc{},
	}
}

// SendRequest issues one call and returns the raw JSON payload of a 2xx
// response. Non-2xx responses return *HTTPError and record its message.
// Cancellation returns ErrCanceled and records nothing. Concurrent GETs with
// the same url and headers share one network call.
func (m *Manager) SendRequest(ctx context.Context, url, method string, body io.Reader, headers map[string]string) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	id, reqCtx, ok := m.begin(ctx)
	if !ok {
		return nil, ErrCanceled
	}
	defer m.end(id)

	var (
		raw json.RawMessage
		err error
	)
	if method == http.MethodGet && body == nil {
		raw, err = m.sharedGet(reqCtx, url, headers)
	} else {
		raw, err = m.do(reqCtx, method, url, body, headers)
	}
	if err == nil {
		return raw, nil
	}

	if errors.Is(reqCtx.Err(), context.Canceled) || errors.Is(err, ErrCanceled) {
		return nil, ErrCanceled
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		m.setError(herr.Message)
		return nil, herr
	}
	m.log.Warn("Request failed", "method", method, "url", url, "error", err)
	m.setError(err.Error())
	return nil, err
}

// Loading reports whether any request is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight > 0
}

// Err returns the last recorded failure message, or "".
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	m.lastErr = ""
	m.mu.Unlock()
}

// Close cancels every active request. Later sends fail with ErrCanceled.
// Safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, cancel := range m.handles {
		cancel()
	}
	m.stop()
}

func (m *Manager) begin(ctx context.Context) (uint64, context.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, nil, false
	}
	reqCtx, cancel := context.WithCancel(ctx)
	m.nextID++
	id := m.nextID
	m.handles[id] = cancel
	m.inflight++
	return id, reqCtx, true
}

func (m *Manager) end(id uint64) {
	m.mu.Lock()
	cancel := m.handles[id]
	delete(m.handles, id)
	m.inflight--
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

// sharedGet joins an identical in-flight GET. The shared call is bound to the
// manager's lifetime; each caller only stops waiting when its own ctx ends.
func (m *Manager) sharedGet(ctx context.Context, url string, headers map[string]string) (json.RawMessage, error) {
	ch := m.group.DoChan(dedupeKey(url, headers), func() (any, error) {
		return m.do(m.life, http.MethodGet, url, nil, headers)
	})
	select {
	case <-ctx.Done():
		return nil, ErrCanceled
	case res := <-ch:
		if res.Err != nil {
			if m.life.Err() != nil {
				return nil, ErrCanceled
			}
			return nil, res.Err
		}
		raw, _ := res.Val.(json.RawMessage)
		return append(json.RawMessage(nil), raw...), nil
	}
}

func (m *Manager) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp.StatusCode, raw)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

func dedupeKey(url string, headers map[string]string) string {
	lines := make([]string, 0, len(headers))
	for k, v := range headers {
		lines = append(lines, http.CanonicalHeaderKey(k)+"="+v)
	}
	sort.Strings(lines)
	return url + "\n" + strings.Join(lines, "\n")
}
