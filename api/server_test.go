package api

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/gtranslate-ipcheck/notify"
	"github.com/moyoez/gtranslate-ipcheck/share"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

type fakeTrigger struct {
	running atomic.Bool
	runs    atomic.Int32
	paused  atomic.Int32
}

func (f *fakeTrigger) RunNow() bool {
	if !f.running.Load() {
		return false
	}
	f.runs.Add(1)
	return true
}
func (f *fakeTrigger) IsRunning() bool { return f.running.Load() }
func (f *fakeTrigger) IsPaused() bool  { return f.paused.Load() > 0 }
func (f *fakeTrigger) Pause()          { f.paused.Add(1) }
func (f *fakeTrigger) Resume()         { f.paused.Add(-1) }

func newTestServer(t *testing.T, trigger *fakeTrigger) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	notify.SetUseNotify(false)
	t.Cleanup(func() { notify.SetUseNotify(true) })
	share.ResetReports()
	t.Cleanup(share.ResetReports)
	tool.CurrentConfig = tool.DefaultConfig()
	if trigger == nil {
		return NewServer("127.0.0.1:0", nil)
	}
	return NewServer("127.0.0.1:0", trigger)
}

func do(s *Server, method, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func storeReport() {
	share.SetLatestReport(types.RunReport{
		RunID:  "abcd1234",
		Ranked: []types.RankedIP{{Address: "142.250.1.2", LatencyMs: 45}, {Address: "142.250.1.1", LatencyMs: 120}},
		Best:   types.RankedIP{Address: "142.250.1.2", LatencyMs: 45},
		Bound:  true,
	})
}

func TestOnlyLocalClients(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(s, http.MethodGet, "/api/v1/status", "192.0.2.10:40000")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(s, http.MethodGet, "/api/v1/status", "[::1]:40000")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatus(t *testing.T) {
	trigger := &fakeTrigger{}
	trigger.running.Store(true)
	s := newTestServer(t, trigger)
	storeReport()

	w := do(s, http.MethodGet, "/api/v1/status", "127.0.0.1:40000")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["running"])
	assert.Equal(t, false, data["paused"])
	lastRun := data["last_run"].(map[string]any)
	assert.Equal(t, "abcd1234", lastRun["run_id"])
	assert.Equal(t, "142.250.1.2", lastRun["best"].(map[string]any)["address"])
}

func TestResultsAndBest(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(s, http.MethodGet, "/api/v1/best", "127.0.0.1:40000")
	assert.Equal(t, http.StatusNotFound, w.Code)

	storeReport()
	w = do(s, http.MethodGet, "/api/v1/best", "127.0.0.1:40000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "142.250.1.2", decode(t, w)["data"].(map[string]any)["address"])

	w = do(s, http.MethodGet, "/api/v1/results", "127.0.0.1:40000")
	require.Equal(t, http.StatusOK, w.Code)
	ranked := decode(t, w)["data"].(map[string]any)["ranked"].([]any)
	assert.Len(t, ranked, 2)

	w = do(s, http.MethodGet, "/api/v1/results?family=ipv6", "127.0.0.1:40000")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanNowAndPause(t *testing.T) {
	trigger := &fakeTrigger{}
	s := newTestServer(t, trigger)

	w := do(s, http.MethodPost, "/api/v1/scan-now", "127.0.0.1:40000")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	trigger.running.Store(true)
	w = do(s, http.MethodPost, "/api/v1/scan-now", "127.0.0.1:40000")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, int32(1), trigger.runs.Load())

	w = do(s, http.MethodPost, "/api/v1/pause", "127.0.0.1:40000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, trigger.IsPaused())
	w = do(s, http.MethodPost, "/api/v1/resume", "127.0.0.1:40000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, trigger.IsPaused())
}

func TestHostsLinesAndQRCode(t *testing.T) {
	s := newTestServer(t, nil)
	storeReport()

	w := do(s, http.MethodGet, "/api/v1/hosts/lines", "127.0.0.1:40000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "142.250.1.2 translate.googleapis.com\n142.250.1.2 translate.google.com\n", w.Body.String())

	w = do(s, http.MethodGet, "/api/v1/hosts/qrcode?size=300x300", "127.0.0.1:40000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(s, http.MethodGet, "/metrics", "127.0.0.1:40000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestNotifyWebSocket(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notify"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	notify.SetNotifyHub(s.hub)
	defer notify.SetNotifyHub(nil)
	require.NoError(t, notify.SendHostsBound("142.250.1.2", []string{"translate.googleapis.com"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var n types.Notification
	require.NoError(t, sonic.Unmarshal(msg, &n))
	assert.Equal(t, types.NotifyTypeHostsBound, n.Type)
}

func TestNotifyWebSocketRejectsForeignOrigin(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notify"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:8080"}})
	require.NoError(t, err)
	conn.Close()
}
