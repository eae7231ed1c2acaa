package probe

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

// httptest certificates are issued for example.com and the loopback addresses.
const testVirtualHost = "example.com"

func startBackend(t *testing.T, h http.HandlerFunc) (addr string, port int, srv *httptest.Server) {
	t.Helper()
	srv = httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)
	tcp := srv.Listener.Addr().(*net.TCPAddr)
	return tcp.IP.String(), tcp.Port, srv
}

func translateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Host != testVirtualHost || r.URL.Path != "/translate_a/single" {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(`[[["Hello","你好",null,null,10]],null,"zh-CN"]`))
}

func newTestProber(port int, timeout time.Duration, v ResponseValidator) *HTTPProber {
	opts := types.ProbeOptions{
		VirtualHost:        testVirtualHost,
		Path:               "/translate_a/single",
		Query:              "client=gtx&sl=zh-CN&tl=en&dt=t&q=你好",
		Port:               port,
		Timeout:            timeout,
		InsecureSkipVerify: true,
	}
	return NewHTTPProber(opts, v, nil)
}

func TestProbeOnceSuccess(t *testing.T) {
	addr, port, _ := startBackend(t, translateHandler)
	p := newTestProber(port, 2*time.Second, Contains("Hello"))

	res := p.ProbeOnce(context.Background(), addr)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, addr, res.Address)
	assert.GreaterOrEqual(t, res.ElapsedMillis, int64(0))
}

func TestProbeOnceVerifiesVirtualHostCertificate(t *testing.T) {
	addr, port, srv := startBackend(t, translateHandler)
	client := tool.NewProbeHTTPClient(testVirtualHost, false, 0)
	client.Transport.(*http.Transport).TLSClientConfig.RootCAs = srv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs

	opts := types.ProbeOptions{VirtualHost: testVirtualHost, Path: "/translate_a/single", Port: port, Timeout: 2 * time.Second}
	res := NewHTTPProber(opts, Contains("Hello"), client).ProbeOnce(context.Background(), addr)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)

	// a name the certificate does not cover fails the handshake
	bad := tool.NewProbeHTTPClient("translate.invalid", false, 0)
	bad.Transport.(*http.Transport).TLSClientConfig.RootCAs = srv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs
	opts.VirtualHost = "translate.invalid"
	res = NewHTTPProber(opts, Contains("Hello"), bad).ProbeOnce(context.Background(), addr)
	assert.False(t, res.Success)
	assert.True(t, IsUnreachable(res.Err))
	var certErr *tls.CertificateVerificationError
	assert.ErrorAs(t, res.Err, &certErr)
}

func TestProbeOnceBodyMismatch(t *testing.T) {
	addr, port, _ := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>captcha</html>"))
	})
	res := newTestProber(port, 2*time.Second, Contains("Hello")).ProbeOnce(context.Background(), addr)
	assert.False(t, res.Success)
	assert.NoError(t, res.Err)
}

func TestProbeOnceBadStatus(t *testing.T) {
	addr, port, _ := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Hello"))
	})
	res := newTestProber(port, 2*time.Second, Contains("Hello")).ProbeOnce(context.Background(), addr)
	assert.False(t, res.Success)
	assert.NoError(t, res.Err)
}

func TestProbeOnceTimeout(t *testing.T) {
	addr, port, _ := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})
	res := newTestProber(port, 100*time.Millisecond, Contains("Hello")).ProbeOnce(context.Background(), addr)
	assert.False(t, res.Success)
	assert.True(t, IsTimeout(res.Err), "got %v", res.Err)
}

func TestProbeOnceUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	res := newTestProber(port, time.Second, Contains("Hello")).ProbeOnce(context.Background(), "127.0.0.1")
	assert.False(t, res.Success)
	assert.True(t, IsUnreachable(res.Err), "got %v", res.Err)
}

func TestProbeOnceInvalidAddress(t *testing.T) {
	res := newTestProber(443, time.Second, nil).ProbeOnce(context.Background(), "not-an-ip")
	assert.False(t, res.Success)
	assert.True(t, IsUnreachable(res.Err))
}
