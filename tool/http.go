package tool

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

var (
	// RemoteListTimeout bounds downloads of candidate lists and published ranges.
	RemoteListTimeout = 10 * time.Second
	RemoteHttpClient  *http.Client
)

func init() {
	RemoteHttpClient = &http.Client{Timeout: RemoteListTimeout}
}

// NewProbeHTTPClient creates the client shared by all probes of one run.
// serverName is sent as TLS SNI and checked against the certificate, so a raw IP target still
// reaches the intended virtual host. Keep-alives are disabled: every probe opens a fresh
// connection and its elapsed time includes the handshake.
func NewProbeHTTPClient(serverName string, insecureSkipVerify bool, maxConns int) *http.Client {
	dialer := &net.Dialer{
		KeepAlive: -1,
	}
	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: insecureSkipVerify,
		},
		DisableKeepAlives: true,
		MaxIdleConns:      maxConns,
		ForceAttemptHTTP2: true,
	}
	return &http.Client{
		Transport: transport,
		// the probe context carries the deadline
		Timeout: 0,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func GetRemoteHttpClient() *http.Client {
	return RemoteHttpClient
}
