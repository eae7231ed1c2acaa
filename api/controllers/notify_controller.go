package controllers

import (
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/gtranslate-ipcheck/api/notifyhub"
	"github.com/moyoez/gtranslate-ipcheck/tool"
)

// the feed is server-push only; clients never send more than control frames
const maxClientMessage = 512

var runEventsUpgrader = websocket.Upgrader{
	HandshakeTimeout: 5 * time.Second,
	ReadBufferSize:   maxClientMessage,
	WriteBufferSize:  4096,
	CheckOrigin:      loopbackOrigin,
}

// loopbackOrigin accepts non-browser clients (no Origin) and pages served from localhost.
func loopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Hostname() == "localhost" {
		return true
	}
	ip, err := netip.ParseAddr(u.Hostname())
	return err == nil && ip.Unmap().IsLoopback()
}

// HandleNotifyWS streams run events (run start/end, best address changes, hosts
// updates) to a websocket client until it disconnects.
// GET /api/v1/notify
func HandleNotifyWS(hub *notifyhub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := runEventsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			tool.DefaultLogger.Debugf("Run events upgrade from %s failed: %v", c.ClientIP(), err)
			return
		}
		conn.SetReadLimit(maxClientMessage)

		hub.Register(conn)
		tool.DefaultLogger.Debugf("Run events subscriber %s connected (%d total)", c.ClientIP(), hub.Len())
		defer func() {
			hub.Unregister(conn)
			_ = conn.Close()
			tool.DefaultLogger.Debugf("Run events subscriber %s left", c.ClientIP())
		}()

		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}
}
