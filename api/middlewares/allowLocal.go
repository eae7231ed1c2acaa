package middlewares

import (
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/gtranslate-ipcheck/tool"
)

// OnlyAllowLocal rejects requests that do not come from a loopback address.
func OnlyAllowLocal(c *gin.Context) {
	ip, err := netip.ParseAddr(c.ClientIP())
	if err != nil || !ip.Unmap().IsLoopback() {
		c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
		return
	}
	c.Next()
}
