package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/gtranslate-ipcheck/share"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

// wantIPv6 reads ?family=ipv6|6; anything else selects IPv4.
func wantIPv6(c *gin.Context) bool {
	f := strings.ToLower(c.Query("family"))
	return f == "ipv6" || f == "6"
}

// Results returns the latest report of the requested family.
// GET /api/v1/results?family=ipv4|ipv6
func Results(c *gin.Context) {
	r, ok := share.GetReport(wantIPv6(c))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("No results yet"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(r))
}

// Best returns the fastest address of the latest report of the requested family.
// GET /api/v1/best?family=ipv4|ipv6
func Best(c *gin.Context) {
	best, ok := share.GetBest(wantIPv6(c))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("No results yet"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(best))
}

// bestOrAbort writes a 404 and reports false when there is nothing to bind yet.
func bestOrAbort(c *gin.Context) (types.RankedIP, bool) {
	best, ok := share.GetBest(wantIPv6(c))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("No results yet"))
	}
	return best, ok
}
