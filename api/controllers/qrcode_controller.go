package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/gtranslate-ipcheck/hosts"
	"github.com/moyoez/gtranslate-ipcheck/tool"
)

const (
	defaultQRSize = 256
	maxQRSize     = 512
)

// HostsLines returns the hosts entries for the current fastest address as plain text.
// GET /api/v1/hosts/lines?family=ipv4|ipv6
func HostsLines(c *gin.Context) {
	best, ok := bestOrAbort(c)
	if !ok {
		return
	}
	lines := hosts.Lines(best.Address, tool.GetCurrentConfig().HostNames)
	c.String(http.StatusOK, strings.Join(lines, "\n")+"\n")
}

// HostsQRCode returns the hosts entries as a PNG QR code, for copying onto another device.
// GET /api/v1/hosts/qrcode?family=ipv4|ipv6&size=256x256
func HostsQRCode(c *gin.Context) {
	best, ok := bestOrAbort(c)
	if !ok {
		return
	}
	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	text := strings.Join(hosts.Lines(best.Address, tool.GetCurrentConfig().HostNames), "\n")
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
