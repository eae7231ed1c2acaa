package controllers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/gtranslate-ipcheck/share"
	"github.com/moyoez/gtranslate-ipcheck/tool"
)

// RunTrigger controls the background run loop.
type RunTrigger interface {
	RunNow() bool
	IsRunning() bool
	IsPaused() bool
	Pause()
	Resume()
}

var (
	triggerMu sync.RWMutex
	trigger   RunTrigger
)

// SetRunTrigger installs the loop the run endpoints act on.
func SetRunTrigger(t RunTrigger) {
	triggerMu.Lock()
	defer triggerMu.Unlock()
	trigger = t
}

func getRunTrigger() RunTrigger {
	triggerMu.RLock()
	defer triggerMu.RUnlock()
	return trigger
}

// Status reports the loop state and a summary of the latest run.
// GET /api/v1/status
func Status(c *gin.Context) {
	data := gin.H{"running": false, "paused": false}
	if t := getRunTrigger(); t != nil {
		data["running"] = t.IsRunning()
		data["paused"] = t.IsPaused()
	}
	if r, ok := share.GetLatestReport(); ok {
		data["last_run"] = gin.H{
			"run_id":      r.RunID,
			"finished_at": r.FinishedAt,
			"ipv6":        r.IPv6,
			"best":        r.Best,
			"bound":       r.Bound,
		}
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(data))
}

// ScanNow asks the loop for an immediate run. The run happens in the background.
// POST /api/v1/scan-now
func ScanNow(c *gin.Context) {
	t := getRunTrigger()
	if t == nil || !t.RunNow() {
		c.JSON(http.StatusServiceUnavailable, tool.FastReturnError("Run loop is not running"))
		return
	}
	c.JSON(http.StatusAccepted, tool.FastReturnSuccess())
}

// Pause stops scheduled runs until Resume; scan-now still works.
// POST /api/v1/pause
func Pause(c *gin.Context) {
	t := getRunTrigger()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, tool.FastReturnError("Run loop is not running"))
		return
	}
	t.Pause()
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// POST /api/v1/resume
func Resume(c *gin.Context) {
	t := getRunTrigger()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, tool.FastReturnError("Run loop is not running"))
		return
	}
	t.Resume()
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
