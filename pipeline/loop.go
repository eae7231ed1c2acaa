package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/moyoez/gtranslate-ipcheck/tool"
)

// Loop repeats a Runner on an interval. Runs never overlap.
type Loop struct {
	runner   *Runner
	interval time.Duration

	controlMu sync.Mutex
	running   bool
	restartCh chan struct{}

	runMu      sync.Mutex
	pauseCount atomic.Int32
}

// NewLoop creates a loop; interval <= 0 runs only when RunNow is called.
func NewLoop(r *Runner, interval time.Duration) *Loop {
	return &Loop{runner: r, interval: interval, restartCh: make(chan struct{}, 1)}
}

// Run blocks until ctx is done. With runFirst it starts with an immediate run.
// A RunNow signal runs at once and resets the ticker. Paused ticks are skipped.
func (l *Loop) Run(ctx context.Context, runFirst bool) {
	l.controlMu.Lock()
	l.running = true
	l.controlMu.Unlock()
	defer func() {
		l.controlMu.Lock()
		l.running = false
		l.controlMu.Unlock()
	}()

	var ticker *time.Ticker
	var tickCh <-chan time.Time
	if l.interval > 0 {
		ticker = time.NewTicker(l.interval)
		defer ticker.Stop()
		tickCh = ticker.C
		tool.DefaultLogger.Infof("Repeating every %s", l.interval)
	}

	if runFirst {
		l.runOnce(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			tool.DefaultLogger.Info("Loop stopped")
			return
		case <-l.restartCh:
			if ticker != nil {
				ticker.Reset(l.interval)
			}
			l.runOnce(ctx)
		case <-tickCh:
			if l.IsPaused() {
				tool.DefaultLogger.Debug("Loop paused, skipping this tick")
				continue
			}
			l.runOnce(ctx)
		}
	}
}

func (l *Loop) runOnce(ctx context.Context) {
	l.runMu.Lock()
	defer l.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if _, err := l.runner.RunOnce(ctx); err != nil {
		tool.DefaultLogger.Errorf("Run failed: %v", err)
	}
}

// RunNow asks a running loop for an immediate run. It reports false when no loop is
// running; a request while one is already pending is merged into it.
func (l *Loop) RunNow() bool {
	l.controlMu.Lock()
	defer l.controlMu.Unlock()
	if !l.running {
		return false
	}
	select {
	case l.restartCh <- struct{}{}:
		tool.DefaultLogger.Info("Run now signal sent")
	default:
		tool.DefaultLogger.Debug("Run now signal already pending")
	}
	return true
}

// IsRunning reports whether Run is active.
func (l *Loop) IsRunning() bool {
	l.controlMu.Lock()
	defer l.controlMu.Unlock()
	return l.running
}

// Pause increments the pause counter; ticks are skipped until every Pause is matched by Resume.
func (l *Loop) Pause() {
	n := l.pauseCount.Add(1)
	tool.DefaultLogger.Debugf("Loop paused (count=%d)", n)
}

func (l *Loop) Resume() {
	if n := l.pauseCount.Add(-1); n < 0 {
		l.pauseCount.Store(0)
	}
}

func (l *Loop) IsPaused() bool {
	return l.pauseCount.Load() > 0
}
