package probe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// icmpProbeTimeout bounds the echo precheck, it should stay well below the HTTP timeout.
const icmpProbeTimeout = 500 * time.Millisecond

// quickICMPProbe sends one echo request and reports whether a reply arrived.
func quickICMPProbe(ctx context.Context, addr string, timeout time.Duration) error {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		return err
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	// unprivileged udp ping is not available on windows
	pinger.SetPrivileged(runtime.GOOS == "windows")
	if err := pinger.RunWithContext(ctx); err != nil {
		return err
	}
	if pinger.Statistics().PacketsRecv == 0 {
		return fmt.Errorf("no echo reply within %s", timeout)
	}
	return nil
}
