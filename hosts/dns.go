package hosts

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/moyoez/gtranslate-ipcheck/tool"
)

// flushCommand returns the command that clears the resolver cache on goos.
func flushCommand(goos string) (name string, args []string, ok bool) {
	switch goos {
	case "windows":
		return "ipconfig", []string{"/flushdns"}, true
	case "darwin":
		return "killall", []string{"-HUP", "mDNSResponder"}, true
	case "linux":
		return "systemctl", []string{"restart", "systemd-resolved"}, true
	}
	return "", nil, false
}

// FlushDNS clears the OS resolver cache so a new hosts mapping takes effect.
func FlushDNS(ctx context.Context) error {
	name, args, ok := flushCommand(runtime.GOOS)
	if !ok {
		return ErrUnsupportedPlatform
	}
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if s := strings.TrimSpace(string(out)); s != "" {
		tool.DefaultLogger.Info(s)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	tool.DefaultLogger.Info("DNS cache flushed")
	return nil
}
