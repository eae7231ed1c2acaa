package tool

import (
	"flag"
	"os"

	"github.com/moyoez/gtranslate-ipcheck/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	return parseFlags(flag.CommandLine, nil)
}

func parseFlags(fs *flag.FlagSet, args []string) types.Config {
	var cfg types.Config
	fs.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	fs.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path (.yaml or .json)")
	fs.BoolVar(&cfg.UseIPv6, "6", false, "scan and rank IPv6 addresses (uses ipv6Range and ipv6File)")
	fs.BoolVar(&cfg.AutoConfirm, "y", false, "write the hosts file without asking")
	fs.BoolVar(&cfg.ForceScan, "s", false, "ignore the candidate list and scan the configured ranges")
	fs.BoolVar(&cfg.ScanOnly, "scanOnly", false, "only write the ranked list, do not touch the hosts file")
	fs.IntVar(&cfg.Interval, "interval", 0, "repeat every N seconds, 0 runs once")
	fs.BoolVar(&cfg.Serve, "serve", false, "start the local status API (see listen in config)")
	fs.BoolVar(&cfg.RefreshRanges, "refreshRanges", false, "use Google's published ranges instead of the configured ones")
	fs.BoolVar(&cfg.SkipNotify, "skipNotify", false, "do not send unix socket notifications")
	if args == nil {
		fs.Parse(os.Args[1:])
	} else {
		fs.Parse(args)
	}
	return cfg
}
