package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/gtranslate-ipcheck/types"
)

const remoteListBase = "https://raw.githubusercontent.com/Ponderfly/GoogleTranslateIpCheck/master/GoogleTranslateIpCheck/"

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		ScanLimit:   5,
		ScanTimeout: 4,
		ScanSpeed:   80,
		RetryCount:  5,
		IPRange: []string{
			"142.250.0.0/15",
			"172.217.0.0/16",
			"172.253.0.0/16",
			"108.177.0.0/17",
			"72.14.192.0/18",
			"74.125.0.0/16",
			"216.58.192.0/19",
		},
		IPv6Range: []string{
			"2404:6800:4008:c15::0/112",
			"2a00:1450:4001:802::0/112",
			"2a00:1450:4001:803::0/112",
			"2a00:1450:4001:809::0/112",
			"2a00:1450:4001:811::0/112",
			"2a00:1450:4001:827::0/112",
			"2a00:1450:4001:828::0/112",
		},
		RemoteIP:        remoteListBase + "ip.txt",
		RemoteIPv6:      remoteListBase + "ipv6.txt",
		IPFile:          "ip.txt",
		IPv6File:        "ipv6.txt",
		VirtualHost:     "translate.googleapis.com",
		HostNames:       []string{"translate.googleapis.com", "translate.google.com"},
		ProbePath:       "/translate_a/single",
		ProbeQuery:      "client=gtx&sl=zh-CN&tl=en&dt=t&q=你好",
		ProbePort:       443,
		ExpectMode:      "contains",
		ExpectBody:      "Hello",
		GoogleRangesURL: "https://www.gstatic.com/ipranges/goog.json",
		CloudRangesURL:  "https://www.gstatic.com/ipranges/cloud.json",
		Listen:          "127.0.0.1:53318",
	}
}

// LoadConfig reads the config file at path. A missing file is created with defaults;
// a file that cannot be parsed is reported and the defaults are used instead.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %w", writeErr)
			}
			DefaultLogger.Infof("Created new config file %s with default values", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := decodeConfig(path, data, &cfg); err != nil {
		DefaultLogger.Warnf("Failed to parse config file %s, using defaults: %v", path, err)
		cfg = DefaultConfig()
	}
	cfg = ValidateConfig(cfg)
	CurrentConfig = cfg
	return cfg, nil
}

func decodeConfig(path string, data []byte, cfg *types.AppConfig) error {
	if isJSONPath(path) {
		// tolerate a UTF-8 BOM, some editors on windows add one
		data = []byte(strings.TrimPrefix(string(data), "\xef\xbb\xbf"))
		return sonic.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// ValidateConfig replaces unusable values with defaults.
func ValidateConfig(cfg types.AppConfig) types.AppConfig {
	def := DefaultConfig()
	fix := func(name string, v *int, d int) {
		if *v <= 0 {
			DefaultLogger.Warnf("Config %s=%d is not positive, using %d", name, *v, d)
			*v = d
		}
	}
	fix("scanLimit", &cfg.ScanLimit, def.ScanLimit)
	fix("scanTimeout", &cfg.ScanTimeout, def.ScanTimeout)
	fix("scanSpeed", &cfg.ScanSpeed, def.ScanSpeed)
	fix("retryCount", &cfg.RetryCount, def.RetryCount)
	fix("probePort", &cfg.ProbePort, def.ProbePort)
	if cfg.ScanRatePPS < 0 {
		cfg.ScanRatePPS = 0
	}
	if cfg.VirtualHost == "" {
		cfg.VirtualHost = def.VirtualHost
	}
	if len(cfg.HostNames) == 0 {
		cfg.HostNames = []string{cfg.VirtualHost}
	}
	if cfg.ProbePath == "" {
		cfg.ProbePath = def.ProbePath
	}
	if cfg.ExpectMode == "" {
		cfg.ExpectMode = def.ExpectMode
	}
	if cfg.IPFile == "" {
		cfg.IPFile = def.IPFile
	}
	if cfg.IPv6File == "" {
		cfg.IPv6File = def.IPv6File
	}
	if cfg.Listen == "" {
		cfg.Listen = def.Listen
	}
	return cfg
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	var (
		data []byte
		err  error
	)
	if isJSONPath(path) {
		data, err = sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}
