package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	ScanLimit          int      `yaml:"scanLimit" json:"scanLimit"`                   // quota of good addresses, scan and rank stop dispatching once reached
	ScanTimeout        int      `yaml:"scanTimeout" json:"scanTimeout"`               // per probe timeout in seconds
	ScanSpeed          int      `yaml:"scanSpeed" json:"scanSpeed"`                   // probes in flight
	RetryCount         int      `yaml:"retryCount" json:"retryCount"`                 // latency attempts per address
	ScanRatePPS        int      `yaml:"scanRatePPS" json:"scanRatePPS"`               // 0 = no rate limit
	IPRange            []string `yaml:"ipRange" json:"ipRange"`                       // IPv4 CIDR blocks
	IPv6Range          []string `yaml:"ipv6Range" json:"ipv6Range"`                   // IPv6 CIDR blocks
	RemoteIP           string   `yaml:"remoteIP" json:"remoteIP"`                     // remote candidate list (IPv4)
	RemoteIPv6         string   `yaml:"remoteIPv6" json:"remoteIPv6"`                 // remote candidate list (IPv6)
	IPFile             string   `yaml:"ipFile" json:"ipFile"`                         // local candidate list (IPv4)
	IPv6File           string   `yaml:"ipv6File" json:"ipv6File"`                     // local candidate list (IPv6)
	BackupDir          string   `yaml:"backupDir,omitempty" json:"backupDir,omitempty"` // timestamped copies of ranked lists, empty disables
	VirtualHost        string   `yaml:"virtualHost" json:"virtualHost"`               // Host header and TLS server name
	HostNames          []string `yaml:"hostNames" json:"hostNames"`                   // hostnames bound to the winner in the hosts file
	ProbePath          string   `yaml:"probePath" json:"probePath"`
	ProbeQuery         string   `yaml:"probeQuery" json:"probeQuery"`
	ProbePort          int      `yaml:"probePort" json:"probePort"`
	ExpectMode         string   `yaml:"expectMode" json:"expectMode"` // contains | equals
	ExpectBody         string   `yaml:"expectBody" json:"expectBody"`
	ICMPPrecheck       bool     `yaml:"icmpPrecheck" json:"icmpPrecheck"`
	InsecureSkipVerify bool     `yaml:"insecureSkipVerify" json:"insecureSkipVerify"`
	GoogleRangesURL    string   `yaml:"googleRangesURL" json:"googleRangesURL"`
	CloudRangesURL     string   `yaml:"cloudRangesURL" json:"cloudRangesURL"`
	Listen             string   `yaml:"listen" json:"listen"` // status API address, used with -serve
}

// Ranges returns the CIDR list for the selected address family.
func (c AppConfig) Ranges(ipv6 bool) []string {
	if ipv6 {
		return c.IPv6Range
	}
	return c.IPRange
}

// CandidateFile returns the local candidate list path for the selected address family.
func (c AppConfig) CandidateFile(ipv6 bool) string {
	if ipv6 {
		return c.IPv6File
	}
	return c.IPFile
}

// RemoteList returns the remote candidate list URL for the selected address family.
func (c AppConfig) RemoteList(ipv6 bool) string {
	if ipv6 {
		return c.RemoteIPv6
	}
	return c.RemoteIP
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log           string
	UseConfigPath string
	UseIPv6       bool   // -6, probe IPv6 ranges and use the IPv6 candidate list
	AutoConfirm   bool   // -y, bind hosts without asking
	ForceScan     bool   // -s, ignore the candidate list and scan ranges
	ScanOnly      bool   // stop after writing the ranked list
	Interval      int    // seconds between runs, 0 runs once
	Serve         bool   // start the local status API
	RefreshRanges bool   // replace configured ranges with Google's published ranges
	SkipNotify    bool   // do not send unix socket notifications
}
