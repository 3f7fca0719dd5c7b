package launcher

import (
	"github.com/Neverland-Money/go-escrow/escrow"
)

// Defaults bundles the baseline configuration values the launcher uses
// before config files and flags override them.
type Defaults struct {
	Node    NodeDefaults
	Network NetworkDefaults
	Storage StorageDefaults
	Logging LoggingDefaults
}

type NodeDefaults struct {
	DataDir string // filesystem root for persistent stores; "~" expands to the user's home
}

type NetworkDefaults struct {
	NetworkID uint64 // numeric identifier pinned into the stored rules
	ChainName string // rules preset name: main, test or fake
	FakeLocks int    // deterministic genesis locks when running a fake network
}

type StorageDefaults struct {
	Preset      string // storage profile name understood by the integration package
	CacheSizeMB int    // 0 keeps the profile's own cache size
}

type LoggingDefaults struct {
	Verbosity int    // logrus level: 0=panic .. 6=trace
	Format    string // text or json
	Color     bool
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.escrow",
		},
		Network: NetworkDefaults{
			NetworkID: escrow.MainNetworkID,
			ChainName: "main",
			FakeLocks: 0,
		},
		Storage: StorageDefaults{
			Preset:      "default",
			CacheSizeMB: 0,
		},
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     false,
		},
	}
}
