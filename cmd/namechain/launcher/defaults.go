package launcher

import (
	"github.com/ethereum/go-ethereum/common"
)

// Defaults bundles the baseline configuration values the launcher uses
// before the config file and flags override them.
type Defaults struct {
	Node      NodeDefaults
	Network   NetworkDefaults
	Registrar RegistrarDefaults
	Storage   StorageDefaults
	Logging   LoggingDefaults
}

// NodeDefaults captures top-level node settings.
type NodeDefaults struct {
	DataDir string // filesystem root of the node's state
	Name    string // node identity used in logs and config dumps
}

// NetworkDefaults selects the registry network.
type NetworkDefaults struct {
	Name         string // main | test | fake
	FakeAccounts int    // pre-funded accounts seeded into a fake genesis
}

// RegistrarDefaults holds the owner-mutable registry configuration.
type RegistrarDefaults struct {
	Owner           common.Address // configuration owner
	PaymentReceiver common.Address // payment sweep destination
}

// StorageDefaults configures database and cache behaviour.
type StorageDefaults struct {
	CacheSizeMB int    // memory reserved for DB caches
	Handles     int    // file handles for DB operations
	Preset      string // runtime preset identifier
}

// LoggingDefaults controls log verbosity and format.
type LoggingDefaults struct {
	Verbosity int    // 0=fatal .. 5=trace
	Format    string // text | json
	Color     bool
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.namechain",
			Name:    "go-namechain",
		},
		Network: NetworkDefaults{
			Name:         "main",
			FakeAccounts: 10,
		},
		Registrar: RegistrarDefaults{
			// Zero addresses here mean "first fake genesis account" on a
			// fake network; main/test deployments must configure both.
		},
		Storage: StorageDefaults{
			CacheSizeMB: 1024,
			Handles:     512,
			Preset:      "default",
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     true,
		},
	}
}
