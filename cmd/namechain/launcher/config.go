package launcher

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-namechain/integration"
	"github.com/rony4d/go-namechain/inter"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node      NodeConfig
	Network   NetworkConfig
	Registrar RegistrarConfig
	Store     StoreConfig
	Sentry    SentryConfig
}

// NodeConfig holds the local node instance settings.
type NodeConfig struct {
	DataDir string
	Name    string
	Logging LoggingConfig
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
}

// NetworkConfig selects which registry network the node joins.
type NetworkConfig struct {
	Name         string // main | test | fake
	FakeAccounts int    // pre-funded accounts on a fake network
}

// RegistrarConfig is the owner-mutable registry configuration applied at
// startup.
type RegistrarConfig struct {
	Owner           common.Address
	PaymentReceiver common.Address
	LaunchTime      inter.Timestamp // zero means the genesis time
}

// StoreConfig configures the registry DB.
type StoreConfig struct {
	Path    string // defaults to <datadir>/chaindata
	CacheMB int
	Preset  string
}

// SentryConfig enables error reporting when a DSN is set.
type SentryConfig struct {
	DSN string
}

// defaultConfig builds the baseline the config file and flags override.
func defaultConfig() Config {
	home := GuessHomeDir()
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: filepath.Join(home, ".namechain"),
			Name:    d.Node.Name,
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
			},
		},
		Network: NetworkConfig{
			Name:         d.Network.Name,
			FakeAccounts: d.Network.FakeAccounts,
		},
		Registrar: RegistrarConfig{
			Owner:           d.Registrar.Owner,
			PaymentReceiver: d.Registrar.PaymentReceiver,
		},
		Store: StoreConfig{
			Path:    "chaindata",
			CacheMB: d.Storage.CacheSizeMB,
			Preset:  d.Storage.Preset,
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file and CLI flag
// overrides into a single config struct.
func MakeAllConfigs(ctx *cli.Context) Config {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			panic(fmt.Errorf("failed to load config file %s: %w", file, err))
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if err := ensureDir(cfg.Node.DataDir); err != nil {
		panic(err)
	}
	return cfg
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, cfg)
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("identity") {
		cfg.Node.Name = ctx.String("identity")
	}

	if ctx.IsSet("log.format") {
		cfg.Node.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Node.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Sentry.DSN = ctx.String("sentry.dsn")
	}

	if ctx.IsSet("network") {
		cfg.Network.Name = ctx.String("network")
	}
	if ctx.IsSet("fake.accounts") {
		cfg.Network.FakeAccounts = ctx.Int("fake.accounts")
	}
	if ctx.IsSet("registrar.owner") {
		cfg.Registrar.Owner = common.HexToAddress(ctx.String("registrar.owner"))
	}
	if ctx.IsSet("registrar.receiver") {
		cfg.Registrar.PaymentReceiver = common.HexToAddress(ctx.String("registrar.receiver"))
	}
	if ctx.IsSet("registrar.launchtime") {
		cfg.Registrar.LaunchTime = inter.Timestamp(ctx.Uint64("registrar.launchtime"))
	}

	if ctx.IsSet("preset") {
		if preset, err := integration.GetPresetByName(ctx.String("preset")); err == nil {
			cfg.Store.Preset = preset.Name
			cfg.Store.CacheMB = preset.CacheMB
		}
	}
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
	if ctx.IsSet("datadir.chaindata") {
		cfg.Store.Path = ctx.String("datadir.chaindata")
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}

func GuessProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd // hit filesystem root without finding go.mod
		}
		dir = parent
	}
}
