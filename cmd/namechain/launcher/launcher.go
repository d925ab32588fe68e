package launcher

import (
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-namechain/flags"
	"github.com/rony4d/go-namechain/namechain"
	"github.com/rony4d/go-namechain/namechain/contracts/discounts"
	"github.com/rony4d/go-namechain/namechain/contracts/pricing"
	"github.com/rony4d/go-namechain/namechain/contracts/registrar"
	"github.com/rony4d/go-namechain/namechain/contracts/resolver"
	"github.com/rony4d/go-namechain/namechain/contracts/reverse"
	"github.com/rony4d/go-namechain/namechain/store"
)

// DefaultResolverAddress is where the built-in profile resolver is wired.
var DefaultResolverAddress = common.HexToAddress("0x4e43000000000000000000000000000000000001")

var app = flags.NewApp()

func init() {
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.NodeFlags()...)
	app.Flags = append(app.Flags, flags.RegistrarFlags()...)
	app.Action = registryMain
	app.Commands = []cli.Command{
		{
			Name:   "version",
			Usage:  "Print version numbers",
			Action: versionAction,
		},
	}
}

// Launch parses flags and runs the node.
func Launch(args []string) error {
	return app.Run(args)
}

func versionAction(ctx *cli.Context) error {
	fmt.Fprintln(ctx.App.Writer, app.Name, app.Version)
	return nil
}

// registryMain is the default action: configure logging, open the datadir,
// apply genesis when needed and wire the registry contract suite.
func registryMain(ctx *cli.Context) error {
	cfg := MakeAllConfigs(ctx)
	if err := setupLogging(cfg); err != nil {
		return err
	}

	rules, err := rulesOf(cfg.Network.Name)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	s := store.NewStore(db)
	defer s.Close()

	node, err := makeRegistry(cfg, rules, s)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"node":     cfg.Node.Name,
		"network":  rules.Name,
		"chainId":  rules.NetworkID,
		"rootName": rules.Names.RootName,
		"owner":    node.Owner.Hex(),
		"receiver": node.PaymentReceiver.Hex(),
	}).Info("registry node ready")
	return nil
}

// Node bundles the wired registry suite.
type Node struct {
	Rules           namechain.Rules
	Owner           common.Address
	PaymentReceiver common.Address
	Store           *store.Store
	Controller      *registrar.Controller
	Dispatcher      *registrar.Dispatcher
	Ledger          *registrar.BaseRegistrar
	Discounts       *discounts.Registry
	Resolver        *resolver.ProfileResolver
}

// makeRegistry applies genesis to a fresh datadir and wires the contract
// suite over the store's state.
func makeRegistry(cfg Config, rules namechain.Rules, s *store.Store) (*Node, error) {
	owner := cfg.Registrar.Owner
	receiver := cfg.Registrar.PaymentReceiver
	fake := rules.NetworkID == namechain.FakeNetworkID
	if fake && owner == (common.Address{}) {
		owner = crypto.PubkeyToAddress(store.FakeKey(0).PublicKey)
	}
	if receiver == (common.Address{}) {
		receiver = owner
	}
	if owner == (common.Address{}) {
		return nil, fmt.Errorf("registrar.owner is required on the %q network", rules.Name)
	}

	genesisTime := store.FakeGenesisTime
	var balances map[common.Address]*big.Int
	if fake {
		balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))
		balances = store.FakeGenesisBalances(cfg.Network.FakeAccounts, balance)
	}
	if _, err := s.ApplyGenesis(rules, genesisTime, balances); err != nil {
		return nil, err
	}

	if cfg.Registrar.LaunchTime != 0 {
		rules.Names.LaunchTime = cfg.Registrar.LaunchTime
	} else if t, ok, err := s.GenesisTime(); err != nil {
		return nil, err
	} else if ok {
		rules.Names.LaunchTime = t
	}

	oracle, err := pricing.NewOracle(rules)
	if err != nil {
		return nil, err
	}
	sdb := s.StateDB()

	base := registrar.NewBaseRegistrar(sdb, owner, rules.Names.GracePeriod)
	disc := discounts.NewRegistry(sdb, owner)
	ctrl := registrar.NewController(sdb, registrar.ContractAddress, owner, receiver, rules, oracle, base, disc)
	if err := base.AddController(owner, registrar.ContractAddress); err != nil {
		return nil, err
	}

	legacy := reverse.NewLegacyRegistrar(sdb, owner)
	if err := legacy.ApproveController(owner, registrar.ContractAddress, true); err != nil {
		return nil, err
	}
	shim := reverse.NewMigrationShim(reverse.NewL2Registrar(sdb), legacy)
	ctrl.WireReverse(legacy, shim)

	records := resolver.NewProfileResolver()
	ctrl.WireResolver(DefaultResolverAddress, records)

	return &Node{
		Rules:           rules,
		Owner:           owner,
		PaymentReceiver: receiver,
		Store:           s,
		Controller:      ctrl,
		Dispatcher:      registrar.NewDispatcher(ctrl),
		Ledger:          base,
		Discounts:       disc,
		Resolver:        records,
	}, nil
}

func rulesOf(name string) (namechain.Rules, error) {
	switch name {
	case "main":
		return namechain.MainNetRules(), nil
	case "test":
		return namechain.TestNetRules(), nil
	case "fake":
		return namechain.FakeNetRules(), nil
	default:
		return namechain.Rules{}, fmt.Errorf("unknown network %q (valid: main, test, fake)", name)
	}
}

// openDB opens the registry DB: an in-memory store on fake networks, a
// LevelDB under the datadir otherwise.
func openDB(cfg Config) (kvdb.Store, error) {
	if cfg.Network.Name == "fake" {
		return memorydb.New(), nil
	}
	path := cfg.Store.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Node.DataDir, path)
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	cache := cfg.Store.CacheMB * 1024 * 1024
	handles := DefaultConfig().Storage.Handles
	return leveldb.New(filepath.Join(path, "registry"), cache, handles, nil, nil)
}

var verbosityLevels = map[int]logrus.Level{
	0: logrus.FatalLevel,
	1: logrus.ErrorLevel,
	2: logrus.WarnLevel,
	3: logrus.InfoLevel,
	4: logrus.DebugLevel,
	5: logrus.TraceLevel,
}

// setupLogging configures logrus from the node config and installs the
// Sentry hook when a DSN is supplied.
func setupLogging(cfg Config) error {
	level, ok := verbosityLevels[cfg.Node.Logging.Verbosity]
	if !ok {
		return fmt.Errorf("invalid log verbosity %d (valid: 0..5)", cfg.Node.Logging.Verbosity)
	}
	logrus.SetLevel(level)

	switch cfg.Node.Logging.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Node.Logging.Color,
			DisableColors: !cfg.Node.Logging.Color,
			FullTimestamp: true,
		})
	default:
		return fmt.Errorf("invalid log format %q (valid: text, json)", cfg.Node.Logging.Format)
	}

	if cfg.Sentry.DSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.Sentry.DSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return fmt.Errorf("sentry hook: %w", err)
		}
		logrus.AddHook(hook)
	}
	return nil
}
