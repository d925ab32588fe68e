package launcher

import (
	"testing"
	"time"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain"
	"github.com/rony4d/go-namechain/namechain/store"
)

func TestRulesOf(t *testing.T) {
	require := require.New(t)

	for name, id := range map[string]uint64{
		"main": namechain.MainNetworkID,
		"test": namechain.TestNetworkID,
		"fake": namechain.FakeNetworkID,
	} {
		rules, err := rulesOf(name)
		require.NoError(err)
		require.Equal(name, rules.Name)
		require.Equal(id, rules.NetworkID)
	}

	_, err := rulesOf("devnet")
	require.Error(err)
}

func TestMakeRegistryFakeNet(t *testing.T) {
	require := require.New(t)

	cfg := defaultConfig()
	cfg.Network.Name = "fake"
	cfg.Network.FakeAccounts = 3

	s := store.NewStore(memorydb.New())
	defer s.Close()

	node, err := makeRegistry(cfg, namechain.FakeNetRules(), s)
	require.NoError(err)

	// Owner and receiver default to the first fake genesis account.
	first := crypto.PubkeyToAddress(store.FakeKey(0).PublicKey)
	require.Equal(first, node.Owner)
	require.Equal(first, node.PaymentReceiver)

	// Genesis stamped and the suite answers queries.
	genesis, ok, err := s.GenesisTime()
	require.NoError(err)
	require.True(ok)
	require.Equal(store.FakeGenesisTime, genesis)
	require.Equal(genesis, node.Rules.Names.LaunchTime)

	available, err := node.Controller.Available("alice", genesis.Add(time.Hour))
	require.NoError(err)
	require.True(available)
	require.True(s.StateDB().GetBalance(first).Sign() > 0)
}

func TestMakeRegistryRequiresOwner(t *testing.T) {
	require := require.New(t)

	cfg := defaultConfig()
	cfg.Network.Name = "main"

	s := store.NewStore(memorydb.New())
	defer s.Close()

	_, err := makeRegistry(cfg, namechain.MainNetRules(), s)
	require.Error(err)
}

func TestMakeRegistryLaunchTimeOverride(t *testing.T) {
	require := require.New(t)

	cfg := defaultConfig()
	cfg.Network.Name = "fake"
	cfg.Registrar.Owner = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	cfg.Registrar.LaunchTime = inter.Timestamp(1700000000)

	s := store.NewStore(memorydb.New())
	defer s.Close()

	node, err := makeRegistry(cfg, namechain.FakeNetRules(), s)
	require.NoError(err)
	require.Equal(inter.Timestamp(1700000000), node.Rules.Names.LaunchTime)
}

func TestSetupLoggingRejectsBadConfig(t *testing.T) {
	require := require.New(t)

	cfg := defaultConfig()
	cfg.Node.Logging.Verbosity = 9
	require.Error(setupLogging(cfg))

	cfg = defaultConfig()
	cfg.Node.Logging.Format = "xml"
	require.Error(setupLogging(cfg))

	require.NoError(setupLogging(defaultConfig()))
}
