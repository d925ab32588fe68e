package store

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain"
)

// FakeGenesisTime is the ledger time fake networks are born at.
var FakeGenesisTime = inter.Timestamp(1608600000)

// ApplyGenesis seeds a fresh datadir: persists the network rules, funds the
// genesis balances and stamps the genesis time. It reports whether it
// applied anything; a datadir that already has a genesis is left untouched.
func (s *Store) ApplyGenesis(rules namechain.Rules, genesisTime inter.Timestamp, balances map[common.Address]*big.Int) (bool, error) {
	if t, ok, err := s.GenesisTime(); err != nil {
		return false, err
	} else if ok {
		s.log.WithField("time", t.Time().UTC()).Debug("genesis already applied")
		return false, nil
	}

	sdb := s.StateDB()
	for acc, balance := range balances {
		sdb.AddBalance(acc, balance)
	}
	if err := sdb.Commit(); err != nil {
		return false, err
	}

	if err := s.SetRules(rules); err != nil {
		return false, err
	}
	if err := s.table.Config.Put(genesisKey, bigendian.Uint64ToBytes(uint64(genesisTime))); err != nil {
		return false, err
	}
	s.log.WithFields(logrus.Fields{
		"network":  rules.Name,
		"accounts": len(balances),
		"time":     genesisTime.Time().UTC(),
	}).Info("genesis applied")
	return true, nil
}

// GenesisTime returns the stamped genesis time, reporting whether a genesis
// was ever applied.
func (s *Store) GenesisTime() (inter.Timestamp, bool, error) {
	raw, err := s.table.Config.Get(genesisKey)
	if err != nil || raw == nil {
		return 0, false, err
	}
	return inter.Timestamp(bigendian.BytesToUint64(raw)), true, nil
}

// FakeKey returns a deterministic private key for fake networks: the same
// index always yields the same key. The scalar is derived from fixed bytes
// rather than a seeded reader, because ecdsa.GenerateKey consumes a
// platform-dependent amount of entropy and would break determinism.
func FakeKey(n int) *ecdsa.PrivateKey {
	seed := crypto.Keccak256([]byte("fakenet"), bigendian.Uint64ToBytes(uint64(n)))
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		panic(err)
	}
	return key
}

// FakeGenesisBalances funds the first accounts of the fake key sequence
// with the given balance each.
func FakeGenesisBalances(accounts int, balance *big.Int) map[common.Address]*big.Int {
	balances := make(map[common.Address]*big.Int, accounts)
	for i := 0; i < accounts; i++ {
		addr := crypto.PubkeyToAddress(FakeKey(i).PublicKey)
		balances[addr] = new(big.Int).Set(balance)
	}
	return balances
}
