// Package store implements the persistence layer of the registry: kvdb
// tables for contract state and configuration, plus genesis seeding for
// fresh datadirs and fake networks.
package store

import (
	"encoding/json"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/namechain"
	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

// Config table keys.
var (
	rulesKey   = []byte("rules")
	genesisKey = []byte("genesis")
)

// Store is the kvdb-backed storage of a registry node. Contract state and
// node configuration live in separate tables of one underlying store, so a
// single DB handle covers the whole datadir.
type Store struct {
	mainDB kvdb.Store
	table  struct {
		// Contract state: balances, name records, discount configs,
		// reverse records, all under the contract packages' prefixes.
		State kvdb.Store `table:"s"`
		// Node configuration: network rules, genesis marker.
		Config kvdb.Store `table:"c"`
	}

	log *logrus.Entry
}

// NewStore opens the storage over the given DB. The DB may be a memorydb
// for tests or a persistent store opened by the launcher.
func NewStore(db kvdb.Store) *Store {
	s := &Store{
		mainDB: db,
		log:    logrus.WithField("module", "store"),
	}
	table.MigrateTables(&s.table, db)
	return s
}

// StateDB opens a fresh ledger state over the contract-state table.
func (s *Store) StateDB() *state.StateDB {
	return state.NewStateDB(s.table.State)
}

// SetRules persists the network rules.
func (s *Store) SetRules(r namechain.Rules) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.table.Config.Put(rulesKey, raw)
}

// GetRules loads the persisted network rules, reporting whether any were
// stored.
func (s *Store) GetRules() (namechain.Rules, bool, error) {
	raw, err := s.table.Config.Get(rulesKey)
	if err != nil || raw == nil {
		return namechain.Rules{}, false, err
	}
	var r namechain.Rules
	if err := json.Unmarshal(raw, &r); err != nil {
		return namechain.Rules{}, false, err
	}
	return r, true, nil
}

// Close releases the underlying DB.
func (s *Store) Close() error {
	return s.mainDB.Close()
}
