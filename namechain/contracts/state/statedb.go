// Package state implements the serialized ledger substrate the contract
// suite runs on: wei balances, namespaced key-value records, a lifecycle
// event journal, and snapshot/revert for all-or-nothing operations.
//
// The execution model mirrors the chain runtime: every state-changing
// operation executes atomically and in total order. An operation takes a
// snapshot, mutates state through the StateDB, and either commits or reverts
// wholesale. Events appended during an operation become observable only on
// commit; a revert discards them together with the state changes.
package state

import (
	"errors"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInsufficientBalance is returned when a transfer or debit exceeds
	// the payer's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransferRejected is returned when the recipient of a transfer
	// refuses the funds. The enclosing operation must treat it as fatal.
	ErrTransferRejected = errors.New("transfer rejected by recipient")
)

// balancePrefix namespaces account balances inside the backing store.
// Contract packages namespace their own records with their own prefixes.
var balancePrefix = []byte("B/")

// Event is a lifecycle event recorded by a contract during an operation.
// Concrete event types live in the contract packages; the substrate only
// journals and delivers them.
type Event interface{}

// TransferHook lets an account behave like a contract recipient: it is
// invoked with the incoming amount and may reject the transfer by returning
// an error. Used to model payment receivers and refund targets that bounce.
type TransferHook func(amount *big.Int) error

type cacheEntry struct {
	value  []byte
	exists bool
}

// StateDB is the mutable ledger state. It caches reads from the backing
// kvdb store, journals every mutation for revert, and writes dirty entries
// back in a single batch on Commit.
//
// StateDB is not safe for concurrent use: the ledger serializes operations,
// so there is exactly one writer at a time.
type StateDB struct {
	db kvdb.Store // backing store; reads fall through on cache miss

	kv      map[string]cacheEntry // read+write cache of records
	dirtyKV map[string]struct{}   // record keys mutated since last commit

	balances      map[common.Address]*big.Int
	dirtyBalances map[common.Address]struct{}

	receivers map[common.Address]TransferHook

	journal    []journalEntry
	revisions  []revision
	nextRevID  int
	events     []Event
	eventsFeed event.Feed

	log *logrus.Entry
}

// NewStateDB creates a ledger state over the given backing store. The store
// may be a memorydb for tests or a persistent table opened by the launcher.
func NewStateDB(db kvdb.Store) *StateDB {
	return &StateDB{
		db:            db,
		kv:            make(map[string]cacheEntry),
		dirtyKV:       make(map[string]struct{}),
		balances:      make(map[common.Address]*big.Int),
		dirtyBalances: make(map[common.Address]struct{}),
		receivers:     make(map[common.Address]TransferHook),
		log:           logrus.WithField("module", "state"),
	}
}

// Get returns the record stored under key, or nil if absent.
func (s *StateDB) Get(key []byte) ([]byte, error) {
	if entry, ok := s.kv[string(key)]; ok {
		if !entry.exists {
			return nil, nil
		}
		return entry.value, nil
	}
	val, err := s.dbGet(key)
	if err != nil {
		return nil, err
	}
	s.kv[string(key)] = cacheEntry{value: val, exists: val != nil}
	return val, nil
}

// Set stores a record under key, journaling the previous value.
func (s *StateDB) Set(key, value []byte) {
	s.Get(key) // ensure the previous value is cached
	k := string(key)
	prev := s.kv[k]
	_, wasDirty := s.dirtyKV[k]
	s.journal = append(s.journal, kvChange{key: k, prev: prev.value, existed: prev.exists, wasDirty: wasDirty})
	s.kv[k] = cacheEntry{value: append([]byte(nil), value...), exists: true}
	s.dirtyKV[k] = struct{}{}
}

// Delete removes the record under key, journaling the previous value.
func (s *StateDB) Delete(key []byte) {
	s.Get(key)
	k := string(key)
	prev := s.kv[k]
	_, wasDirty := s.dirtyKV[k]
	s.journal = append(s.journal, kvChange{key: k, prev: prev.value, existed: prev.exists, wasDirty: wasDirty})
	s.kv[k] = cacheEntry{exists: false}
	s.dirtyKV[k] = struct{}{}
}

// GetBalance returns a copy of the account's wei balance.
func (s *StateDB) GetBalance(addr common.Address) *big.Int {
	return new(big.Int).Set(s.balance(addr))
}

// AddBalance credits the account with amount wei.
func (s *StateDB) AddBalance(addr common.Address, amount *big.Int) {
	prev := s.balance(addr)
	_, wasDirty := s.dirtyBalances[addr]
	s.journal = append(s.journal, balanceChange{addr: addr, prev: new(big.Int).Set(prev), wasDirty: wasDirty})
	s.balances[addr] = new(big.Int).Add(prev, amount)
	s.dirtyBalances[addr] = struct{}{}
}

// SubBalance debits the account by amount wei. It fails with
// ErrInsufficientBalance rather than driving the balance negative.
func (s *StateDB) SubBalance(addr common.Address, amount *big.Int) error {
	prev := s.balance(addr)
	if prev.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	_, wasDirty := s.dirtyBalances[addr]
	s.journal = append(s.journal, balanceChange{addr: addr, prev: new(big.Int).Set(prev), wasDirty: wasDirty})
	s.balances[addr] = new(big.Int).Sub(prev, amount)
	s.dirtyBalances[addr] = struct{}{}
	return nil
}

// Transfer moves amount wei between accounts. If the recipient registered a
// receiver hook and the hook rejects, the transfer fails with
// ErrTransferRejected and no balance changes.
func (s *StateDB) Transfer(from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if hook, ok := s.receivers[to]; ok {
		if err := hook(amount); err != nil {
			s.log.WithFields(logrus.Fields{
				"to":     to.Hex(),
				"amount": amount.String(),
			}).Debug("recipient rejected transfer")
			return ErrTransferRejected
		}
	}
	if err := s.SubBalance(from, amount); err != nil {
		return err
	}
	s.AddBalance(to, amount)
	return nil
}

// RegisterReceiver installs a transfer hook for the account, making it
// behave like a contract recipient that can reject incoming funds.
func (s *StateDB) RegisterReceiver(addr common.Address, hook TransferHook) {
	s.receivers[addr] = hook
}

// AddEvent appends a lifecycle event to the pending journal. Events are
// delivered to subscribers on Commit and discarded on revert.
func (s *StateDB) AddEvent(ev Event) {
	s.journal = append(s.journal, eventAdded{})
	s.events = append(s.events, ev)
}

// PendingEvents returns the events recorded since the last commit. The
// returned slice is read-only.
func (s *StateDB) PendingEvents() []Event {
	return s.events
}

// SubscribeEvents delivers each committed batch of lifecycle events to the
// channel until the subscription is closed. One batch corresponds to one
// committed operation.
func (s *StateDB) SubscribeEvents(ch chan<- []Event) event.Subscription {
	return s.eventsFeed.Subscribe(ch)
}

// Snapshot captures the current state revision. RevertToSnapshot unwinds
// every mutation and event recorded since.
func (s *StateDB) Snapshot() int {
	id := s.nextRevID
	s.nextRevID++
	s.revisions = append(s.revisions, revision{id: id, journalLen: len(s.journal)})
	return id
}

// RevertToSnapshot unwinds the journal back to the given snapshot. Unknown
// snapshot ids indicate a programming error and panic, as in the chain
// runtime.
func (s *StateDB) RevertToSnapshot(id int) {
	idx := -1
	for i := len(s.revisions) - 1; i >= 0; i-- {
		if s.revisions[i].id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic("state: revert to unknown snapshot")
	}
	target := s.revisions[idx].journalLen
	for i := len(s.journal) - 1; i >= target; i-- {
		s.journal[i].revert(s)
	}
	s.journal = s.journal[:target]
	s.revisions = s.revisions[:idx]
}

// Commit writes all dirty records and balances to the backing store in a
// single batch, delivers pending events to subscribers, and resets the
// journal. A commit with an open snapshot is legal; the snapshot simply
// becomes unusable.
func (s *StateDB) Commit() error {
	if s.db != nil {
		batch := s.db.NewBatch()
		for k := range s.dirtyKV {
			entry := s.kv[k]
			if entry.exists {
				if err := batch.Put([]byte(k), entry.value); err != nil {
					return err
				}
			} else {
				if err := batch.Delete([]byte(k)); err != nil {
					return err
				}
			}
		}
		for addr := range s.dirtyBalances {
			key := append(append([]byte(nil), balancePrefix...), addr.Bytes()...)
			if err := batch.Put(key, s.balances[addr].Bytes()); err != nil {
				return err
			}
		}
		if err := batch.Write(); err != nil {
			return err
		}
	}
	if len(s.events) > 0 {
		s.eventsFeed.Send(s.events)
	}
	s.dirtyKV = make(map[string]struct{})
	s.dirtyBalances = make(map[common.Address]struct{})
	s.journal = s.journal[:0]
	s.revisions = s.revisions[:0]
	s.events = nil
	return nil
}

func (s *StateDB) balance(addr common.Address) *big.Int {
	if bal, ok := s.balances[addr]; ok {
		return bal
	}
	bal := new(big.Int)
	key := append(append([]byte(nil), balancePrefix...), addr.Bytes()...)
	if raw, err := s.dbGet(key); err == nil && raw != nil {
		bal.SetBytes(raw)
	}
	s.balances[addr] = bal
	return bal
}

func (s *StateDB) dbGet(key []byte) ([]byte, error) {
	if s.db == nil {
		return nil, nil
	}
	has, err := s.db.Has(key)
	if err != nil || !has {
		return nil, err
	}
	return s.db.Get(key)
}
