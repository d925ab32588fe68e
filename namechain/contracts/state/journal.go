package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// journalEntry is a reversible unit of state mutation. Entries are unwound
// in reverse order on RevertToSnapshot.
type journalEntry interface {
	revert(*StateDB)
}

// revision marks a snapshot point inside the journal.
type revision struct {
	id         int
	journalLen int
}

// kvChange journals a record write or delete. wasDirty remembers whether
// the key already carried uncommitted changes, so a revert of the first
// mutation since the last commit also clears the dirty marker and the next
// Commit does not rewrite an unchanged entry.
type kvChange struct {
	key      string
	prev     []byte
	existed  bool
	wasDirty bool
}

func (c kvChange) revert(s *StateDB) {
	if c.existed {
		s.kv[c.key] = cacheEntry{value: c.prev, exists: true}
	} else {
		s.kv[c.key] = cacheEntry{exists: false}
	}
	if !c.wasDirty {
		delete(s.dirtyKV, c.key)
	}
}

// balanceChange journals a balance mutation.
type balanceChange struct {
	addr     common.Address
	prev     *big.Int
	wasDirty bool
}

func (c balanceChange) revert(s *StateDB) {
	s.balances[c.addr] = c.prev
	if !c.wasDirty {
		delete(s.dirtyBalances, c.addr)
	}
}

// eventAdded journals an appended lifecycle event.
type eventAdded struct{}

func (c eventAdded) revert(s *StateDB) {
	s.events = s.events[:len(s.events)-1]
}
