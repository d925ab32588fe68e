package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// TestKVRoundTrip verifies Get/Set/Delete against the backing store.
func TestKVRoundTrip(t *testing.T) {
	require := require.New(t)

	db := memorydb.New()
	s := NewStateDB(db)

	got, err := s.Get([]byte("k"))
	require.NoError(err)
	require.Nil(got)

	s.Set([]byte("k"), []byte("v1"))
	got, err = s.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v1"), got)

	require.NoError(s.Commit())

	// A fresh StateDB over the same store reads the committed value.
	s2 := NewStateDB(db)
	got, err = s2.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v1"), got)

	s2.Delete([]byte("k"))
	require.NoError(s2.Commit())

	s3 := NewStateDB(db)
	got, err = s3.Get([]byte("k"))
	require.NoError(err)
	require.Nil(got)
}

// TestSnapshotRevert verifies that record writes, balance changes and events
// all unwind together.
func TestSnapshotRevert(t *testing.T) {
	require := require.New(t)

	s := NewStateDB(memorydb.New())
	s.Set([]byte("k"), []byte("before"))
	s.AddBalance(addrA, big.NewInt(100))

	snap := s.Snapshot()

	s.Set([]byte("k"), []byte("after"))
	s.Delete([]byte("gone"))
	require.NoError(s.SubBalance(addrA, big.NewInt(60)))
	s.AddEvent("ev")

	s.RevertToSnapshot(snap)

	got, err := s.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("before"), got)
	require.Equal(big.NewInt(100), s.GetBalance(addrA))
	require.Empty(s.PendingEvents())
}

// TestRevertClearsDirtyTracking verifies that a revert also unwinds the
// dirty-set bookkeeping: entries whose first mutation happened inside the
// snapshot are no longer considered dirty, while entries dirtied before the
// snapshot keep their marker even when re-mutated inside it.
func TestRevertClearsDirtyTracking(t *testing.T) {
	require := require.New(t)

	s := NewStateDB(memorydb.New())
	s.Set([]byte("kept"), []byte("v1"))
	s.AddBalance(addrA, big.NewInt(10))

	snap := s.Snapshot()
	s.Set([]byte("kept"), []byte("v2"))
	s.Set([]byte("dropped"), []byte("x"))
	s.AddBalance(addrB, big.NewInt(5))
	s.RevertToSnapshot(snap)

	require.Contains(s.dirtyKV, "kept")
	require.NotContains(s.dirtyKV, "dropped")
	require.Contains(s.dirtyBalances, addrA)
	require.NotContains(s.dirtyBalances, addrB)
}

// TestNestedSnapshots verifies that reverting an outer snapshot discards
// inner ones too.
func TestNestedSnapshots(t *testing.T) {
	require := require.New(t)

	s := NewStateDB(memorydb.New())

	outer := s.Snapshot()
	s.Set([]byte("a"), []byte("1"))
	inner := s.Snapshot()
	s.Set([]byte("b"), []byte("2"))

	s.RevertToSnapshot(inner)
	got, err := s.Get([]byte("b"))
	require.NoError(err)
	require.Nil(got)

	s.RevertToSnapshot(outer)
	got, err = s.Get([]byte("a"))
	require.NoError(err)
	require.Nil(got)
}

// TestTransfer covers plain transfers, insufficient funds and rejecting
// recipients.
func TestTransfer(t *testing.T) {
	require := require.New(t)

	s := NewStateDB(memorydb.New())
	s.AddBalance(addrA, big.NewInt(50))

	require.NoError(s.Transfer(addrA, addrB, big.NewInt(30)))
	require.Equal(big.NewInt(20), s.GetBalance(addrA))
	require.Equal(big.NewInt(30), s.GetBalance(addrB))

	err := s.Transfer(addrA, addrB, big.NewInt(100))
	require.True(errors.Is(err, ErrInsufficientBalance))

	// A recipient hook that rejects makes the transfer fail without
	// touching balances.
	s.RegisterReceiver(addrB, func(amount *big.Int) error {
		return errors.New("no thanks")
	})
	err = s.Transfer(addrA, addrB, big.NewInt(10))
	require.True(errors.Is(err, ErrTransferRejected))
	require.Equal(big.NewInt(20), s.GetBalance(addrA))
	require.Equal(big.NewInt(30), s.GetBalance(addrB))

	// Zero-value transfers are a no-op even toward rejecting recipients.
	require.NoError(s.Transfer(addrA, addrB, new(big.Int)))
}

// TestBalancePersistence verifies balances survive a commit round-trip.
func TestBalancePersistence(t *testing.T) {
	require := require.New(t)

	db := memorydb.New()
	s := NewStateDB(db)
	s.AddBalance(addrA, big.NewInt(7777))
	require.NoError(s.Commit())

	s2 := NewStateDB(db)
	require.Equal(big.NewInt(7777), s2.GetBalance(addrA))
}

// TestEventsDeliveredOnCommit verifies events reach subscribers only after
// a successful commit.
func TestEventsDeliveredOnCommit(t *testing.T) {
	require := require.New(t)

	s := NewStateDB(memorydb.New())
	ch := make(chan []Event, 4)
	sub := s.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	s.AddEvent("first")
	s.AddEvent("second")
	require.Len(ch, 0)

	require.NoError(s.Commit())
	batch := <-ch
	require.Equal([]Event{"first", "second"}, batch)

	// A commit with no events sends nothing.
	require.NoError(s.Commit())
	require.Len(ch, 0)
}
