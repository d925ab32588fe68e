package registrar

import (
	"testing"
	"time"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain"
	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

var (
	ledgerOwner = common.HexToAddress("0x0000000000000000000000000000000000000010")
	minter      = common.HexToAddress("0x0000000000000000000000000000000000000011")
	nameOwner   = common.HexToAddress("0x0000000000000000000000000000000000000012")
	outsider    = common.HexToAddress("0x0000000000000000000000000000000000000013")
)

const testGrace = 90 * 24 * time.Hour

func newBase(t *testing.T) (*BaseRegistrar, inter.Timestamp) {
	t.Helper()
	sdb := state.NewStateDB(memorydb.New())
	b := NewBaseRegistrar(sdb, ledgerOwner, testGrace)
	require.NoError(t, b.AddController(ledgerOwner, minter))
	return b, inter.FromTime(time.Unix(1700000000, 0))
}

func TestControllerAuthorization(t *testing.T) {
	require := require.New(t)
	b, now := newBase(t)
	label := namechain.Labelhash("alice")

	// Only the ledger owner manages controllers.
	require.Equal(ErrNotOwner, b.AddController(outsider, outsider))

	// Only controllers mint and renew.
	_, err := b.RegisterWithRecord(outsider, label, nameOwner, 365*24*time.Hour, common.Address{}, 0, now)
	require.Equal(ErrNotController, err)
	_, err = b.Renew(outsider, label, 30*24*time.Hour, now)
	require.Equal(ErrNotController, err)

	// Revocation takes effect immediately.
	require.NoError(b.RemoveController(ledgerOwner, minter))
	_, err = b.RegisterWithRecord(minter, label, nameOwner, 365*24*time.Hour, common.Address{}, 0, now)
	require.Equal(ErrNotController, err)
}

func TestAvailabilityLifecycle(t *testing.T) {
	require := require.New(t)
	b, now := newBase(t)
	label := namechain.Labelhash("alice")
	duration := 365 * 24 * time.Hour

	available, err := b.IsAvailable(label, now)
	require.NoError(err)
	require.True(available)

	expires, err := b.RegisterWithRecord(minter, label, nameOwner, duration, common.Address{}, 0, now)
	require.NoError(err)
	require.Equal(now.Add(duration), expires)

	got, err := b.NameExpires(label)
	require.NoError(err)
	require.Equal(expires, got)

	owner, err := b.OwnerOf(label, now)
	require.NoError(err)
	require.Equal(nameOwner, owner)

	// Registered, expired and in grace: still unavailable.
	for _, at := range []inter.Timestamp{now, expires, expires.Add(time.Hour), expires.Add(testGrace)} {
		available, err = b.IsAvailable(label, at)
		require.NoError(err)
		require.False(available, "at %s", at)
	}

	// Minting an unavailable label is rejected.
	_, err = b.RegisterWithRecord(minter, label, outsider, duration, common.Address{}, 0, expires)
	require.Equal(ErrNameNotAvailable, err)

	// Past expiry the name has no owner for query purposes.
	owner, err = b.OwnerOf(label, expires.Add(time.Hour))
	require.NoError(err)
	require.Equal(common.Address{}, owner)

	// One second past expiry plus grace the name is available again.
	rebirth := expires.Add(testGrace).Add(time.Second)
	available, err = b.IsAvailable(label, rebirth)
	require.NoError(err)
	require.True(available)

	// Re-registration starts a fresh epoch anchored at the new time.
	expires2, err := b.RegisterWithRecord(minter, label, outsider, duration, common.Address{}, 0, rebirth)
	require.NoError(err)
	require.Equal(rebirth.Add(duration), expires2)
	owner, err = b.OwnerOf(label, rebirth)
	require.NoError(err)
	require.Equal(outsider, owner)
}

func TestRenewExtendsExpiry(t *testing.T) {
	require := require.New(t)
	b, now := newBase(t)
	label := namechain.Labelhash("alice")

	_, err := b.Renew(minter, label, 30*24*time.Hour, now)
	require.Equal(ErrNotRegistered, err)

	expires, err := b.RegisterWithRecord(minter, label, nameOwner, 365*24*time.Hour, common.Address{}, 0, now)
	require.NoError(err)

	// Renewal inside the registration period builds on the current expiry.
	extended, err := b.Renew(minter, label, 30*24*time.Hour, now.Add(24*time.Hour))
	require.NoError(err)
	require.Equal(expires.Add(30*24*time.Hour), extended)

	// Renewal inside grace still builds on the old expiry, not on now.
	inGrace := extended.Add(10 * 24 * time.Hour)
	extended2, err := b.Renew(minter, label, 30*24*time.Hour, inGrace)
	require.NoError(err)
	require.Equal(extended.Add(30*24*time.Hour), extended2)

	// Past the grace window the name must be re-registered.
	_, err = b.Renew(minter, label, 30*24*time.Hour, extended2.Add(testGrace).Add(time.Second))
	require.Equal(ErrGraceExpired, err)
}

func TestRecordPersistsAcrossReopen(t *testing.T) {
	require := require.New(t)
	db := memorydb.New()
	now := inter.FromTime(time.Unix(1700000000, 0))

	sdb := state.NewStateDB(db)
	b := NewBaseRegistrar(sdb, ledgerOwner, testGrace)
	require.NoError(b.AddController(ledgerOwner, minter))
	label := namechain.Labelhash("alice")
	expires, err := b.RegisterWithRecord(minter, label, nameOwner, 365*24*time.Hour, common.Address{}, 0, now)
	require.NoError(err)
	require.NoError(sdb.Commit())

	// A fresh ledger over the same store sees the committed record.
	reopened := NewBaseRegistrar(state.NewStateDB(db), ledgerOwner, testGrace)
	got, err := reopened.NameExpires(label)
	require.NoError(err)
	require.Equal(expires, got)
}
