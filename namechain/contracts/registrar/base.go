// Package registrar implements tokenized name ownership and the registration
// controller orchestrating the full lifecycle: availability checks, pricing,
// payment validation, discount application, record and reverse-record
// delegation, refunds and withdrawal.
package registrar

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

// recordPrefix namespaces ownership records, one per label.
var recordPrefix = []byte("n/reg/")

// nameRecord is the persisted state of one registered label.
type nameRecord struct {
	Owner    common.Address
	Expires  inter.Timestamp
	Resolver common.Address
	TTL      uint64
}

// EventNameMinted is emitted by the ownership ledger when a label is
// registered or re-registered after its grace window.
type EventNameMinted struct {
	Label   common.Hash
	Owner   common.Address
	Expires inter.Timestamp
}

// BaseRegistrar is the ownership ledger: token-style ownership per label
// with an absolute expiry and grace-period accounting. Only registered
// controllers may mint or renew; queries are open.
type BaseRegistrar struct {
	sdb         *state.StateDB
	owner       common.Address
	grace       time.Duration
	controllers map[common.Address]bool
	log         *logrus.Entry
}

// NewBaseRegistrar creates the ledger with the given grace period.
func NewBaseRegistrar(sdb *state.StateDB, owner common.Address, grace time.Duration) *BaseRegistrar {
	return &BaseRegistrar{
		sdb:         sdb,
		owner:       owner,
		grace:       grace,
		controllers: make(map[common.Address]bool),
		log:         logrus.WithField("module", "base-registrar"),
	}
}

// AddController authorizes an account to mint and renew. Owner-only.
func (b *BaseRegistrar) AddController(caller, controller common.Address) error {
	if caller != b.owner {
		return ErrNotOwner
	}
	b.controllers[controller] = true
	return nil
}

// RemoveController revokes a controller. Owner-only.
func (b *BaseRegistrar) RemoveController(caller, controller common.Address) error {
	if caller != b.owner {
		return ErrNotOwner
	}
	delete(b.controllers, controller)
	return nil
}

// IsAvailable reports whether the label can be registered at ledger time
// now: either it was never registered, or its expiry plus the grace period
// has passed.
func (b *BaseRegistrar) IsAvailable(label common.Hash, now inter.Timestamp) (bool, error) {
	rec, ok, err := b.record(label)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return now > rec.Expires.Add(b.grace), nil
}

// NameExpires returns the label's current expiry, zero if never registered.
func (b *BaseRegistrar) NameExpires(label common.Hash) (inter.Timestamp, error) {
	rec, ok, err := b.record(label)
	if err != nil || !ok {
		return 0, err
	}
	return rec.Expires, nil
}

// OwnerOf returns the label's owner. An expired label (even inside grace)
// has no owner for query purposes.
func (b *BaseRegistrar) OwnerOf(label common.Hash, now inter.Timestamp) (common.Address, error) {
	rec, ok, err := b.record(label)
	if err != nil || !ok {
		return common.Address{}, err
	}
	if now > rec.Expires {
		return common.Address{}, nil
	}
	return rec.Owner, nil
}

// RegisterWithRecord mints the label to owner for duration, storing the
// resolver and TTL alongside. Controller-only; the label must be available.
// Re-registering after expiry plus grace starts a new lifecycle epoch.
func (b *BaseRegistrar) RegisterWithRecord(caller common.Address, label common.Hash, owner common.Address, duration time.Duration, resolverAddr common.Address, ttl uint64, now inter.Timestamp) (inter.Timestamp, error) {
	if !b.controllers[caller] {
		return 0, ErrNotController
	}
	available, err := b.IsAvailable(label, now)
	if err != nil {
		return 0, err
	}
	if !available {
		return 0, ErrNameNotAvailable
	}
	expires := now.Add(duration)
	rec := nameRecord{Owner: owner, Expires: expires, Resolver: resolverAddr, TTL: ttl}
	if err := b.setRecord(label, rec); err != nil {
		return 0, err
	}
	b.sdb.AddEvent(EventNameMinted{Label: label, Owner: owner, Expires: expires})
	b.log.WithFields(logrus.Fields{
		"label":   label.Hex(),
		"owner":   owner.Hex(),
		"expires": expires.Time().UTC(),
	}).Debug("name minted")
	return expires, nil
}

// Renew extends the label's expiry by duration. Controller-only; the label
// must still be within its grace window. The new expiry builds on the old
// one, so the expiry only ever increases.
func (b *BaseRegistrar) Renew(caller common.Address, label common.Hash, duration time.Duration, now inter.Timestamp) (inter.Timestamp, error) {
	if !b.controllers[caller] {
		return 0, ErrNotController
	}
	rec, ok, err := b.record(label)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotRegistered
	}
	if now > rec.Expires.Add(b.grace) {
		return 0, ErrGraceExpired
	}
	rec.Expires = rec.Expires.Add(duration)
	if err := b.setRecord(label, rec); err != nil {
		return 0, err
	}
	return rec.Expires, nil
}

func (b *BaseRegistrar) record(label common.Hash) (nameRecord, bool, error) {
	raw, err := b.sdb.Get(recordKey(label))
	if err != nil || raw == nil {
		return nameRecord{}, false, err
	}
	var rec nameRecord
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return nameRecord{}, false, err
	}
	return rec, true, nil
}

func (b *BaseRegistrar) setRecord(label common.Hash, rec nameRecord) error {
	raw, err := rlp.EncodeToBytes(&rec)
	if err != nil {
		return err
	}
	b.sdb.Set(recordKey(label), raw)
	return nil
}

func recordKey(label common.Hash) []byte {
	return append(append([]byte(nil), recordPrefix...), label.Bytes()...)
}
