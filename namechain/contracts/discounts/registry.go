// Package discounts implements the discount-eligibility registry: a mapping
// from opaque discount keys to discount configuration, an index of the
// currently active keys, and the one-shot per-registrant consumption flag.
//
// Trust decisions are delegated to validator capabilities: the registry
// stores the validator's address and dispatches proof checks to whatever
// implementation is wired in for that address. A registrant may consume at
// most one discount ever; the flag is permanent by design (anti-abuse, not
// a missing reset).
package discounts

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

var (
	// ErrNotOwner is returned when a non-owner calls an owner-only
	// configuration operation.
	ErrNotOwner = errors.New("caller is not the registry owner")

	// ErrInvalidDiscountAmount rejects activating a discount of zero wei.
	ErrInvalidDiscountAmount = errors.New("discount amount must be nonzero")

	// ErrInvalidValidator rejects a discount without a validator, or an
	// eligibility check whose validator capability is not wired in.
	ErrInvalidValidator = errors.New("discount validator is invalid")

	// ErrInactiveDiscount is returned for eligibility checks against an
	// unknown or deactivated discount key.
	ErrInactiveDiscount = errors.New("discount is not active")

	// ErrInvalidDiscount is returned when the validator rejects the
	// registrant's proof.
	ErrInvalidDiscount = errors.New("discount proof rejected by validator")

	// ErrAlreadyRegisteredWithDiscount enforces the one-discount-ever
	// rule per registrant.
	ErrAlreadyRegisteredWithDiscount = errors.New("registrant already used a discount")
)

// State key prefixes of the registry.
var (
	configPrefix = []byte("d/cfg/")
	consumedKey  = []byte("d/used/")
	activeKey    = []byte("d/active")
)

// Validator is the capability interface behind every discount: an
// externally implemented predicate deciding whether a registrant is
// entitled to the discount given an opaque proof payload (a signature,
// token ownership, an attestation).
type Validator interface {
	IsValidDiscountRegistration(registrant common.Address, proof []byte) bool
}

// Details is the configuration of a single discount key.
type Details struct {
	Active    bool           // whether the discount can currently be claimed
	Validator common.Address // address of the validator capability
	Amount    *big.Int       // discount in wei, subtracted from the register price
}

// Entry pairs a discount key with its configuration, for enumeration.
type Entry struct {
	Key     common.Hash
	Details Details
}

// EventDiscountUpdated is emitted whenever a discount configuration is set.
type EventDiscountUpdated struct {
	Key     common.Hash
	Details Details
}

// Registry is the discount-eligibility registry. Configuration and
// consumption flags live in ledger state, so they commit and revert
// together with the registration that uses them.
type Registry struct {
	sdb        *state.StateDB
	owner      common.Address
	validators map[common.Address]Validator
	log        *logrus.Entry
}

// NewRegistry creates the registry owned by the given configuration owner.
func NewRegistry(sdb *state.StateDB, owner common.Address) *Registry {
	return &Registry{
		sdb:        sdb,
		owner:      owner,
		validators: make(map[common.Address]Validator),
		log:        logrus.WithField("module", "discounts"),
	}
}

// WireValidator installs the capability implementation behind a validator
// address. Wiring is runtime plumbing, not ledger state.
func (r *Registry) WireValidator(addr common.Address, v Validator) {
	r.validators[addr] = v
}

// SetDiscount configures a discount key. Owner-only. Activating a discount
// requires a nonzero amount and a non-null validator; the active-key index
// is kept consistent with the Active flag.
func (r *Registry) SetDiscount(caller common.Address, key common.Hash, d Details) error {
	if caller != r.owner {
		return ErrNotOwner
	}
	if d.Amount == nil || d.Amount.Sign() <= 0 {
		return ErrInvalidDiscountAmount
	}
	if d.Validator == (common.Address{}) {
		return ErrInvalidValidator
	}

	raw, err := rlp.EncodeToBytes(&d)
	if err != nil {
		return err
	}
	r.sdb.Set(configKey(key), raw)

	if err := r.updateActiveIndex(key, d.Active); err != nil {
		return err
	}

	r.sdb.AddEvent(EventDiscountUpdated{Key: key, Details: d})
	r.log.WithFields(logrus.Fields{
		"key":    key.Hex(),
		"active": d.Active,
		"amount": d.Amount.String(),
	}).Info("discount updated")
	return nil
}

// Details returns the configuration of a discount key, and whether the key
// is known at all.
func (r *Registry) Details(key common.Hash) (Details, bool, error) {
	raw, err := r.sdb.Get(configKey(key))
	if err != nil || raw == nil {
		return Details{}, false, err
	}
	var d Details
	if err := rlp.DecodeBytes(raw, &d); err != nil {
		return Details{}, false, err
	}
	return d, true, nil
}

// ActiveDiscounts enumerates the currently active discounts. The order is
// the index insertion order and is not stable across removals; callers must
// treat it as unordered.
func (r *Registry) ActiveDiscounts() ([]Entry, error) {
	keys, err := r.activeIndex()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		d, ok, err := r.Details(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			// The index only ever references configured keys.
			continue
		}
		entries = append(entries, Entry{Key: key, Details: d})
	}
	return entries, nil
}

// IsEligible checks whether the registrant may claim the discount with the
// given proof, and returns the discount configuration on success. It does
// not consume the discount; MarkConsumed does, inside the same atomic
// registration.
func (r *Registry) IsEligible(registrant common.Address, key common.Hash, proof []byte) (Details, error) {
	used, err := r.HasRegisteredWithDiscount(registrant)
	if err != nil {
		return Details{}, err
	}
	if used {
		return Details{}, ErrAlreadyRegisteredWithDiscount
	}

	d, ok, err := r.Details(key)
	if err != nil {
		return Details{}, err
	}
	if !ok || !d.Active {
		return Details{}, ErrInactiveDiscount
	}

	validator, ok := r.validators[d.Validator]
	if !ok {
		return Details{}, ErrInvalidValidator
	}
	if !validator.IsValidDiscountRegistration(registrant, proof) {
		return Details{}, ErrInvalidDiscount
	}
	return d, nil
}

// MarkConsumed sets the registrant's permanent one-shot flag. The caller
// must invoke it exactly once per successful discounted registration, under
// the same snapshot as the registration itself.
func (r *Registry) MarkConsumed(registrant common.Address) {
	r.sdb.Set(consumedFlagKey(registrant), []byte{1})
}

// HasRegisteredWithDiscount reports whether the registrant has ever
// completed a discounted registration.
func (r *Registry) HasRegisteredWithDiscount(registrant common.Address) (bool, error) {
	raw, err := r.sdb.Get(consumedFlagKey(registrant))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

func (r *Registry) activeIndex() ([]common.Hash, error) {
	raw, err := r.sdb.Get(activeKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var keys []common.Hash
	if err := rlp.DecodeBytes(raw, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// updateActiveIndex inserts or removes the key so that membership matches
// the active flag. Removal swaps the last element in, so enumeration order
// is not preserved across removals.
func (r *Registry) updateActiveIndex(key common.Hash, active bool) error {
	keys, err := r.activeIndex()
	if err != nil {
		return err
	}
	pos := -1
	for i, k := range keys {
		if k == key {
			pos = i
			break
		}
	}
	switch {
	case active && pos < 0:
		keys = append(keys, key)
	case !active && pos >= 0:
		keys[pos] = keys[len(keys)-1]
		keys = keys[:len(keys)-1]
	default:
		return nil
	}
	raw, err := rlp.EncodeToBytes(keys)
	if err != nil {
		return err
	}
	r.sdb.Set(activeKey, raw)
	return nil
}

func configKey(key common.Hash) []byte {
	return append(append([]byte(nil), configPrefix...), key.Bytes()...)
}

func consumedFlagKey(addr common.Address) []byte {
	return append(append([]byte(nil), consumedKey...), addr.Bytes()...)
}
