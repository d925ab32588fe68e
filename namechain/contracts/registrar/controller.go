package registrar

import (
	"fmt"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain"
	"github.com/rony4d/go-namechain/namechain/contracts/discounts"
	"github.com/rony4d/go-namechain/namechain/contracts/pricing"
	"github.com/rony4d/go-namechain/namechain/contracts/resolver"
	"github.com/rony4d/go-namechain/namechain/contracts/reverse"
	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

// Ledger is the ownership-ledger capability the controller consumes.
// BaseRegistrar is the concrete implementation.
type Ledger interface {
	IsAvailable(label common.Hash, now inter.Timestamp) (bool, error)
	NameExpires(label common.Hash) (inter.Timestamp, error)
	RegisterWithRecord(caller common.Address, label common.Hash, owner common.Address, duration time.Duration, resolverAddr common.Address, ttl uint64, now inter.Timestamp) (inter.Timestamp, error)
	Renew(caller common.Address, label common.Hash, duration time.Duration, now inter.Timestamp) (inter.Timestamp, error)
}

// Call carries the transaction context of one controller operation: who
// calls, how much wei rides along, and the ledger time it executes at.
type Call struct {
	Caller common.Address
	Value  *big.Int
	Time   inter.Timestamp
}

// RegisterRequest is the ephemeral input of a registration. It is validated
// and consumed within a single atomic operation, never persisted.
type RegisterRequest struct {
	Name          string
	Owner         common.Address
	Duration      time.Duration
	Resolver      common.Address
	Data          []resolver.RecordOp
	ReverseRecord bool
	// ReverseProof authorizes the controller to set the reverse record
	// through the new-protocol registrar during the migration window.
	ReverseProof reverse.SignatureProof
}

// Lifecycle events of the controller. Events are the externally observable
// audit log; a refund event appears only when an actual refund happened.
type (
	EventNameRegistered struct {
		Label   common.Hash
		Name    string
		Owner   common.Address
		Expires inter.Timestamp
		Base    *big.Int
		Premium *big.Int
	}
	EventNameRenewed struct {
		Label   common.Hash
		Name    string
		Expires inter.Timestamp
		Cost    *big.Int
	}
	EventDiscountApplied struct {
		Registrant common.Address
		Key        common.Hash
	}
	EventPaymentProcessed struct {
		Payer  common.Address
		Amount *big.Int
	}
	EventRefundIssued struct {
		To     common.Address
		Amount *big.Int
	}
	EventFundsWithdrawn struct {
		To     common.Address
		Amount *big.Int
	}
)

// Controller is the registration state machine. Every public operation runs
// under a state snapshot and unwinds wholesale on any error; an explicit
// re-entrancy guard rejects callbacks from external collaborators.
type Controller struct {
	sdb   *state.StateDB
	addr  common.Address // the controller's own account, holds captured payments
	owner common.Address

	names  namechain.NamesRules
	oracle *pricing.Oracle
	ledger Ledger

	discounts *discounts.Registry
	resolvers map[common.Address]resolver.Resolver

	legacyReverse reverse.Registrar
	shim          *reverse.MigrationShim
	migration     bool

	paymentReceiver common.Address

	inCall bool
	log    *logrus.Entry
}

// NewController wires the controller over its collaborators. addr is the
// controller's own account; it must be registered as a controller on the
// ownership ledger and approved on the legacy reverse registrar separately.
func NewController(sdb *state.StateDB, addr, owner, paymentReceiver common.Address, rules namechain.Rules, oracle *pricing.Oracle, ledger Ledger, reg *discounts.Registry) *Controller {
	return &Controller{
		sdb:             sdb,
		addr:            addr,
		owner:           owner,
		names:           rules.Names,
		oracle:          oracle,
		ledger:          ledger,
		discounts:       reg,
		resolvers:       make(map[common.Address]resolver.Resolver),
		migration:       rules.Upgrades.ReverseMigration,
		paymentReceiver: paymentReceiver,
		log:             logrus.WithField("module", "controller"),
	}
}

// WireResolver installs the record-store capability behind a resolver
// address. Wiring is runtime plumbing, not ledger state.
func (c *Controller) WireResolver(addr common.Address, r resolver.Resolver) {
	c.resolvers[addr] = r
}

// WireReverse installs the reverse registrars. During the migration window
// the shim dual-writes; otherwise only the legacy registrar is used.
func (c *Controller) WireReverse(legacy reverse.Registrar, shim *reverse.MigrationShim) {
	c.legacyReverse = legacy
	c.shim = shim
}

// SetPaymentReceiver changes where withdrawn funds go. Owner-only, zero
// address rejected.
func (c *Controller) SetPaymentReceiver(caller, receiver common.Address) error {
	if caller != c.owner {
		return ErrNotOwner
	}
	if receiver == (common.Address{}) {
		return ErrZeroAddress
	}
	c.paymentReceiver = receiver
	return nil
}

// SetPriceOracle swaps the pricing oracle. Owner-only.
func (c *Controller) SetPriceOracle(caller common.Address, oracle *pricing.Oracle) error {
	if caller != c.owner {
		return ErrNotOwner
	}
	if oracle == nil {
		return ErrZeroAddress
	}
	c.oracle = oracle
	return nil
}

// SetLaunchTime moves the registry launch time. Owner-only.
func (c *Controller) SetLaunchTime(caller common.Address, launch inter.Timestamp) error {
	if caller != c.owner {
		return ErrNotOwner
	}
	c.names.LaunchTime = launch
	c.oracle.SetLaunchTime(launch)
	return nil
}

// Valid reports whether the name meets the structural requirements.
func (c *Controller) Valid(name string) bool {
	return utf8.RuneCountInString(name) >= c.names.MinNameLength
}

// Available reports whether the name can be registered at ledger time now:
// structurally valid and available on the ownership ledger.
func (c *Controller) Available(name string, now inter.Timestamp) (bool, error) {
	if !c.Valid(name) {
		return false, nil
	}
	return c.ledger.IsAvailable(namechain.Labelhash(name), now)
}

// RegisterPrice quotes a registration, premium included.
func (c *Controller) RegisterPrice(name string, duration time.Duration, now inter.Timestamp) (pricing.Price, error) {
	expires, err := c.ledger.NameExpires(namechain.Labelhash(name))
	if err != nil {
		return pricing.Price{}, err
	}
	return c.oracle.Price(name, expires, now, duration)
}

// RentPrice quotes a renewal: base component only.
func (c *Controller) RentPrice(name string, duration time.Duration) (pricing.Price, error) {
	return c.oracle.RenewPrice(name, duration)
}

// Register registers a name. See the request struct for the inputs; the
// call's value must cover the quoted price and any excess is refunded.
func (c *Controller) Register(call Call, req RegisterRequest) error {
	return c.atomically(func() error {
		price, err := c.validateRegistration(call, req)
		if err != nil {
			return err
		}
		return c.executeRegistration(call, req, price)
	})
}

// DiscountedRegister registers a name with a discount applied. The
// registrant must pass the discount's validator and must never have used a
// discount before; the consumption flag is set under the same snapshot as
// the registration, so both commit or neither does.
func (c *Controller) DiscountedRegister(call Call, req RegisterRequest, key common.Hash, proof []byte) error {
	return c.atomically(func() error {
		price, err := c.validateRegistration(call, req)
		if err != nil {
			return err
		}
		d, err := c.discounts.IsEligible(call.Caller, key, proof)
		if err != nil {
			return err
		}
		c.discounts.MarkConsumed(call.Caller)
		c.sdb.AddEvent(EventDiscountApplied{Registrant: call.Caller, Key: key})

		price = applyDiscount(price, d.Amount)
		return c.executeRegistration(call, req, price)
	})
}

// Renew extends an existing registration. There is no availability check
// and no duration floor; the premium is deliberately excluded from the
// price. The ownership ledger rejects renewals past the grace window.
func (c *Controller) Renew(call Call, name string, duration time.Duration) error {
	return c.atomically(func() error {
		price, err := c.oracle.RenewPrice(name, duration)
		if err != nil {
			return err
		}
		cost := price.Total()
		if call.Value.Cmp(cost) < 0 {
			return ErrInsufficientValue
		}
		if err := c.capturePayment(call); err != nil {
			return err
		}
		label := namechain.Labelhash(name)
		expires, err := c.ledger.Renew(c.addr, label, duration, call.Time)
		if err != nil {
			return err
		}
		if err := c.refundExcess(call, cost); err != nil {
			return err
		}
		c.sdb.AddEvent(EventNameRenewed{Label: label, Name: name, Expires: expires, Cost: cost})
		c.sdb.AddEvent(EventPaymentProcessed{Payer: call.Caller, Amount: cost})
		c.log.WithFields(logrus.Fields{
			"name":    name,
			"expires": expires.Time().UTC(),
		}).Info("name renewed")
		return nil
	})
}

// WithdrawFunds sweeps the controller's accumulated payments to the
// configured payment receiver. Any caller may trigger the sweep; the
// destination is fixed.
func (c *Controller) WithdrawFunds(call Call) error {
	return c.atomically(func() error {
		amount := c.sdb.GetBalance(c.addr)
		if amount.Sign() == 0 {
			return nil
		}
		if err := c.sdb.Transfer(c.addr, c.paymentReceiver, amount); err != nil {
			return fmt.Errorf("%w: withdrawal: %v", ErrTransferFailed, err)
		}
		c.sdb.AddEvent(EventFundsWithdrawn{To: c.paymentReceiver, Amount: amount})
		return nil
	})
}

// validateRegistration checks the structural preconditions shared by the
// plain and discounted paths and quotes the full price. Validation happens
// before any payment is touched.
func (c *Controller) validateRegistration(call Call, req RegisterRequest) (pricing.Price, error) {
	if !c.Valid(req.Name) {
		return pricing.Price{}, ErrNameNotAvailable
	}
	if len(req.Data) > 0 && req.Resolver == (common.Address{}) {
		return pricing.Price{}, ErrResolverRequired
	}
	available, err := c.ledger.IsAvailable(namechain.Labelhash(req.Name), call.Time)
	if err != nil {
		return pricing.Price{}, err
	}
	if !available {
		return pricing.Price{}, ErrNameNotAvailable
	}
	if req.Duration < c.names.MinRegistrationDuration {
		return pricing.Price{}, ErrDurationTooShort
	}
	return c.RegisterPrice(req.Name, req.Duration, call.Time)
}

// executeRegistration performs the effect phase: capture payment, mint,
// delegate records, delegate the reverse record, refund, emit events. The
// ordering (mint before record-set before reverse-set before refund) is
// preserved; combined with the re-entrancy guard it keeps callbacks from
// observing half-established state.
func (c *Controller) executeRegistration(call Call, req RegisterRequest, price pricing.Price) error {
	cost := price.Total()
	if call.Value.Cmp(cost) < 0 {
		return ErrInsufficientValue
	}
	if err := c.capturePayment(call); err != nil {
		return err
	}

	label := namechain.Labelhash(req.Name)
	expires, err := c.ledger.RegisterWithRecord(c.addr, label, req.Owner, req.Duration, req.Resolver, 0, call.Time)
	if err != nil {
		return err
	}

	if len(req.Data) > 0 {
		res, ok := c.resolvers[req.Resolver]
		if !ok {
			return ErrInvalidResolver
		}
		node := namechain.Subnode(c.names.RootNode, req.Name)
		if err := res.MulticallWithNodeCheck(node, req.Data); err != nil {
			return err
		}
	}

	if req.ReverseRecord {
		if err := c.setReverseRecord(call, req); err != nil {
			return err
		}
	}

	if err := c.refundExcess(call, cost); err != nil {
		return err
	}

	c.sdb.AddEvent(EventNameRegistered{
		Label:   label,
		Name:    req.Name,
		Owner:   req.Owner,
		Expires: expires,
		Base:    price.Base,
		Premium: price.Premium,
	})
	c.sdb.AddEvent(EventPaymentProcessed{Payer: call.Caller, Amount: cost})
	c.log.WithFields(logrus.Fields{
		"name":    req.Name,
		"owner":   req.Owner.Hex(),
		"expires": expires.Time().UTC(),
		"cost":    cost.String(),
	}).Info("name registered")
	return nil
}

func (c *Controller) setReverseRecord(call Call, req RegisterRequest) error {
	fullName := req.Name + "." + c.names.RootName
	if c.migration && c.shim != nil {
		_, err := c.shim.SetPrimaryName(c.addr, call.Caller, req.Owner, req.Resolver, fullName, req.ReverseProof, call.Time)
		return err
	}
	if c.legacyReverse == nil {
		return nil
	}
	_, err := c.legacyReverse.SetNameForAddr(c.addr, call.Caller, req.Owner, req.Resolver, fullName)
	return err
}

// capturePayment moves the call's full value to the controller account.
// The excess over the price flows back through refundExcess.
func (c *Controller) capturePayment(call Call) error {
	if call.Value.Sign() == 0 {
		return nil
	}
	return c.sdb.Transfer(call.Caller, c.addr, call.Value)
}

// refundExcess returns value minus cost to the caller. A refund the caller
// rejects is fatal to the whole operation.
func (c *Controller) refundExcess(call Call, cost *big.Int) error {
	excess := new(big.Int).Sub(call.Value, cost)
	if excess.Sign() <= 0 {
		return nil
	}
	if err := c.sdb.Transfer(c.addr, call.Caller, excess); err != nil {
		return fmt.Errorf("%w: refund: %v", ErrTransferFailed, err)
	}
	c.sdb.AddEvent(EventRefundIssued{To: call.Caller, Amount: excess})
	return nil
}

// atomically runs op under the re-entrancy guard and a state snapshot,
// reverting every mutation if op fails.
func (c *Controller) atomically(op func() error) error {
	if c.inCall {
		return ErrReentrantCall
	}
	c.inCall = true
	defer func() { c.inCall = false }()

	snapshot := c.sdb.Snapshot()
	if err := op(); err != nil {
		c.sdb.RevertToSnapshot(snapshot)
		return err
	}
	return nil
}

// applyDiscount subtracts the discount from the quoted price, premium
// first, flooring at zero. Excess discount is forfeited, never refunded.
func applyDiscount(price pricing.Price, amount *big.Int) pricing.Price {
	total := price.Total()
	if total.Cmp(amount) <= 0 {
		return pricing.Price{Base: new(big.Int), Premium: new(big.Int)}
	}
	remaining := new(big.Int).Set(amount)
	premium := new(big.Int).Set(price.Premium)
	if premium.Cmp(remaining) >= 0 {
		premium.Sub(premium, remaining)
		remaining.SetInt64(0)
	} else {
		remaining.Sub(remaining, premium)
		premium.SetInt64(0)
	}
	base := new(big.Int).Sub(price.Base, remaining)
	return pricing.Price{Base: base, Premium: premium}
}
