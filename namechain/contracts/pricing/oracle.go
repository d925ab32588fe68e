package pricing

import (
	"errors"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain"
)

var (
	// ErrNonPositiveDuration is returned for zero or negative rental
	// durations. Pricing is pure computation; malformed inputs fail
	// loudly instead of being clamped.
	ErrNonPositiveDuration = errors.New("rental duration must be positive")
)

// Price is a quote for registering or renewing a name: the duration-based
// base price and the auction premium, both in wei. Premium is zero unless
// the name's post-expiry auction window is still open.
type Price struct {
	Base    *big.Int
	Premium *big.Int
}

// Total returns base + premium.
func (p Price) Total() *big.Int {
	return new(big.Int).Add(p.Base, p.Premium)
}

// Oracle prices name registrations. It is a pure function of the pricing
// rules: tiered per-second rates by label length for the base component,
// and the decay engine for the premium of recently expired names.
type Oracle struct {
	pricing namechain.PricingRules
	grace   inter.Timestamp
	launch  inter.Timestamp
	decay   *Decay
}

// NewOracle builds the oracle for a network's rules.
func NewOracle(rules namechain.Rules) (*Oracle, error) {
	decay, err := NewDecay(
		rules.Pricing.PremiumStart,
		rules.Pricing.AuctionDuration,
		rules.Pricing.AuctionStep,
		rules.Pricing.DecayFactor,
	)
	if err != nil {
		return nil, err
	}
	return &Oracle{
		pricing: rules.Pricing,
		grace:   inter.Timestamp(rules.Names.GracePeriod / time.Second),
		launch:  rules.Names.LaunchTime,
		decay:   decay,
	}, nil
}

// SetLaunchTime moves the registry launch time the premium window of
// pre-launch expiries is anchored to. Callers gate this behind ownership.
func (o *Oracle) SetLaunchTime(launch inter.Timestamp) {
	o.launch = launch
}

// Price quotes a registration of the label for the given duration at ledger
// time now. expires is the label's current expiry on the ownership ledger,
// zero if it was never registered.
//
// The base component is rate(length) * duration with round-toward-zero
// fixed-point semantics. The premium component delegates to the decay
// engine when the name's auction window is open.
func (o *Oracle) Price(label string, expires, now inter.Timestamp, duration time.Duration) (Price, error) {
	base, err := o.basePrice(label, duration)
	if err != nil {
		return Price{}, err
	}
	return Price{
		Base:    base,
		Premium: o.premium(expires, now),
	}, nil
}

// RenewPrice quotes a renewal: base component only. Renewal happens on
// names that are not auctioned, so the premium is deliberately excluded.
func (o *Oracle) RenewPrice(label string, duration time.Duration) (Price, error) {
	base, err := o.basePrice(label, duration)
	if err != nil {
		return Price{}, err
	}
	return Price{Base: base, Premium: new(big.Int)}, nil
}

func (o *Oracle) basePrice(label string, duration time.Duration) (*big.Int, error) {
	seconds := int64(duration / time.Second)
	if seconds <= 0 {
		return nil, ErrNonPositiveDuration
	}
	rate := o.pricing.RateForLength(utf8.RuneCountInString(label))
	return new(big.Int).Mul(rate, big.NewInt(seconds)), nil
}

// premium computes the auction surcharge at ledger time now for a name that
// last expired at expires.
//
// The auction opens when the name becomes registrable again: at expiry plus
// the grace period: names that expired before the registry launch (carried
// over by migration, already out of grace in the legacy system) auction
// from the launch time instead. A window start in the future clamps to
// elapsed zero rather than underflowing.
func (o *Oracle) premium(expires, now inter.Timestamp) *big.Int {
	if expires == 0 {
		return new(big.Int)
	}
	var windowStart inter.Timestamp
	if expires < o.launch {
		windowStart = o.launch
	} else {
		windowStart = expires + o.grace
	}
	// Elapsed saturates at zero, covering the defensive future-expiry case.
	return o.decay.DecayedPremium(now.Elapsed(windowStart))
}
