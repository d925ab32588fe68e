// Package namechain defines the network rules for the namechain registry
// suite: the name-lifecycle parameters (minimum length, minimum registration
// duration, grace period), the pricing and auction parameters consumed by the
// price oracle, and the protocol upgrade flags.
//
// The Rules type is the central configuration structure for a network
// deployment. It is owner-mutable configuration, not user data: the launcher
// builds it from per-network constructors and flag overrides, and the
// contract suite treats it as read-only while an operation is in flight.
package namechain

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"

	"github.com/rony4d/go-namechain/inter"
)

// Network identification constants.
const (
	// MainNetworkID is the chain ID of the namechain mainnet.
	MainNetworkID uint64 = 0x2105

	// TestNetworkID is the chain ID of the public testnet.
	TestNetworkID uint64 = 0x14a34

	// FakeNetworkID is the chain ID for local/fake networks used in testing.
	FakeNetworkID uint64 = 0x14a35
)

// Name lifecycle defaults shared by every network.
const (
	// DefaultMinNameLength is the shortest registrable label, in runes.
	DefaultMinNameLength = 3

	// DefaultMinRegistrationDuration is the floor for a first registration.
	DefaultMinRegistrationDuration = 365 * 24 * time.Hour

	// DefaultGracePeriod is the window after expiry reserved for the
	// previous owner to renew before the name becomes available again.
	DefaultGracePeriod = 90 * 24 * time.Hour
)

// Auction defaults shared by every network.
const (
	// DefaultAuctionDuration is the total length of the post-expiry premium
	// auction.
	DefaultAuctionDuration = 21 * 24 * time.Hour

	// DefaultAuctionStep is the decay step of the premium auction; the
	// premium halves once per step under the default decay factor.
	DefaultAuctionStep = 24 * time.Hour
)

// Rules describes the complete registry configuration for a namechain
// network deployment.
type Rules struct {
	Name      string // network name identifier ("main", "test", "fake")
	NetworkID uint64 // chain ID for replay protection

	// Names holds the name-lifecycle parameters.
	Names NamesRules

	// Pricing holds the base-price tiers and auction decay parameters.
	Pricing PricingRules

	// Upgrades holds the protocol upgrade flags.
	Upgrades Upgrades
}

// NamesRules defines the lifecycle parameters of registered names.
type NamesRules struct {
	// RootName is the parent name every registration is a label under,
	// e.g. "name.eth" makes "alice" resolve as "alice.name.eth".
	RootName string

	// RootNode is the EIP-137 node of RootName. Derived, kept alongside
	// the name so stores and events never re-hash it.
	RootNode common.Hash

	// MinNameLength is the shortest registrable label, counted in runes.
	MinNameLength int

	// MinRegistrationDuration is the duration floor for first
	// registrations. Renewals have no floor.
	MinRegistrationDuration time.Duration

	// GracePeriod is the post-expiry window reserved for the previous
	// owner. A name is available again only once the grace period passed.
	GracePeriod time.Duration

	// LaunchTime is the registry launch timestamp. Names carried over
	// from a migration with expiries before launch start their premium
	// auction at launch rather than at their historical expiry.
	LaunchTime inter.Timestamp
}

// PricingRules defines the base-price tiers and the premium auction decay.
// All rates are wei per second; tier selection is by label length in runes.
type PricingRules struct {
	// Rate1Letter..Rate5Letter are the per-second rental rates for 1, 2,
	// 3, 4 and 5-or-more letter labels.
	Rate1Letter *big.Int
	Rate2Letter *big.Int
	Rate3Letter *big.Int
	Rate4Letter *big.Int
	Rate5Letter *big.Int

	// PremiumStart is the auction premium at the moment a name becomes
	// available (expiry + grace period).
	PremiumStart *big.Int

	// AuctionDuration is the total premium decay window; past it the
	// premium is exactly zero.
	AuctionDuration time.Duration

	// AuctionStep is the decay step; the premium is multiplied by
	// DecayFactor once per whole step, interpolated within a step.
	AuctionStep time.Duration

	// DecayFactor is the per-step decay multiplier in 1e18 fixed point
	// (5e17 means the premium halves every step).
	DecayFactor *big.Int
}

// Upgrades tracks which protocol upgrades are enabled for a network.
type Upgrades struct {
	// ReverseMigration enables the reverse-registrar migration window:
	// primary-name writes are fanned out to both the legacy and the
	// new-protocol reverse registrar.
	ReverseMigration bool
}

// MainNetRules returns the registry rules of the namechain mainnet.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Names:     DefaultNamesRules("name.eth"),
		Pricing:   DefaultPricingRules(),
	}
}

// TestNetRules returns the registry rules of the public testnet. The
// lifecycle and pricing parameters match mainnet for realistic testing.
func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Names:     DefaultNamesRules("test.name.eth"),
		Pricing:   DefaultPricingRules(),
	}
}

// FakeNetRules returns the registry rules for local/fake networks:
// mainnet pricing with an accelerated auction (minutes instead of days)
// and every upgrade enabled.
func FakeNetRules() Rules {
	pricing := DefaultPricingRules()
	pricing.AuctionDuration = 21 * time.Minute
	pricing.AuctionStep = time.Minute
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Names:     DefaultNamesRules("fake.eth"),
		Pricing:   pricing,
		Upgrades: Upgrades{
			ReverseMigration: true,
		},
	}
}

// DefaultNamesRules returns the standard lifecycle parameters under the
// given root name.
func DefaultNamesRules(rootName string) NamesRules {
	return NamesRules{
		RootName:                rootName,
		RootNode:                Namehash(rootName),
		MinNameLength:           DefaultMinNameLength,
		MinRegistrationDuration: DefaultMinRegistrationDuration,
		GracePeriod:             DefaultGracePeriod,
	}
}

// DefaultPricingRules returns the standard pricing tiers and auction decay.
//
// The tier rates decade from one tier to the next; over a 365-day year they
// come to roughly 1 ether for a single letter down to 0.0001 ether for five
// letters and more. The auction starts at 100 ether and halves daily over
// 21 days.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		Rate1Letter: big.NewInt(31709791983), // ~1 ether / year
		Rate2Letter: big.NewInt(3170979198),  // ~0.1 ether / year
		Rate3Letter: big.NewInt(317097919),   // ~0.01 ether / year
		Rate4Letter: big.NewInt(31709791),    // ~0.001 ether / year
		Rate5Letter: big.NewInt(3170979),     // ~0.0001 ether / year

		PremiumStart:    new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether)),
		AuctionDuration: DefaultAuctionDuration,
		AuctionStep:     DefaultAuctionStep,
		DecayFactor:     big.NewInt(5e17), // halve per step
	}
}

// RateForLength returns the per-second rental rate of a label of the given
// rune count. Zero-length labels are not registrable; callers validate
// length before pricing.
func (p PricingRules) RateForLength(length int) *big.Int {
	switch {
	case length <= 1:
		return p.Rate1Letter
	case length == 2:
		return p.Rate2Letter
	case length == 3:
		return p.Rate3Letter
	case length == 4:
		return p.Rate4Letter
	default:
		return p.Rate5Letter
	}
}

// Copy returns a deep copy of the rules. All *big.Int fields are
// re-allocated so the copy shares no mutable state with the original.
func (r Rules) Copy() Rules {
	cp := r
	cp.Pricing.Rate1Letter = new(big.Int).Set(r.Pricing.Rate1Letter)
	cp.Pricing.Rate2Letter = new(big.Int).Set(r.Pricing.Rate2Letter)
	cp.Pricing.Rate3Letter = new(big.Int).Set(r.Pricing.Rate3Letter)
	cp.Pricing.Rate4Letter = new(big.Int).Set(r.Pricing.Rate4Letter)
	cp.Pricing.Rate5Letter = new(big.Int).Set(r.Pricing.Rate5Letter)
	cp.Pricing.PremiumStart = new(big.Int).Set(r.Pricing.PremiumStart)
	cp.Pricing.DecayFactor = new(big.Int).Set(r.Pricing.DecayFactor)
	return cp
}

// String returns the rules as indented JSON, for logs and dumps.
func (r Rules) String() string {
	b, _ := json.MarshalIndent(r, "", "  ")
	return string(b)
}
