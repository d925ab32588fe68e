// Package pricing implements the registry price oracle: tiered base pricing
// by label length, and the exponential premium decay applied to names whose
// post-expiry auction is still running.
package pricing

import (
	"errors"
	"math/big"
	"time"

	"github.com/rony4d/go-namechain/inter"
)

// fixed-point scale of the decay arithmetic (wad, 1e18).
var fpOne = big.NewInt(1e18)

var (
	// ErrBadDecayConfig is returned when the decay parameters cannot form
	// a monotone curve (zero step, factor outside (0,1), negative start).
	ErrBadDecayConfig = errors.New("invalid premium decay configuration")
)

// maxFracBits bounds the binary expansion of a fractional step exponent.
// 1e18 has under 60 significant bits, so 64 iterations always exhaust it.
const maxFracBits = 64

// Decay computes the auction premium as a function of elapsed auction time.
//
// The curve is start * factor^(elapsed/step) in 1e18 fixed point, evaluated
// as an integer power for whole steps and by square-root bit decomposition
// of the exponent within a step, minus a linearly ramped end-value offset.
// The offset is what makes the curve hit exactly zero at the end of the
// auction while keeping DecayedPremium(0) == start exact: the raw
// exponential alone never reaches zero.
type Decay struct {
	start  *big.Int        // premium at elapsed 0
	total  inter.Timestamp // auction length, seconds
	step   inter.Timestamp // decay step, seconds
	factor *big.Int        // per-step multiplier, 1e18 fixed point

	// fracFactors[i] is factor^(1/2^(i+1)) in fixed point, precomputed by
	// iterated integer square roots.
	fracFactors []*big.Int

	// endValue is the raw exponential evaluated at total, so that the
	// ramped offset cancels it exactly at the auction end.
	endValue *big.Int
}

// NewDecay builds a decay curve. start is the premium at the moment the
// auction opens; total and step are truncated to whole seconds; factor is
// the per-step multiplier in 1e18 fixed point and must lie in (0, 1e18).
func NewDecay(start *big.Int, total, step time.Duration, factor *big.Int) (*Decay, error) {
	d := &Decay{
		start:  new(big.Int).Set(start),
		total:  inter.Timestamp(total / time.Second),
		step:   inter.Timestamp(step / time.Second),
		factor: new(big.Int).Set(factor),
	}
	if d.start.Sign() < 0 || d.total == 0 || d.step == 0 {
		return nil, ErrBadDecayConfig
	}
	if d.factor.Sign() <= 0 || d.factor.Cmp(fpOne) >= 0 {
		return nil, ErrBadDecayConfig
	}

	d.fracFactors = make([]*big.Int, maxFracBits)
	prev := d.factor
	for i := 0; i < maxFracBits; i++ {
		// sqrt(prev * 1e18) keeps the value in 1e18 fixed point.
		next := new(big.Int).Mul(prev, fpOne)
		next.Sqrt(next)
		d.fracFactors[i] = next
		prev = next
	}

	d.endValue = d.raw(d.total)
	return d, nil
}

// Start returns the premium at elapsed zero.
func (d *Decay) Start() *big.Int {
	return new(big.Int).Set(d.start)
}

// Total returns the auction length in seconds.
func (d *Decay) Total() inter.Timestamp {
	return d.total
}

// DecayedPremium returns the premium after the given elapsed auction time.
// It is monotone non-increasing, equals the start premium at elapsed zero,
// and saturates to zero at and beyond the total auction duration; arbitrary
// large inputs are safe.
func (d *Decay) DecayedPremium(elapsed inter.Timestamp) *big.Int {
	if elapsed >= d.total {
		return new(big.Int)
	}
	premium := d.raw(elapsed)

	// Ramped offset: endValue * elapsed / total. Zero at the auction
	// start, exactly endValue at the end. Subtracting a non-decreasing
	// term from a non-increasing one keeps the result monotone.
	offset := new(big.Int).SetUint64(uint64(elapsed))
	offset.Mul(offset, d.endValue)
	offset.Div(offset, new(big.Int).SetUint64(uint64(d.total)))

	premium.Sub(premium, offset)
	if premium.Sign() < 0 {
		return new(big.Int)
	}
	return premium
}

// raw evaluates start * factor^(elapsed/step) with floor rounding.
func (d *Decay) raw(elapsed inter.Timestamp) *big.Int {
	premium := new(big.Int).Set(d.start)

	// Whole decay steps: one fixed-point multiply per step. The auction
	// length bounds the loop; elapsed beyond it never reaches here.
	for i := inter.Timestamp(0); i < elapsed/d.step; i++ {
		premium.Mul(premium, d.factor)
		premium.Div(premium, fpOne)
	}

	// Fractional step: decompose rem/step into binary fractions and
	// multiply by the matching precomputed roots of the factor. The roots
	// are accumulated into one fixed-point multiplier first and applied to
	// the premium in a single rounding, so the flooring error stays at one
	// part in 1e18 of the multiplier. Flooring the premium once per root
	// instead would lose whole wei per root, enough to push a late-auction
	// sample below the next whole-step value and bend the curve upward.
	rem := elapsed % d.step
	if rem == 0 {
		return premium
	}
	frac := new(big.Int).SetUint64(uint64(rem))
	frac.Mul(frac, fpOne)
	frac.Div(frac, new(big.Int).SetUint64(uint64(d.step)))

	mult := new(big.Int).Set(fpOne)
	for i := 0; i < maxFracBits && frac.Sign() > 0; i++ {
		frac.Lsh(frac, 1)
		if frac.Cmp(fpOne) >= 0 {
			frac.Sub(frac, fpOne)
			mult.Mul(mult, d.fracFactors[i])
			mult.Div(mult, fpOne)
		}
	}
	premium.Mul(premium, mult)
	premium.Div(premium, fpOne)
	return premium
}
