// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amm implements the subnet liquidity pool: a TAO reserve paired with
// an alpha reserve priced by the constant product rule, plus the stable 1:1
// mechanism used by the root network.
package amm

import (
	"errors"

	"github.com/holiman/uint256"
)

const (
	// MinimumPoolLiquidity is the smallest reserve a real swap may leave behind.
	MinimumPoolLiquidity uint64 = 10_000_000

	// PriceScale is the fixed-point denominator of scaled prices.
	PriceScale uint64 = 1_000_000_000

	// DefaultHalvingBlocks is the default EMA price halving period.
	DefaultHalvingBlocks uint64 = 201_600
)

var (
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrZeroAmount            = errors.New("swap amount is zero")
	ErrUnknownMechanism      = errors.New("unknown subnet mechanism")
)

// Mechanism selects the pricing rule of a pool.
type Mechanism uint16

const (
	// Stable pools swap 1:1 and report a price of one.
	Stable Mechanism = 0
	// Dynamic pools use the constant product rule.
	Dynamic Mechanism = 1
)

func (m Mechanism) Valid() bool {
	return m == Stable || m == Dynamic
}

func (m Mechanism) String() string {
	switch m {
	case Stable:
		return "stable"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Pool holds the reserves of one subnet.
type Pool struct {
	Mechanism Mechanism
	TaoIn     uint64
	AlphaIn   uint64
	AlphaOut  uint64
	// Volume is the cumulative TAO traded through the pool.
	Volume uint64
	// MovingPrice is the EMA of the spot price, scaled by PriceScale.
	MovingPrice uint64
}

// Issuance is the total alpha in existence for the subnet.
func (p *Pool) Issuance() uint64 {
	return saturatingAdd(p.AlphaIn, p.AlphaOut)
}

// Price returns the integer part of TAO per alpha.
func (p *Pool) Price() uint64 {
	return p.ScaledPrice() / PriceScale
}

// ScaledPrice returns TAO per alpha scaled by PriceScale.
func (p *Pool) ScaledPrice() uint64 {
	if p.Mechanism == Stable {
		return PriceScale
	}
	if p.AlphaIn == 0 {
		return 0
	}
	price := new(uint256.Int).Mul(uint256.NewInt(p.TaoIn), uint256.NewInt(PriceScale))
	price.Div(price, uint256.NewInt(p.AlphaIn))
	return saturate(price)
}

// MovingAlphaPrice returns the integer part of the moving price.
func (p *Pool) MovingAlphaPrice() uint64 {
	return p.MovingPrice / PriceScale
}

// SimSwapTaoForAlpha projects the alpha received for [tao] without touching
// the reserves. Impossible swaps project to zero.
func (p *Pool) SimSwapTaoForAlpha(tao uint64) uint64 {
	if tao == 0 {
		return 0
	}
	if p.Mechanism == Stable {
		return tao
	}
	return constantProductOut(p.TaoIn, p.AlphaIn, tao)
}

// SimSwapAlphaForTao projects the TAO received for [alpha] without touching
// the reserves. Impossible swaps project to zero.
func (p *Pool) SimSwapAlphaForTao(alpha uint64) uint64 {
	if alpha == 0 {
		return 0
	}
	if p.Mechanism == Stable {
		return alpha
	}
	return constantProductOut(p.AlphaIn, p.TaoIn, alpha)
}

// SwapTaoForAlpha moves [tao] into the pool and returns the alpha paid out.
func (p *Pool) SwapTaoForAlpha(tao uint64) (uint64, error) {
	if tao == 0 {
		return 0, ErrZeroAmount
	}
	if !p.Mechanism.Valid() {
		return 0, ErrUnknownMechanism
	}
	alpha := p.SimSwapTaoForAlpha(tao)
	if p.Mechanism == Dynamic {
		if alpha == 0 || p.AlphaIn-alpha < MinimumPoolLiquidity {
			return 0, ErrInsufficientLiquidity
		}
		p.AlphaIn -= alpha
	}
	p.TaoIn = saturatingAdd(p.TaoIn, tao)
	p.AlphaOut = saturatingAdd(p.AlphaOut, alpha)
	p.Volume = saturatingAdd(p.Volume, tao)
	return alpha, nil
}

// SwapAlphaForTao moves [alpha] back into the pool and returns the TAO paid
// out.
func (p *Pool) SwapAlphaForTao(alpha uint64) (uint64, error) {
	if alpha == 0 {
		return 0, ErrZeroAmount
	}
	if !p.Mechanism.Valid() {
		return 0, ErrUnknownMechanism
	}
	tao := p.SimSwapAlphaForTao(alpha)
	if p.Mechanism == Dynamic {
		if tao == 0 || p.TaoIn-tao < MinimumPoolLiquidity {
			return 0, ErrInsufficientLiquidity
		}
		p.AlphaIn = saturatingAdd(p.AlphaIn, alpha)
	} else if tao > p.TaoIn {
		return 0, ErrInsufficientLiquidity
	}
	p.TaoIn -= tao
	if alpha > p.AlphaOut {
		p.AlphaOut = 0
	} else {
		p.AlphaOut -= alpha
	}
	p.Volume = saturatingAdd(p.Volume, tao)
	return tao, nil
}

// UpdateMovingPrice folds the current spot price into the moving average.
// The weight of the spot price grows with the age of the subnet:
// w = age / (age + halving).
func (p *Pool) UpdateMovingPrice(age, halvingBlocks uint64) {
	if halvingBlocks == 0 {
		halvingBlocks = DefaultHalvingBlocks
	}
	spot := uint256.NewInt(p.ScaledPrice())
	moving := uint256.NewInt(p.MovingPrice)
	denom := new(uint256.Int).Add(uint256.NewInt(age), uint256.NewInt(halvingBlocks))

	// moving' = (spot*age + moving*halving) / (age + halving)
	next := new(uint256.Int).Mul(spot, uint256.NewInt(age))
	next.Add(next, new(uint256.Int).Mul(moving, uint256.NewInt(halvingBlocks)))
	next.Div(next, denom)
	p.MovingPrice = saturate(next)
}

// constantProductOut returns how much of the out reserve is released when
// [amount] is added to the in reserve. The remaining out reserve is rounded
// up so in*out never decreases.
func constantProductOut(reserveIn, reserveOut, amount uint64) uint64 {
	if reserveIn == 0 || reserveOut == 0 {
		return 0
	}
	k := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(reserveOut))
	newIn := new(uint256.Int).Add(uint256.NewInt(reserveIn), uint256.NewInt(amount))
	remaining, rem := new(uint256.Int).DivMod(k, newIn, new(uint256.Int))
	if !rem.IsZero() {
		remaining.AddUint64(remaining, 1)
	}
	return reserveOut - remaining.Uint64()
}

func saturate(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}
