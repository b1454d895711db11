// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package native models the chain state the precompiles operate on: balances,
// subnets with their liquidity pools and hyperparameters, stake positions,
// hotkey ownership, proxies and neurons. Storage is reached through the View
// interface so the same operations run over any backend.
package native

import (
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/zeebo/blake3"

	"github.com/luxfi/subnetprecompile/amm"
)

const (
	// RaoPerTao is the number of native base units per TAO.
	RaoPerTao uint64 = 1_000_000_000

	// WeiPerRao converts between 18-decimal EVM balances and 9-decimal native balances.
	WeiPerRao uint64 = 1_000_000_000

	// RootNetUID is the stable root network.
	RootNetUID NetUID = 0
)

var (
	ErrUnknownSubnet         = errors.New("subnet does not exist")
	ErrSubnetExists          = errors.New("subnet already exists")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientStake     = errors.New("insufficient stake")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrAmountTooLow          = errors.New("amount below minimum stake")
	ErrZeroAmount            = errors.New("amount is zero")
	ErrHotkeyNotRegistered   = errors.New("hotkey is not registered")
	ErrHotkeyNotOwned        = errors.New("hotkey owned by another coldkey")
	ErrNotSubnetOwner        = errors.New("caller is not the subnet owner")
	ErrRegistrationDisabled  = errors.New("registration disabled on subnet")
	ErrSubnetFull            = errors.New("subnet has no free uids")
	ErrAlreadyRegistered     = errors.New("hotkey already registered on subnet")
	ErrSubnetLimitReached    = errors.New("subnet limit reached")
	ErrRateLimited           = errors.New("network registration rate limit exceeded")
	ErrUnknownNeuron         = errors.New("neuron does not exist")
	ErrProxyExists           = errors.New("proxy already added")
	ErrUnknownProxy          = errors.New("proxy not found")
	ErrTooManyProxies        = errors.New("too many proxies")
	ErrInvalidProxy          = errors.New("account cannot proxy for itself")
	ErrInvalidValue          = errors.New("invalid parameter value")
	ErrReadOnly              = errors.New("write to read-only view")
)

// AccountID is a 32-byte native account (coldkey or hotkey).
type AccountID [32]byte

func (a AccountID) String() string {
	return hexutil.Encode(a[:])
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts a 32-byte hex account or a 20-byte EVM address,
// which is mapped with ColdkeyFromEVM.
func (a *AccountID) UnmarshalText(text []byte) error {
	raw, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid account %q: %w", text, err)
	}
	switch len(raw) {
	case len(a):
		copy(a[:], raw)
	case common.AddressLength:
		*a = ColdkeyFromEVM(common.BytesToAddress(raw))
	default:
		return fmt.Errorf("invalid account %q: %d bytes", text, len(raw))
	}
	return nil
}

// IsZero reports whether the account is all zeroes.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// ColdkeyFromEVM maps an EVM address onto the native account that holds its
// funds and stake.
func ColdkeyFromEVM(addr common.Address) AccountID {
	h := blake3.New()
	_, _ = h.Write([]byte("evm:"))
	_, _ = h.Write(addr.Bytes())
	var out AccountID
	copy(out[:], h.Sum(nil))
	return out
}

// NetUID identifies a subnet.
type NetUID uint16

// Hyperparams are the owner-adjustable parameters of a subnet.
type Hyperparams struct {
	ServingRateLimit              uint64 `json:"servingRateLimit"`
	MinDifficulty                 uint64 `json:"minDifficulty"`
	MaxDifficulty                 uint64 `json:"maxDifficulty"`
	WeightsVersionKey             uint64 `json:"weightsVersionKey"`
	WeightsSetRateLimit           uint64 `json:"weightsSetRateLimit"`
	AdjustmentAlpha               uint64 `json:"adjustmentAlpha"`
	MaxWeightLimit                uint16 `json:"maxWeightLimit"`
	ImmunityPeriod                uint16 `json:"immunityPeriod"`
	MinAllowedWeights             uint16 `json:"minAllowedWeights"`
	Kappa                         uint16 `json:"kappa"`
	Rho                           uint16 `json:"rho"`
	ActivityCutoff                uint16 `json:"activityCutoff"`
	NetworkRegistrationAllowed    bool   `json:"networkRegistrationAllowed"`
	NetworkPowRegistrationAllowed bool   `json:"networkPowRegistrationAllowed"`
	MinBurn                       uint64 `json:"minBurn"`
	MaxBurn                       uint64 `json:"maxBurn"`
	Difficulty                    uint64 `json:"difficulty"`
	BondsMovingAverage            uint64 `json:"bondsMovingAverage"`
	CommitRevealWeightsEnabled    bool   `json:"commitRevealWeightsEnabled"`
	LiquidAlphaEnabled            bool   `json:"liquidAlphaEnabled"`
	CommitRevealWeightsInterval   uint64 `json:"commitRevealWeightsInterval"`
	MaxAllowedUids                uint16 `json:"maxAllowedUids"`
	AlphaLow                      uint16 `json:"alphaLow"`
	AlphaHigh                     uint16 `json:"alphaHigh"`
	EMAPriceHalvingBlocks         uint64 `json:"emaPriceHalvingBlocks"`
}

// DefaultHyperparams are applied to newly registered subnets.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		ServingRateLimit:            50,
		MinDifficulty:               10_000_000,
		MaxDifficulty:               1 << 62,
		WeightsSetRateLimit:         100,
		AdjustmentAlpha:             0,
		MaxWeightLimit:              65535,
		ImmunityPeriod:              4096,
		MinAllowedWeights:           1,
		Kappa:                       32767,
		Rho:                         10,
		ActivityCutoff:              5000,
		NetworkRegistrationAllowed:  true,
		MinBurn:                     500_000,
		MaxBurn:                     100 * RaoPerTao,
		Difficulty:                  10_000_000,
		BondsMovingAverage:          900_000,
		CommitRevealWeightsInterval: 1000,
		MaxAllowedUids:              256,
		AlphaLow:                    45875,
		AlphaHigh:                   58982,
		EMAPriceHalvingBlocks:       amm.DefaultHalvingBlocks,
	}
}

// Subnet is the stored record of a registered network.
type Subnet struct {
	Owner        AccountID
	OwnerHotkey  AccountID
	RegisteredAt uint64
	NeuronCount  uint16
	Pool         amm.Pool
	Params       Hyperparams
}

// Neuron is a registered uid on a subnet.
type Neuron struct {
	Hotkey       AccountID
	Coldkey      AccountID
	RegisteredAt uint64
}

// Position is a single stake entry.
type Position struct {
	Hotkey  AccountID
	Coldkey AccountID
	NetUID  NetUID
	Alpha   uint64
}

// Globals are chain-wide parameters.
type Globals struct {
	// TaoWeight is the TAO weight scaled by amm.PriceScale.
	TaoWeight            uint64 `json:"taoWeight"`
	MinStake             uint64 `json:"minStake"`
	NetworkLockCost      uint64 `json:"networkLockCost"`
	NetworkMinLock       uint64 `json:"networkMinLock"`
	NetworkRateLimit     uint64 `json:"networkRateLimit"`
	NetworkLastLockBlock uint64 `json:"networkLastLockBlock"`
	MaxSubnets           uint16 `json:"maxSubnets"`
	MaxProxies           uint16 `json:"maxProxies"`
}

// DefaultGlobals are used when genesis leaves a field unset.
func DefaultGlobals() Globals {
	return Globals{
		TaoWeight:        amm.PriceScale * 18 / 100,
		MinStake:         500_000,
		NetworkLockCost:  100 * RaoPerTao,
		NetworkMinLock:   100 * RaoPerTao,
		NetworkRateLimit: 0,
		MaxSubnets:       128,
		MaxProxies:       32,
	}
}
