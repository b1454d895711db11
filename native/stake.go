// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/subnetprecompile/amm"
)

// AddStake debits [tao] rao from [coldkey], swaps it into alpha on [netuid]
// and credits the alpha to the (hotkey, coldkey, netuid) position.
func AddStake(v View, coldkey, hotkey AccountID, netuid NetUID, tao, block uint64) (uint64, error) {
	globals, err := v.Globals()
	if err != nil {
		return 0, err
	}
	if tao < globals.MinStake || tao == 0 {
		return 0, fmt.Errorf("%w: %d < %d", ErrAmountTooLow, tao, globals.MinStake)
	}
	if err := requireHotkey(v, hotkey); err != nil {
		return 0, err
	}
	if _, err := v.Subnet(netuid); err != nil {
		return 0, err
	}
	if err := Debit(v, coldkey, tao); err != nil {
		return 0, err
	}
	return stakeTao(v, coldkey, hotkey, netuid, tao, block)
}

// RemoveStake unstakes [alpha] from the (hotkey, coldkey, netuid) position,
// swaps it back to TAO and credits the coldkey's free balance.
func RemoveStake(v View, coldkey, hotkey AccountID, netuid NetUID, alpha, block uint64) (uint64, error) {
	tao, err := unstakeAlpha(v, coldkey, hotkey, netuid, alpha, block)
	if err != nil {
		return 0, err
	}
	if err := Credit(v, coldkey, tao); err != nil {
		return 0, err
	}
	return tao, nil
}

// MoveStake moves [alpha] owned by [coldkey] from (originHotkey, originNetuid)
// to (destinationHotkey, destinationNetuid). Crossing subnets swaps through
// TAO. Callers run it inside a Tx so a failing destination leg leaves the
// origin untouched.
func MoveStake(
	v View,
	coldkey AccountID,
	originHotkey, destinationHotkey AccountID,
	originNetuid, destinationNetuid NetUID,
	alpha, block uint64,
) error {
	if err := requireHotkey(v, destinationHotkey); err != nil {
		return err
	}
	return relocate(v, coldkey, coldkey, originHotkey, destinationHotkey, originNetuid, destinationNetuid, alpha, block)
}

// TransferStake hands [alpha] staked by [coldkey] on [hotkey] to
// [destinationColdkey], optionally moving it to another subnet.
func TransferStake(
	v View,
	coldkey, destinationColdkey AccountID,
	hotkey AccountID,
	originNetuid, destinationNetuid NetUID,
	alpha, block uint64,
) error {
	return relocate(v, coldkey, destinationColdkey, hotkey, hotkey, originNetuid, destinationNetuid, alpha, block)
}

func relocate(
	v View,
	fromColdkey, toColdkey AccountID,
	fromHotkey, toHotkey AccountID,
	fromNetuid, toNetuid NetUID,
	alpha, block uint64,
) error {
	if _, err := v.Subnet(toNetuid); err != nil {
		return err
	}
	if fromNetuid == toNetuid {
		if err := debitStake(v, fromHotkey, fromColdkey, fromNetuid, alpha); err != nil {
			return err
		}
		return creditStake(v, toHotkey, toColdkey, toNetuid, alpha)
	}

	tao, err := unstakeAlpha(v, fromColdkey, fromHotkey, fromNetuid, alpha, block)
	if err != nil {
		return err
	}
	if tao == 0 {
		return fmt.Errorf("%w: move yields no tao", ErrAmountTooLow)
	}
	_, err = stakeTao(v, toColdkey, toHotkey, toNetuid, tao, block)
	return err
}

// stakeTao swaps [tao] that has already left the coldkey's balance into
// alpha and credits the position.
func stakeTao(v View, coldkey, hotkey AccountID, netuid NetUID, tao, block uint64) (uint64, error) {
	subnet, err := v.Subnet(netuid)
	if err != nil {
		return 0, err
	}
	alpha, err := subnet.Pool.SwapTaoForAlpha(tao)
	if err != nil {
		return 0, swapError(netuid, err)
	}
	subnet.Pool.UpdateMovingPrice(block-min(block, subnet.RegisteredAt), subnet.Params.EMAPriceHalvingBlocks)
	if err := v.PutSubnet(netuid, subnet); err != nil {
		return 0, err
	}
	if err := creditStake(v, hotkey, coldkey, netuid, alpha); err != nil {
		return 0, err
	}
	return alpha, nil
}

// unstakeAlpha removes [alpha] from the position and swaps it into TAO that
// the caller must route somewhere.
func unstakeAlpha(v View, coldkey, hotkey AccountID, netuid NetUID, alpha, block uint64) (uint64, error) {
	if alpha == 0 {
		return 0, ErrZeroAmount
	}
	subnet, err := v.Subnet(netuid)
	if err != nil {
		return 0, err
	}
	if err := debitStake(v, hotkey, coldkey, netuid, alpha); err != nil {
		return 0, err
	}
	tao, err := subnet.Pool.SwapAlphaForTao(alpha)
	if err != nil {
		return 0, swapError(netuid, err)
	}
	subnet.Pool.UpdateMovingPrice(block-min(block, subnet.RegisteredAt), subnet.Params.EMAPriceHalvingBlocks)
	if err := v.PutSubnet(netuid, subnet); err != nil {
		return 0, err
	}
	return tao, nil
}

func creditStake(v View, hotkey, coldkey AccountID, netuid NetUID, alpha uint64) error {
	current, err := v.Stake(hotkey, coldkey, netuid)
	if err != nil {
		return err
	}
	if current+alpha < current {
		return fmt.Errorf("%w: stake overflow", ErrInvalidValue)
	}
	return v.SetStake(hotkey, coldkey, netuid, current+alpha)
}

func debitStake(v View, hotkey, coldkey AccountID, netuid NetUID, alpha uint64) error {
	if alpha == 0 {
		return ErrZeroAmount
	}
	current, err := v.Stake(hotkey, coldkey, netuid)
	if err != nil {
		return err
	}
	if current < alpha {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientStake, current, alpha)
	}
	return v.SetStake(hotkey, coldkey, netuid, current-alpha)
}

func requireHotkey(r Reader, hotkey AccountID) error {
	_, ok, err := r.HotkeyOwner(hotkey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrHotkeyNotRegistered, hotkey)
	}
	return nil
}

func swapError(netuid NetUID, err error) error {
	switch {
	case errors.Is(err, amm.ErrInsufficientLiquidity):
		return fmt.Errorf("%w: netuid %d", ErrInsufficientLiquidity, netuid)
	case errors.Is(err, amm.ErrZeroAmount):
		return fmt.Errorf("%w: netuid %d", ErrZeroAmount, netuid)
	default:
		return fmt.Errorf("swap on netuid %d: %w", netuid, err)
	}
}

// ---------------------------------------------------------------------------
// Aggregates

// TotalHotkeyAlpha sums the alpha staked to [hotkey] on [netuid].
func TotalHotkeyAlpha(r Reader, hotkey AccountID, netuid NetUID) (uint64, error) {
	positions, err := r.HotkeyPositions(hotkey)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, p := range positions {
		if p.NetUID == netuid {
			total = saturatingAdd(total, p.Alpha)
		}
	}
	return total, nil
}

// AlphaStakers lists the coldkeys with stake on (hotkey, netuid).
func AlphaStakers(r Reader, hotkey AccountID, netuid NetUID) ([]AccountID, error) {
	positions, err := r.HotkeyPositions(hotkey)
	if err != nil {
		return nil, err
	}
	var stakers []AccountID
	for _, p := range positions {
		if p.NetUID == netuid {
			stakers = append(stakers, p.Coldkey)
		}
	}
	return stakers, nil
}

// TotalHotkeyStake values every position on [hotkey] in rao at the current
// pool prices.
func TotalHotkeyStake(r Reader, hotkey AccountID) (*uint256.Int, error) {
	positions, err := r.HotkeyPositions(hotkey)
	if err != nil {
		return nil, err
	}
	return valuePositions(r, positions)
}

// TotalColdkeyStake values every position owned by [coldkey] in rao at the
// current pool prices.
func TotalColdkeyStake(r Reader, coldkey AccountID) (*uint256.Int, error) {
	positions, err := r.ColdkeyPositions(coldkey)
	if err != nil {
		return nil, err
	}
	return valuePositions(r, positions)
}

func valuePositions(r Reader, positions []Position) (*uint256.Int, error) {
	prices := make(map[NetUID]uint64)
	total := new(uint256.Int)
	for _, p := range positions {
		price, ok := prices[p.NetUID]
		if !ok {
			subnet, err := r.Subnet(p.NetUID)
			if errors.Is(err, ErrUnknownSubnet) {
				continue
			}
			if err != nil {
				return nil, err
			}
			price = subnet.Pool.ScaledPrice()
			prices[p.NetUID] = price
		}
		value := new(uint256.Int).Mul(uint256.NewInt(p.Alpha), uint256.NewInt(price))
		value.Div(value, uint256.NewInt(amm.PriceScale))
		total.Add(total, value)
	}
	return total, nil
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}
