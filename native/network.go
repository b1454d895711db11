// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import (
	"fmt"

	"github.com/luxfi/subnetprecompile/amm"
)

// NextNetUID returns the lowest unused netuid above the root network.
func NextNetUID(r Reader) (NetUID, error) {
	netuids, err := r.Subnets()
	if err != nil {
		return 0, err
	}
	used := make(map[NetUID]struct{}, len(netuids))
	for _, n := range netuids {
		used[n] = struct{}{}
	}
	for next := RootNetUID + 1; next != 0; next++ {
		if _, ok := used[next]; !ok {
			return next, nil
		}
	}
	return 0, ErrSubnetLimitReached
}

// RegisterNetwork locks the network lock cost from [coldkey], creates a new
// dynamic subnet owned by [coldkey] and seeds its pool with the minimum
// lock. [hotkey] becomes the owner hotkey and the subnet's first neuron.
// Writes happen as checks pass, so callers run it inside a Tx.
func RegisterNetwork(v View, coldkey, hotkey AccountID, block uint64) (NetUID, error) {
	globals, err := v.Globals()
	if err != nil {
		return 0, err
	}
	if globals.NetworkRateLimit > 0 && block-min(block, globals.NetworkLastLockBlock) < globals.NetworkRateLimit {
		return 0, fmt.Errorf("%w: last lock at block %d", ErrRateLimited, globals.NetworkLastLockBlock)
	}

	netuids, err := v.Subnets()
	if err != nil {
		return 0, err
	}
	// the root network does not count against the limit
	if globals.MaxSubnets > 0 && len(netuids) > int(globals.MaxSubnets) {
		return 0, fmt.Errorf("%w: %d subnets", ErrSubnetLimitReached, len(netuids)-1)
	}
	netuid, err := NextNetUID(v)
	if err != nil {
		return 0, err
	}

	lock := globals.NetworkLockCost
	if err := Debit(v, coldkey, lock); err != nil {
		return 0, err
	}
	if err := claimHotkey(v, coldkey, hotkey); err != nil {
		return 0, err
	}
	poolTao := min(globals.NetworkMinLock, lock)

	subnet := &Subnet{
		Owner:        coldkey,
		OwnerHotkey:  hotkey,
		RegisteredAt: block,
		Pool: amm.Pool{
			Mechanism: amm.Dynamic,
			TaoIn:     poolTao,
			AlphaIn:   poolTao,
		},
		Params: DefaultHyperparams(),
	}
	if _, err := appendNeuron(v, netuid, subnet, coldkey, hotkey, block); err != nil {
		return 0, err
	}
	if err := v.PutSubnet(netuid, subnet); err != nil {
		return 0, err
	}

	globals.NetworkLastLockBlock = block
	if err := v.SetGlobals(globals); err != nil {
		return 0, err
	}
	return netuid, nil
}

// UpdateHyperparams applies [update] to the parameters of [netuid] when
// [caller] owns the subnet.
func UpdateHyperparams(v View, caller AccountID, netuid NetUID, update func(*Hyperparams) error) error {
	subnet, err := v.Subnet(netuid)
	if err != nil {
		return err
	}
	if subnet.Owner != caller {
		return fmt.Errorf("%w: netuid %d", ErrNotSubnetOwner, netuid)
	}
	if err := update(&subnet.Params); err != nil {
		return err
	}
	return v.PutSubnet(netuid, subnet)
}

// claimHotkey associates [hotkey] with [coldkey], failing when another
// coldkey already owns it.
func claimHotkey(v View, coldkey, hotkey AccountID) error {
	owner, ok, err := v.HotkeyOwner(hotkey)
	if err != nil {
		return err
	}
	if ok {
		if owner != coldkey {
			return fmt.Errorf("%w: %s", ErrHotkeyNotOwned, hotkey)
		}
		return nil
	}
	return v.SetHotkeyOwner(hotkey, coldkey)
}
