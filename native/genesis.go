// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/luxfi/subnetprecompile/amm"
)

// Genesis describes the initial native state.
type Genesis struct {
	Globals  *Globals         `json:"globals,omitempty"`
	Balances []BalanceGenesis `json:"balances,omitempty"`
	Hotkeys  []HotkeyGenesis  `json:"hotkeys,omitempty"`
	Subnets  []SubnetGenesis  `json:"subnets,omitempty"`
	Stakes   []StakeGenesis   `json:"stakes,omitempty"`
}

type BalanceGenesis struct {
	Account AccountID `json:"account"`
	Amount  uint64    `json:"amount"`
}

type HotkeyGenesis struct {
	Hotkey  AccountID `json:"hotkey"`
	Coldkey AccountID `json:"coldkey"`
}

type SubnetGenesis struct {
	NetUID       NetUID        `json:"netuid"`
	Owner        AccountID     `json:"owner"`
	OwnerHotkey  AccountID     `json:"ownerHotkey"`
	Mechanism    amm.Mechanism `json:"mechanism"`
	TaoIn        uint64        `json:"taoIn"`
	AlphaIn      uint64        `json:"alphaIn"`
	AlphaOut     uint64        `json:"alphaOut"`
	RegisteredAt uint64        `json:"registeredAt"`
	Params       *Hyperparams  `json:"params,omitempty"`
	// Neurons are hotkeys registered in uid order.
	Neurons []AccountID `json:"neurons,omitempty"`
}

type StakeGenesis struct {
	Hotkey  AccountID `json:"hotkey"`
	Coldkey AccountID `json:"coldkey"`
	NetUID  NetUID    `json:"netuid"`
	Alpha   uint64    `json:"alpha"`
}

// Verify reports every inconsistency in the genesis at once.
func (g *Genesis) Verify() error {
	var errs *multierror.Error

	subnets := map[NetUID]bool{RootNetUID: true}
	for i, s := range g.Subnets {
		if s.NetUID == RootNetUID {
			errs = multierror.Append(errs, fmt.Errorf("subnets[%d]: root network is implicit", i))
			continue
		}
		if subnets[s.NetUID] {
			errs = multierror.Append(errs, fmt.Errorf("subnets[%d]: %w: netuid %d", i, ErrSubnetExists, s.NetUID))
		}
		subnets[s.NetUID] = true
		if !s.Mechanism.Valid() {
			errs = multierror.Append(errs, fmt.Errorf("subnets[%d]: %w: %d", i, amm.ErrUnknownMechanism, s.Mechanism))
		}
		if s.Params != nil && int(s.Params.MaxAllowedUids) < len(s.Neurons) {
			errs = multierror.Append(errs, fmt.Errorf("subnets[%d]: %w: %d neurons", i, ErrSubnetFull, len(s.Neurons)))
		}
	}

	owners := make(map[AccountID]AccountID)
	for i, h := range g.Hotkeys {
		if prev, ok := owners[h.Hotkey]; ok && prev != h.Coldkey {
			errs = multierror.Append(errs, fmt.Errorf("hotkeys[%d]: %w: %s", i, ErrHotkeyNotOwned, h.Hotkey))
		}
		owners[h.Hotkey] = h.Coldkey
	}

	for i, st := range g.Stakes {
		if !subnets[st.NetUID] {
			errs = multierror.Append(errs, fmt.Errorf("stakes[%d]: %w: netuid %d", i, ErrUnknownSubnet, st.NetUID))
		}
		if _, ok := owners[st.Hotkey]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("stakes[%d]: %w: %s", i, ErrHotkeyNotRegistered, st.Hotkey))
		}
	}
	return errs.ErrorOrNil()
}

// ApplyGenesis writes [g] into [v]. The root network is always created.
func ApplyGenesis(v View, g *Genesis) error {
	if err := g.Verify(); err != nil {
		return err
	}

	globals := DefaultGlobals()
	if g.Globals != nil {
		globals = *g.Globals
	}
	if err := v.SetGlobals(globals); err != nil {
		return err
	}

	root := &Subnet{
		Pool:   amm.Pool{Mechanism: amm.Stable},
		Params: DefaultHyperparams(),
	}
	root.Params.NetworkRegistrationAllowed = false
	if err := v.PutSubnet(RootNetUID, root); err != nil {
		return err
	}

	for _, b := range g.Balances {
		if err := Credit(v, b.Account, b.Amount); err != nil {
			return err
		}
	}
	for _, h := range g.Hotkeys {
		if err := v.SetHotkeyOwner(h.Hotkey, h.Coldkey); err != nil {
			return err
		}
	}
	for _, s := range g.Subnets {
		params := DefaultHyperparams()
		if s.Params != nil {
			params = *s.Params
		}
		subnet := &Subnet{
			Owner:        s.Owner,
			OwnerHotkey:  s.OwnerHotkey,
			RegisteredAt: s.RegisteredAt,
			Pool: amm.Pool{
				Mechanism: s.Mechanism,
				TaoIn:     s.TaoIn,
				AlphaIn:   s.AlphaIn,
				AlphaOut:  s.AlphaOut,
			},
			Params: params,
		}
		subnet.Pool.MovingPrice = subnet.Pool.ScaledPrice()
		for _, hotkey := range s.Neurons {
			coldkey, _, err := v.HotkeyOwner(hotkey)
			if err != nil {
				return err
			}
			if _, err := appendNeuron(v, s.NetUID, subnet, coldkey, hotkey, s.RegisteredAt); err != nil {
				return err
			}
		}
		if err := v.PutSubnet(s.NetUID, subnet); err != nil {
			return err
		}
	}
	for _, st := range g.Stakes {
		if err := creditStake(v, st.Hotkey, st.Coldkey, st.NetUID, st.Alpha); err != nil {
			return err
		}
	}
	return nil
}
