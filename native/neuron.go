// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import "fmt"

// BurnedRegister registers [hotkey] on [netuid] by burning the subnet's
// minimum burn from [coldkey]. It returns the assigned uid.
func BurnedRegister(v View, coldkey AccountID, netuid NetUID, hotkey AccountID, block uint64) (uint16, error) {
	if netuid == RootNetUID {
		return 0, fmt.Errorf("%w: root network", ErrRegistrationDisabled)
	}
	subnet, err := v.Subnet(netuid)
	if err != nil {
		return 0, err
	}
	if !subnet.Params.NetworkRegistrationAllowed {
		return 0, fmt.Errorf("%w: netuid %d", ErrRegistrationDisabled, netuid)
	}
	if subnet.NeuronCount >= subnet.Params.MaxAllowedUids {
		return 0, fmt.Errorf("%w: netuid %d has %d uids", ErrSubnetFull, netuid, subnet.NeuronCount)
	}
	if _, registered, err := FindNeuron(v, netuid, subnet.NeuronCount, hotkey); err != nil {
		return 0, err
	} else if registered {
		return 0, fmt.Errorf("%w: %s on netuid %d", ErrAlreadyRegistered, hotkey, netuid)
	}

	if err := Debit(v, coldkey, subnet.Params.MinBurn); err != nil {
		return 0, err
	}
	if err := claimHotkey(v, coldkey, hotkey); err != nil {
		return 0, err
	}
	uid, err := appendNeuron(v, netuid, subnet, coldkey, hotkey, block)
	if err != nil {
		return 0, err
	}
	return uid, v.PutSubnet(netuid, subnet)
}

// FindNeuron returns the uid of [hotkey] among the first [count] uids.
func FindNeuron(r Reader, netuid NetUID, count uint16, hotkey AccountID) (uint16, bool, error) {
	for uid := uint16(0); uid < count; uid++ {
		n, err := r.Neuron(netuid, uid)
		if err != nil {
			return 0, false, err
		}
		if n.Hotkey == hotkey {
			return uid, true, nil
		}
	}
	return 0, false, nil
}

// appendNeuron stores a neuron at the next uid and bumps the count on
// [subnet]; the caller persists the subnet record.
func appendNeuron(v View, netuid NetUID, subnet *Subnet, coldkey, hotkey AccountID, block uint64) (uint16, error) {
	uid := subnet.NeuronCount
	if err := v.PutNeuron(netuid, uid, &Neuron{Hotkey: hotkey, Coldkey: coldkey, RegisteredAt: block}); err != nil {
		return 0, err
	}
	subnet.NeuronCount++
	return uid, nil
}
