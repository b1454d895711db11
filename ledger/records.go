// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/rlp"

	"github.com/luxfi/subnetprecompile/native"
)

var _ native.View = (*view)(nil)

// Key layout. Stake is indexed twice so both hotkey and coldkey totals are a
// single prefix scan.
var (
	globalsKey    = []byte("globals")
	balancePrefix = []byte("bal/") // coldkey
	subnetPrefix  = []byte("net/") // netuid
	stakePrefix   = []byte("stk/") // hotkey | netuid | coldkey
	coldkeyPrefix = []byte("cst/") // coldkey | hotkey | netuid
	ownerPrefix   = []byte("own/") // hotkey
	proxyPrefix   = []byte("prx/") // coldkey
	neuronPrefix  = []byte("nrn/") // netuid | uid
)

const accountLen = len(native.AccountID{})

func key(prefix []byte, parts ...[]byte) []byte {
	k := append([]byte{}, prefix...)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func netuidBytes(n native.NetUID) []byte {
	return binary.BigEndian.AppendUint16(nil, uint16(n))
}

func (v *view) getRLP(k []byte, out any) (bool, error) {
	raw, ok, err := v.get(k)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("decoding record %x: %w", k, err)
	}
	return true, nil
}

func (v *view) putRLP(k []byte, value any) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("encoding record %x: %w", k, err)
	}
	return v.put(k, raw)
}

func (v *view) getUint64(k []byte) (uint64, error) {
	raw, ok, err := v.get(k)
	if err != nil || !ok {
		return 0, err
	}
	return database.ParseUInt64(raw)
}

func (v *view) putUint64(k []byte, value uint64) error {
	if value == 0 {
		return v.delete(k)
	}
	return v.put(k, database.PackUInt64(value))
}

// ---------------------------------------------------------------------------
// Reader

func (v *view) Globals() (native.Globals, error) {
	var g native.Globals
	ok, err := v.getRLP(globalsKey, &g)
	if err != nil {
		return native.Globals{}, err
	}
	if !ok {
		return native.DefaultGlobals(), nil
	}
	return g, nil
}

func (v *view) Balance(coldkey native.AccountID) (uint64, error) {
	return v.getUint64(key(balancePrefix, coldkey[:]))
}

func (v *view) Subnet(netuid native.NetUID) (*native.Subnet, error) {
	s := new(native.Subnet)
	ok, err := v.getRLP(key(subnetPrefix, netuidBytes(netuid)), s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: netuid %d", native.ErrUnknownSubnet, netuid)
	}
	return s, nil
}

func (v *view) Subnets() ([]native.NetUID, error) {
	records, err := v.scan(subnetPrefix)
	if err != nil {
		return nil, err
	}
	netuids := make([]native.NetUID, 0, len(records))
	for _, r := range records {
		suffix := r.key[len(subnetPrefix):]
		netuids = append(netuids, native.NetUID(binary.BigEndian.Uint16(suffix)))
	}
	return netuids, nil
}

func (v *view) Stake(hotkey, coldkey native.AccountID, netuid native.NetUID) (uint64, error) {
	return v.getUint64(key(stakePrefix, hotkey[:], netuidBytes(netuid), coldkey[:]))
}

func (v *view) HotkeyPositions(hotkey native.AccountID) ([]native.Position, error) {
	records, err := v.scan(key(stakePrefix, hotkey[:]))
	if err != nil {
		return nil, err
	}
	positions := make([]native.Position, 0, len(records))
	for _, r := range records {
		suffix := r.key[len(stakePrefix)+accountLen:]
		alpha, err := database.ParseUInt64(r.value)
		if err != nil {
			return nil, err
		}
		p := native.Position{
			Hotkey: hotkey,
			NetUID: native.NetUID(binary.BigEndian.Uint16(suffix[:2])),
			Alpha:  alpha,
		}
		copy(p.Coldkey[:], suffix[2:])
		positions = append(positions, p)
	}
	return positions, nil
}

func (v *view) ColdkeyPositions(coldkey native.AccountID) ([]native.Position, error) {
	records, err := v.scan(key(coldkeyPrefix, coldkey[:]))
	if err != nil {
		return nil, err
	}
	positions := make([]native.Position, 0, len(records))
	for _, r := range records {
		suffix := r.key[len(coldkeyPrefix)+accountLen:]
		alpha, err := database.ParseUInt64(r.value)
		if err != nil {
			return nil, err
		}
		p := native.Position{
			Coldkey: coldkey,
			NetUID:  native.NetUID(binary.BigEndian.Uint16(suffix[accountLen:])),
			Alpha:   alpha,
		}
		copy(p.Hotkey[:], suffix[:accountLen])
		positions = append(positions, p)
	}
	return positions, nil
}

func (v *view) HotkeyOwner(hotkey native.AccountID) (native.AccountID, bool, error) {
	raw, ok, err := v.get(key(ownerPrefix, hotkey[:]))
	if err != nil || !ok {
		return native.AccountID{}, false, err
	}
	var owner native.AccountID
	copy(owner[:], raw)
	return owner, true, nil
}

func (v *view) Proxies(coldkey native.AccountID) ([]native.AccountID, error) {
	var proxies []native.AccountID
	if _, err := v.getRLP(key(proxyPrefix, coldkey[:]), &proxies); err != nil {
		return nil, err
	}
	return proxies, nil
}

func (v *view) Neuron(netuid native.NetUID, uid uint16) (*native.Neuron, error) {
	n := new(native.Neuron)
	ok, err := v.getRLP(key(neuronPrefix, netuidBytes(netuid), binary.BigEndian.AppendUint16(nil, uid)), n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: uid %d on netuid %d", native.ErrUnknownNeuron, uid, netuid)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Writer

func (v *view) SetGlobals(g native.Globals) error {
	return v.putRLP(globalsKey, &g)
}

func (v *view) SetBalance(coldkey native.AccountID, amount uint64) error {
	return v.putUint64(key(balancePrefix, coldkey[:]), amount)
}

func (v *view) PutSubnet(netuid native.NetUID, subnet *native.Subnet) error {
	return v.putRLP(key(subnetPrefix, netuidBytes(netuid)), subnet)
}

func (v *view) SetStake(hotkey, coldkey native.AccountID, netuid native.NetUID, alpha uint64) error {
	n := netuidBytes(netuid)
	if err := v.putUint64(key(stakePrefix, hotkey[:], n, coldkey[:]), alpha); err != nil {
		return err
	}
	return v.putUint64(key(coldkeyPrefix, coldkey[:], hotkey[:], n), alpha)
}

func (v *view) SetHotkeyOwner(hotkey, coldkey native.AccountID) error {
	return v.put(key(ownerPrefix, hotkey[:]), coldkey[:])
}

func (v *view) SetProxies(coldkey native.AccountID, proxies []native.AccountID) error {
	k := key(proxyPrefix, coldkey[:])
	if len(proxies) == 0 {
		return v.delete(k)
	}
	return v.putRLP(k, proxies)
}

func (v *view) PutNeuron(netuid native.NetUID, uid uint16, neuron *native.Neuron) error {
	return v.putRLP(key(neuronPrefix, netuidBytes(netuid), binary.BigEndian.AppendUint16(nil, uid)), neuron)
}
