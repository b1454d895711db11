// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/geth/common"
)

// ============================================================================
// SUBNET PRECOMPILE ADDRESS SCHEME
// ============================================================================
//
// Subnet precompiles live in one dense block of low-byte addresses:
//   Format: 0x00000000000000000000000000000000000008II
//
//   II = identity offset inside the block
//
//   0x0800  BalanceTransfer   always on
//   0x0801  Staking (v1)
//   0x0802  Metagraph
//   0x0803  Subnet
//   0x0804  Neuron
//   0x0805  Staking (v2)
//   0x0806  Alpha
//   0x0807  AdminUtils        always on
//
// Every address in [BlockStart, BlockEnd] maps to exactly one identity and no
// address outside the block maps to any. The layout is fixed at build time.

// Identity names a precompile independently of its address.
type Identity uint8

const (
	BalanceTransfer Identity = 0
	Staking         Identity = 1
	Subnet          Identity = 2
	Metagraph       Identity = 3
	Neuron          Identity = 4
	Alpha           Identity = 5
	StakingV2       Identity = 6
	AdminUtils      Identity = 7

	numIdentities = 8
)

// EncodingVersion prefixes the persisted form of an Identity.
const EncodingVersion byte = 0x01

const (
	BalanceTransferAddress = "0x0000000000000000000000000000000000000800"
	StakingAddress         = "0x0000000000000000000000000000000000000801"
	MetagraphAddress       = "0x0000000000000000000000000000000000000802"
	SubnetAddress          = "0x0000000000000000000000000000000000000803"
	NeuronAddress          = "0x0000000000000000000000000000000000000804"
	StakingV2Address       = "0x0000000000000000000000000000000000000805"
	AlphaAddress           = "0x0000000000000000000000000000000000000806"
	AdminUtilsAddress      = "0x0000000000000000000000000000000000000807"
)

var (
	ErrUnknownIdentity = errors.New("unknown precompile identity")
	ErrBadEncoding     = errors.New("malformed identity encoding")

	BlockStart = common.HexToAddress(BalanceTransferAddress)
	BlockEnd   = common.HexToAddress(AdminUtilsAddress)
)

// PrecompileInfo describes one entry of the address block.
type PrecompileInfo struct {
	Identity    Identity
	Address     common.Address
	Name        string
	Description string
	// AlwaysOn precompiles are enabled regardless of administrative state and
	// cannot be toggled.
	AlwaysOn bool
}

// AllPrecompiles is ordered by address.
var AllPrecompiles = []PrecompileInfo{
	{BalanceTransfer, common.HexToAddress(BalanceTransferAddress), "balanceTransfer", "Move EVM value into a native coldkey", true},
	{Staking, common.HexToAddress(StakingAddress), "staking", "Stake management, value-funded (v1)", false},
	{Metagraph, common.HexToAddress(MetagraphAddress), "metagraph", "Neuron registry queries", false},
	{Subnet, common.HexToAddress(SubnetAddress), "subnet", "Network registration and hyperparameters", false},
	{Neuron, common.HexToAddress(NeuronAddress), "neuron", "Burned neuron registration", false},
	{StakingV2, common.HexToAddress(StakingV2Address), "stakingV2", "Stake management, balance-funded (v2)", false},
	{Alpha, common.HexToAddress(AlphaAddress), "alpha", "Subnet pool pricing and swap simulation", false},
	{AdminUtils, common.HexToAddress(AdminUtilsAddress), "adminUtils", "Precompile enablement administration", true},
}

var byIdentity [numIdentities]*PrecompileInfo

func init() {
	if err := verifyBlock(AllPrecompiles); err != nil {
		panic(err)
	}
	for i := range AllPrecompiles {
		byIdentity[AllPrecompiles[i].Identity] = &AllPrecompiles[i]
	}
}

// verifyBlock checks that [infos] cover the block densely, in address order,
// with every identity exactly once.
func verifyBlock(infos []PrecompileInfo) error {
	if len(infos) != numIdentities {
		return fmt.Errorf("address block has %d entries, want %d", len(infos), numIdentities)
	}
	seen := make(map[Identity]bool, len(infos))
	for i, info := range infos {
		if info.Identity >= numIdentities {
			return fmt.Errorf("%w: %d", ErrUnknownIdentity, info.Identity)
		}
		if seen[info.Identity] {
			return fmt.Errorf("identity %s appears twice", info.Name)
		}
		seen[info.Identity] = true

		want := BlockStart
		want[common.AddressLength-1] += byte(i)
		if info.Address != want {
			return fmt.Errorf("%s at %s breaks the dense block", info.Name, info.Address)
		}
	}
	return nil
}

func (i Identity) Valid() bool {
	return i < numIdentities
}

// Info returns the block entry of [i].
func (i Identity) Info() (PrecompileInfo, bool) {
	if !i.Valid() {
		return PrecompileInfo{}, false
	}
	return *byIdentity[i], true
}

func (i Identity) String() string {
	if info, ok := i.Info(); ok {
		return info.Name
	}
	return fmt.Sprintf("identity(%d)", uint8(i))
}

// Address returns the address of [i], or the zero address for unknown
// identities.
func (i Identity) Address() common.Address {
	info, _ := i.Info()
	return info.Address
}

func (i Identity) AlwaysOn() bool {
	info, ok := i.Info()
	return ok && info.AlwaysOn
}

// MarshalBinary returns the versioned encoding [EncodingVersion, ordinal].
func (i Identity) MarshalBinary() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIdentity, uint8(i))
	}
	return []byte{EncodingVersion, byte(i)}, nil
}

func (i *Identity) UnmarshalBinary(b []byte) error {
	id, err := ParseIdentity(b)
	if err != nil {
		return err
	}
	*i = id
	return nil
}

// ParseIdentity decodes the versioned encoding.
func ParseIdentity(b []byte) (Identity, error) {
	if len(b) != 2 || b[0] != EncodingVersion {
		return 0, fmt.Errorf("%w: %x", ErrBadEncoding, b)
	}
	return FromOrdinal(b[1])
}

// FromOrdinal converts a raw ordinal, as carried in ABI arguments.
func FromOrdinal(ordinal uint8) (Identity, error) {
	id := Identity(ordinal)
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownIdentity, ordinal)
	}
	return id, nil
}

// ByName resolves an identity from its name, ignoring case.
func ByName(name string) (Identity, bool) {
	for _, info := range AllPrecompiles {
		if strings.EqualFold(info.Name, name) {
			return info.Identity, true
		}
	}
	return 0, false
}

// InBlock reports whether [addr] falls inside the precompile block.
func InBlock(addr common.Address) bool {
	return bytes.Compare(addr[:], BlockStart[:]) >= 0 && bytes.Compare(addr[:], BlockEnd[:]) <= 0
}

// Lookup resolves the identity at [addr].
func Lookup(addr common.Address) (Identity, bool) {
	if !InBlock(addr) {
		return 0, false
	}
	offset := int(addr[common.AddressLength-1]) - int(BlockStart[common.AddressLength-1])
	return AllPrecompiles[offset].Identity, true
}
