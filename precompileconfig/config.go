// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompileconfig defines the stateless configuration of subnet
// precompiles and the chain genesis that carries it.
package precompileconfig

// Config is the parsed genesis or upgrade configuration of one precompile.
type Config interface {
	// Key returns the unique key for the stateful precompile.
	Key() string
	// Timestamp returns the timestamp at which this configuration takes effect.
	// 1) 0 applies it at genesis.
	// 2) n applies it in the first block with timestamp >= [n].
	// 3) nil never applies it.
	Timestamp() *uint64
	// IsDisabled returns true if this upgrade disables the precompile.
	IsDisabled() bool
	// Equal returns true if the provided argument configures the same precompile with the same parameters.
	Equal(Config) bool
	// Verify is called on startup and an error is treated as fatal.
	Verify() error
}

// Upgrade contains the timestamp for the upgrade along with a boolean
// [Disable]. If [Disable] is set, the upgrade deactivates the precompile.
type Upgrade struct {
	BlockTimestamp *uint64 `json:"blockTimestamp"`
	Disable        bool    `json:"disable,omitempty"`
}

func (u *Upgrade) Timestamp() *uint64 {
	return u.BlockTimestamp
}

func (u *Upgrade) Equal(other *Upgrade) bool {
	if other == nil {
		return false
	}
	if u.Disable != other.Disable {
		return false
	}
	if u.BlockTimestamp == nil || other.BlockTimestamp == nil {
		return u.BlockTimestamp == other.BlockTimestamp
	}
	return *u.BlockTimestamp == *other.BlockTimestamp
}

// ActiveAt reports whether [cfg] has taken effect by [timestamp].
func ActiveAt(cfg Config, timestamp uint64) bool {
	ts := cfg.Timestamp()
	return ts != nil && *ts <= timestamp
}

var _ Config = (*Toggle)(nil)

// Toggle configures a precompile whose only genesis state is its enablement
// flag.
type Toggle struct {
	Upgrade
	Enabled bool `json:"enabled"`

	key string
}

func NewToggle(key string) *Toggle {
	return &Toggle{key: key}
}

func (t *Toggle) Key() string {
	return t.key
}

// IsDisabled reports whether the precompile ends up disabled once this
// configuration applies.
func (t *Toggle) IsDisabled() bool {
	return t.Disable || !t.Enabled
}

func (t *Toggle) Equal(cfg Config) bool {
	other, ok := cfg.(*Toggle)
	if !ok {
		return false
	}
	return t.key == other.key && t.Enabled == other.Enabled && t.Upgrade.Equal(&other.Upgrade)
}

func (*Toggle) Verify() error {
	return nil
}
