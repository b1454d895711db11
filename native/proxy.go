// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import (
	"fmt"
	"slices"
)

// AddProxy lets [delegate] act for [coldkey].
func AddProxy(v View, coldkey, delegate AccountID) error {
	if coldkey == delegate {
		return ErrInvalidProxy
	}
	globals, err := v.Globals()
	if err != nil {
		return err
	}
	proxies, err := v.Proxies(coldkey)
	if err != nil {
		return err
	}
	if slices.Contains(proxies, delegate) {
		return fmt.Errorf("%w: %s", ErrProxyExists, delegate)
	}
	if globals.MaxProxies > 0 && len(proxies) >= int(globals.MaxProxies) {
		return fmt.Errorf("%w: limit %d", ErrTooManyProxies, globals.MaxProxies)
	}
	return v.SetProxies(coldkey, append(proxies, delegate))
}

// RemoveProxy revokes [delegate].
func RemoveProxy(v View, coldkey, delegate AccountID) error {
	proxies, err := v.Proxies(coldkey)
	if err != nil {
		return err
	}
	i := slices.Index(proxies, delegate)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProxy, delegate)
	}
	return v.SetProxies(coldkey, slices.Delete(proxies, i, i+1))
}
