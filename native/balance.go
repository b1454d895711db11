// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import "fmt"

// Credit adds [amount] rao to the free balance of [coldkey].
func Credit(v View, coldkey AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	balance, err := v.Balance(coldkey)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("%w: balance overflow", ErrInvalidValue)
	}
	return v.SetBalance(coldkey, balance+amount)
}

// Debit removes [amount] rao from the free balance of [coldkey].
func Debit(v View, coldkey AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	balance, err := v.Balance(coldkey)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, balance, amount)
	}
	return v.SetBalance(coldkey, balance-amount)
}
