// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
	"github.com/luxfi/subnetprecompile/router"
	"github.com/luxfi/subnetprecompile/simulator"
)

const (
	GenesisKey  = "genesis"
	FromKey     = "from"
	ToKey       = "to"
	DataKey     = "data"
	ValueKey    = "value"
	ReadOnlyKey = "readonly"
	MetricsKey  = "metrics"
)

var errNoCalls = errors.New("at least one --data payload is required")

type callConfig struct {
	Genesis  *precompileconfig.Genesis
	From     common.Address
	To       common.Address
	Data     [][]byte
	Value    *uint256.Int
	ReadOnly bool
	Metrics  bool
}

func addCallFlags(flags *pflag.FlagSet) {
	flags.String(GenesisKey, "", "Genesis file to build the chain from; empty starts from an empty chain")
	flags.String(FromKey, common.Address{}.Hex(), "Caller address")
	flags.String(ToKey, "", "Precompile address or name")
	flags.StringArray(DataKey, nil, "Hex calldata; repeat to run several calls in order against the same state")
	flags.String(ValueKey, "0", "Value in wei sent with every call")
	flags.Bool(ReadOnlyKey, false, "Run the calls as static calls")
	flags.Bool(MetricsKey, false, "Print the router metrics after the calls")
}

func parseCallFlags(flags *pflag.FlagSet) (*callConfig, error) {
	genesisPath, err := flags.GetString(GenesisKey)
	if err != nil {
		return nil, err
	}
	config := &callConfig{Genesis: &precompileconfig.Genesis{}}
	if genesisPath != "" {
		config.Genesis, err = precompileconfig.LoadGenesis(genesisPath)
		if err != nil {
			return nil, err
		}
	}

	from, err := flags.GetString(FromKey)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(from) {
		return nil, fmt.Errorf("invalid --%s address %q", FromKey, from)
	}
	config.From = common.HexToAddress(from)

	to, err := flags.GetString(ToKey)
	if err != nil {
		return nil, err
	}
	config.To, err = parseTarget(to)
	if err != nil {
		return nil, err
	}

	payloads, err := flags.GetStringArray(DataKey)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, errNoCalls
	}
	for _, payload := range payloads {
		data, err := hexutil.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", DataKey, payload, err)
		}
		config.Data = append(config.Data, data)
	}

	value, err := flags.GetString(ValueKey)
	if err != nil {
		return nil, err
	}
	config.Value, err = uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", ValueKey, value, err)
	}

	if config.ReadOnly, err = flags.GetBool(ReadOnlyKey); err != nil {
		return nil, err
	}
	if config.Metrics, err = flags.GetBool(MetricsKey); err != nil {
		return nil, err
	}
	return config, nil
}

// parseTarget accepts a hex address or a precompile name.
func parseTarget(to string) (common.Address, error) {
	if common.IsHexAddress(to) {
		return common.HexToAddress(to), nil
	}
	if id, ok := registry.ByName(to); ok {
		return id.Address(), nil
	}
	return common.Address{}, fmt.Errorf("invalid --%s %q: neither an address nor a precompile name", ToKey, to)
}

func callCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "call",
		Short: "Simulate precompile calls against a chain built from a genesis",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			config, err := parseCallFlags(c.Flags())
			if err != nil {
				return err
			}
			return runCalls(c.OutOrStdout(), config, newLogger(c.ErrOrStderr()))
		},
	}
	addCallFlags(c.Flags())
	return c
}

// newLogger writes info level logs to [w].
func newLogger(w io.Writer) log.Logger {
	return log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(w, slog.LevelInfo, false))
}

// runCalls executes every payload in order. A failing call is reported with
// its revert data and does not stop the ones after it.
func runCalls(w io.Writer, config *callConfig, logger log.Logger) error {
	registerer := prometheus.NewRegistry()
	chain, err := simulator.New(config.Genesis, logger, registerer)
	if err != nil {
		return fmt.Errorf("building chain: %w", err)
	}

	for i, data := range config.Data {
		ret, err := chain.Call(simulator.Message{
			From:     config.From,
			To:       config.To,
			Data:     data,
			Value:    config.Value,
			ReadOnly: config.ReadOnly,
		})
		if err != nil {
			fmt.Fprintf(w, "call %d reverted: %v\nrevert data: %s\n", i, err, hexutil.Encode(router.RevertData(err)))
			continue
		}
		fmt.Fprintf(w, "call %d returned: %s\n", i, hexutil.Encode(ret))
	}

	if !config.Metrics {
		return nil
	}
	families, err := registerer.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
