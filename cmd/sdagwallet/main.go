// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command sdagwallet is a light-client CLI: it holds a single keypair,
// talks to a node's hub over websocket RPC for every read and post, and
// never stores any DAG state of its own.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/compose"
	"github.com/luxfi/sdag/internal/unit"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sdagwallet: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sdagwallet <init|info|log|send|balance|raw_post> [flags]")
	}

	globals := flag.NewFlagSet("sdagwallet", flag.ContinueOnError)
	hubURL := globals.String("hub", "ws://127.0.0.1:6000/ws", "websocket address of the node's hub")
	walletDir := globals.String("wallet-dir", "./sdag-wallet", "directory holding the wallet's keypair")

	cmd, rest := args[0], args[1:]
	subFlags := flag.NewFlagSet(cmd, flag.ContinueOnError)
	mergeFlags(subFlags, globals)

	switch cmd {
	case "init":
		if err := subFlags.Parse(rest); err != nil {
			return err
		}
		return cmdInit(*walletDir)
	case "raw_post":
		if err := subFlags.Parse(rest); err != nil {
			return err
		}
		if subFlags.NArg() != 1 {
			return fmt.Errorf("usage: sdagwallet raw_post <joint.json>")
		}
		return cmdRawPost(*hubURL, subFlags.Arg(0))
	case "info":
		if err := subFlags.Parse(rest); err != nil {
			return err
		}
		return cmdInfo(*hubURL, *walletDir)
	case "balance":
		if err := subFlags.Parse(rest); err != nil {
			return err
		}
		return cmdBalance(*hubURL, *walletDir)
	case "log":
		num := subFlags.Int("n", 5, "number of entries to show")
		index := subFlags.Int("v", 0, "show only entry N in detail (1-based)")
		if err := subFlags.Parse(rest); err != nil {
			return err
		}
		return cmdLog(*hubURL, *walletDir, *num, *index)
	case "send":
		pay := subFlags.String("pay", "", "comma-separated address:amount pairs to pay")
		text := subFlags.String("text", "", "optional text message to attach")
		if err := subFlags.Parse(rest); err != nil {
			return err
		}
		return cmdSend(*hubURL, *walletDir, *pay, *text)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// mergeFlags registers src's flags onto dst so subcommand flag sets
// still accept the global -hub/-wallet-dir overrides after the command
// name, matching how most single-binary CLIs in this codebase's style
// let flags trail the verb.
func mergeFlags(dst, src *flag.FlagSet) {
	src.VisitAll(func(f *flag.Flag) {
		dst.Var(f.Value, f.Name, f.Usage)
	})
}

func cmdInit(walletDir string) error {
	if err := resetWallet(walletDir); err != nil {
		return err
	}
	key, err := loadOrInitWallet(walletDir)
	if err != nil {
		return err
	}
	fmt.Printf("wallet initialized\n")
	fmt.Printf("address: %s\n", key.Address())
	return nil
}

func cmdInfo(hubURL, walletDir string) error {
	key, err := loadOrInitWallet(walletDir)
	if err != nil {
		return err
	}
	rpc, err := dial(hubURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	pubkey, err := key.PublicKey(key.Address())
	if err != nil {
		return err
	}
	balance, err := getBalance(rpc, key.Address())
	if err != nil {
		return err
	}

	fmt.Printf("\ncurrent wallet info:\n\n")
	fmt.Printf("address : %s\n", key.Address())
	fmt.Printf("pubkey  : %s\n", pubkey)
	fmt.Printf("balance : %.6f\n", microToUnits(balance))
	return nil
}

func cmdBalance(hubURL, walletDir string) error {
	key, err := loadOrInitWallet(walletDir)
	if err != nil {
		return err
	}
	rpc, err := dial(hubURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	balance, err := getBalance(rpc, key.Address())
	if err != nil {
		return err
	}
	fmt.Printf("%.6f\n", microToUnits(balance))
	return nil
}

func cmdLog(hubURL, walletDir string, num, index int) error {
	key, err := loadOrInitWallet(walletDir)
	if err != nil {
		return err
	}
	rpc, err := dial(hubURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	history, err := getHistory(rpc, key.Address(), num)
	if err != nil {
		return err
	}

	if index > 0 {
		if index > len(history) {
			return fmt.Errorf("invalid transaction index")
		}
		entry := history[index-1]
		fmt.Printf("UNIT   : %s\n", entry.Unit)
		fmt.Printf("AMOUNT : %.6f\n", microToUnits(uint64(abs64(entry.Delta))))
		return nil
	}

	for i, entry := range history {
		fmt.Printf("#%-4d %10.6f\t%s\n", i+1, float64(entry.Delta)/1_000_000.0, entry.Unit)
	}
	return nil
}

func cmdSend(hubURL, walletDir, pay, text string) error {
	key, err := loadOrInitWallet(walletDir)
	if err != nil {
		return err
	}
	outputs, err := parsePayArg(pay)
	if err != nil {
		return err
	}

	rpc, err := dial(hubURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	var total uint64
	for _, o := range outputs {
		total += o.Amount
	}

	pubkey, err := key.PublicKey(key.Address())
	if err != nil {
		return err
	}

	joint, err := compose.ComposeJoint(compose.Request{
		PaidAddress:   key.Address(),
		ChangeAddress: key.Address(),
		Outputs:       outputs,
		Amount:        total,
		Text:          text,
		PubKey:        pubkey,
	}, remoteResolver{rpc: rpc}, key)
	if err != nil {
		return err
	}

	unitHash, err := postJoint(rpc, joint)
	if err != nil {
		return err
	}

	fmt.Printf("FROM : %s\n", key.Address())
	fmt.Printf("TO   :\n")
	for _, o := range outputs {
		fmt.Printf("       address : %s, amount : %.6f\n", o.Address, microToUnits(o.Amount))
	}
	fmt.Printf("UNIT : %s\n", unitHash)
	if text != "" {
		fmt.Printf("TEXT : %s\n", text)
	}
	return nil
}

func cmdRawPost(hubURL, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var joint json.RawMessage
	if err := json.Unmarshal(b, &joint); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	rpc, err := dial(hubURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	unitHash, err := postJoint(rpc, joint)
	if err != nil {
		return err
	}
	fmt.Printf("posted unit: %s\n", unitHash)
	return nil
}

// parsePayArg parses a "-pay" value shaped as "addr1:amount1,addr2:amount2"
// into payment outputs, validating each amount is representable in
// micro-units.
func parsePayArg(pay string) ([]business.PaymentOutput, error) {
	if pay == "" {
		return nil, fmt.Errorf("send requires -pay address:amount[,address:amount...]")
	}
	var outputs []business.PaymentOutput
	for _, pair := range strings.Split(pay, ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid -pay entry %q, want address:amount", pair)
		}
		addr, err := unit.ParseAddress(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", parts[0], err)
		}
		amount, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", parts[1], err)
		}
		if amount < 0.000001 {
			return nil, fmt.Errorf("invalid amount %q: below minimum unit", parts[1])
		}
		outputs = append(outputs, business.PaymentOutput{Address: addr, Amount: uint64((amount * 1_000_000.0) + 0.5)})
	}
	return outputs, nil
}

func microToUnits(micro uint64) float64 {
	return float64(micro) / 1_000_000.0
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
