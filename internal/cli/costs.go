package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lowsodium/lowsodiumd/internal/core/bank"
	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// costsCmd benchmarks each ledger operation against an in-memory instance
// and prints a per-operation timing table.
var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Report the wall-clock cost of each ledger operation",
	RunE:  runCosts,
}

var costIterations int

func init() {
	rootCmd.AddCommand(costsCmd)
	costsCmd.Flags().IntVar(&costIterations, "iterations", 1000, "operations per measurement")
}

func runCosts(cmd *cobra.Command, args []string) error {
	const (
		owner   = "owner"
		account = "vault"
		dest    = "dest"
		delay   = int64(86400)
	)

	book := bank.NewBook()
	if err := book.Deposit(account, ledger.NativeAsset(), uint64(costIterations)*100); err != nil {
		return err
	}
	l := ledger.New(owner, account, delay, book)

	now := time.Now().Unix()
	measure := func(name string, op func(i int) ledger.Result) error {
		return measureN(name, costIterations, op)
	}

	if err := measure("orderTransaction", func(i int) ledger.Result {
		_, res := l.OrderTransaction(ledger.OpContext{Caller: owner, Now: now}, ledger.NativeAsset(), 100, dest)
		return res
	}); err != nil {
		return err
	}

	if err := measure("amendDestination", func(i int) ledger.Result {
		_, res := l.AmendDestination(ledger.OpContext{Caller: owner, Now: now}, uint64(i+1), "redirected")
		return res
	}); err != nil {
		return err
	}

	// Cancel the first half before maturity, finish the rest after it.
	half := costIterations / 2
	if err := measureN("cancelTransaction", half, func(i int) ledger.Result {
		_, res := l.CancelTransaction(ledger.OpContext{Caller: owner, Now: now}, uint64(i+1))
		return res
	}); err != nil {
		return err
	}

	matured := now + delay
	if err := measureN("finishTransaction", costIterations-half, func(i int) ledger.Result {
		_, res := l.FinishTransaction(ledger.OpContext{Caller: "anyone", Now: matured}, uint64(half+i+1))
		return res
	}); err != nil {
		return err
	}

	return nil
}

func measureN(name string, n int, op func(i int) ledger.Result) error {
	start := time.Now()
	for i := 0; i < n; i++ {
		if res := op(i); !res.IsSuccess() {
			return fmt.Errorf("%s failed at iteration %d: %s", name, i, res)
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("%-20s %12s total %12s/op\n", name, elapsed.Round(time.Microsecond), (elapsed / time.Duration(n)).Round(time.Nanosecond))
	return nil
}
