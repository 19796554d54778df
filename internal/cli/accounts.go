package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lowsodium/lowsodiumd/internal/clock"
	"github.com/lowsodium/lowsodiumd/internal/config"
	"github.com/lowsodium/lowsodiumd/internal/service"
)

// accountsCmd lists every account holding known to the state database.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List account holdings from the state database",
	RunE:  runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, clock.NewSystem())
	if err != nil {
		return err
	}
	defer svc.Close()

	holdings := svc.Book().Holdings()
	if len(holdings) == 0 {
		fmt.Println("no holdings")
		return nil
	}

	fmt.Printf("%-24s %-40s %s\n", "ACCOUNT", "ASSET", "AMOUNT")
	for _, h := range holdings {
		fmt.Printf("%-24s %-40s %d\n", h.Account, h.Asset, h.Amount)
	}
	return nil
}
