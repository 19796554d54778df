package cli

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lowsodium/lowsodiumd/internal/clock"
	"github.com/lowsodium/lowsodiumd/internal/config"
	"github.com/lowsodium/lowsodiumd/internal/service"
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the payment queue daemon",
	Long: `Start lowsodiumd, which provides:
- gRPC API for ordering, amending, cancelling and finishing transfers
- Optional WebSocket feed of order lifecycle events
- Durable state in a local pebble database
- Optional sqlite archive of every order event

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, clock.NewSystem())
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	if !quiet {
		fmt.Println("Starting lowsodiumd - time-delayed payment queue")
		fmt.Printf("  owner:          %s\n", cfg.Owner)
		fmt.Printf("  ledger account: %s\n", cfg.LedgerAccount)
		fmt.Printf("  delay:          %ds\n", cfg.DelaySeconds)
		fmt.Printf("  gRPC:           %s\n", cfg.GRPC.Address)
		if cfg.Feed.Enabled {
			fmt.Printf("  event feed:     ws://%s/events\n", cfg.Feed.Address)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return svc.Run(ctx)
}
