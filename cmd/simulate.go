package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
	"github.com/siddeeqzul/calculatorzakakt/internal/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/payment/storage"
	"github.com/siddeeqzul/calculatorzakakt/pkg/logger"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one donation through the simulated gateway",
	Long:  `Submit a single donation end to end against the simulated gateway and print the outcome. Useful for demos and smoke checks without a real gateway.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSimulation()
	},
}

var (
	simulateAmount string
	simulateMethod string
	simulateEmail  string
	simulateSeed   int64
)

func init() {
	simulateCmd.Flags().StringVar(&simulateAmount, "amount", "100.00", "donation amount in MYR")
	simulateCmd.Flags().StringVar(&simulateMethod, "method", "fpx", "payment method (fpx, card, wallet, qr)")
	simulateCmd.Flags().StringVar(&simulateEmail, "email", "demo@example.com", "payer email")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "simulator seed (0 uses current time)")
}

func runSimulation() {
	logger.Init("info", "text")
	log := logger.LoggerWrapper()

	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open in-memory history db: %v\n", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&paymentmodel.HistoryRecord{}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate history db: %v\n", err)
		os.Exit(1)
	}

	gwCfg := internal.GatewayConfig{
		Mode:      internal.GatewayModeSimulated,
		Timeout:   10 * time.Second,
		ReturnURL: "http://localhost:8080/api/v1/payments/return",
		CancelURL: "http://localhost:8080/api/v1/payments/return",
		Simulator: internal.SimulatorConfig{
			SuccessRate: 0.8,
			Delay:       time.Second,
			Seed:        simulateSeed,
		},
	}

	eventBus := events.NewEventBus(log)
	payment.NewReceiptNotifier(log).RegisterEventHandlers(eventBus)

	gw := gateway.New(gwCfg, log)
	history := storage.NewHistoryRepository(db)
	service := payment.NewService(gw, history, eventBus, gwCfg, log)

	outcome, err := service.SubmitDonation(context.Background(), &payment.DonationRequest{
		Amount: payment.FlexibleAmount(simulateAmount),
		Method: simulateMethod,
		Email:  simulateEmail,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "donation rejected: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("reference:   %s\n", outcome.Intent.ReferenceID)
	fmt.Printf("amount:      %.2f %s\n", outcome.Intent.Amount, outcome.Intent.Currency)
	fmt.Printf("status:      %s\n", outcome.Result.Status)
	if outcome.Result.TransactionID != "" {
		fmt.Printf("transaction: %s\n", outcome.Result.TransactionID)
	}
	if outcome.Result.FailureReason != "" {
		fmt.Printf("reason:      %s\n", outcome.Result.FailureReason)
	}

	records, err := service.History(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read history: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("history:     %d record(s)\n", len(records))
}
