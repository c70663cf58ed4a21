package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func newAddCommand(configPath, user *string, verbose *bool) *cobra.Command {
	var (
		timestamp     string
		category      string
		counterparty  string
		item          string
		direction     string
		amountText    string
		paymentMethod string
		status        string
		orderNo       string
		merchantNo    string
		remarks       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction to a user's ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			svc, resolvedUser, err := a.serviceFor(*user)
			if err != nil {
				return err
			}

			dir, ok := model.ParseDirection(direction)
			if !ok {
				return fmt.Errorf("unknown direction %q", direction)
			}
			st, ok := model.ParseStatus(status)
			if !ok {
				return fmt.Errorf("unknown status %q", status)
			}
			amount, err := decimal.NewFromString(amountText)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amountText, err)
			}
			if timestamp == "" {
				timestamp = time.Now().Format(model.TimestampFormat)
			}

			rec, err := svc.Add(model.Record{
				Timestamp:     timestamp,
				Category:      category,
				Counterparty:  counterparty,
				Item:          item,
				Direction:     dir,
				Amount:        amount,
				PaymentMethod: paymentMethod,
				Status:        st,
				OrderNo:       orderNo,
				MerchantNo:    merchantNo,
				Remarks:       remarks,
			})
			if err != nil {
				return err
			}

			a.recordMutation(resolvedUser, "add", rec.OrderNo, rec.Item)
			fmt.Printf("Added %s\n", rec.OrderNo)
			return nil
		},
	}

	cmd.Flags().StringVar(&timestamp, "time", "", "transaction time, \"2006-01-02 15:04:05\" (default now)")
	cmd.Flags().StringVar(&category, "category", "", "category (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "who the money moved to or from")
	cmd.Flags().StringVar(&item, "item", "", "item description")
	cmd.Flags().StringVar(&direction, "direction", "expense", "income or expense")
	cmd.Flags().StringVar(&amountText, "amount", "", "amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&paymentMethod, "payment", "", "payment method")
	cmd.Flags().StringVar(&status, "status", "completed", "completed or pending")
	cmd.Flags().StringVar(&orderNo, "order-no", "", "order number (generated if empty)")
	cmd.Flags().StringVar(&merchantNo, "merchant-no", "", "merchant number")
	cmd.Flags().StringVar(&remarks, "remarks", "", "free-text remarks")

	return cmd
}
