package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func newUpdateCommand(configPath, user *string, verbose *bool) *cobra.Command {
	var (
		orderNo       string
		timestamp     string
		category      string
		counterparty  string
		item          string
		direction     string
		amountText    string
		paymentMethod string
		status        string
		merchantNo    string
		remarks       string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update fields of one transaction",
		Long:  "Update overwrites only the fields whose flags are given; everything else is left unchanged. The order number identifies the record and cannot be changed.",
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

			params := ledger.UpdateParams{OrderNo: orderNo}
			changed := cmd.Flags().Changed

			if changed("time") {
				params.Timestamp = &timestamp
			}
			if changed("category") {
				params.Category = &category
			}
			if changed("counterparty") {
				params.Counterparty = &counterparty
			}
			if changed("item") {
				params.Item = &item
			}
			if changed("direction") {
				dir, ok := model.ParseDirection(direction)
				if !ok {
					return fmt.Errorf("unknown direction %q", direction)
				}
				params.Direction = &dir
			}
			if changed("amount") {
				amount, err := decimal.NewFromString(amountText)
				if err != nil {
					return fmt.Errorf("parsing amount %q: %w", amountText, err)
				}
				params.Amount = &amount
			}
			if changed("payment") {
				params.PaymentMethod = &paymentMethod
			}
			if changed("status") {
				st, ok := model.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				params.Status = &st
			}
			if changed("merchant-no") {
				params.MerchantNo = &merchantNo
			}
			if changed("remarks") {
				params.Remarks = &remarks
			}

			rec, err := svc.Update(params)
			if err != nil {
				return err
			}

			a.recordMutation(resolvedUser, "update", rec.OrderNo, rec.Item)
			fmt.Printf("Updated %s\n", rec.OrderNo)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderNo, "order-no", "", "order number of the record to update (required)")
	_ = cmd.MarkFlagRequired("order-no")
	cmd.Flags().StringVar(&timestamp, "time", "", "new transaction time")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "new counterparty")
	cmd.Flags().StringVar(&item, "item", "", "new item description")
	cmd.Flags().StringVar(&direction, "direction", "", "new direction")
	cmd.Flags().StringVar(&amountText, "amount", "", "new amount")
	cmd.Flags().StringVar(&paymentMethod, "payment", "", "new payment method")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&merchantNo, "merchant-no", "", "new merchant number")
	cmd.Flags().StringVar(&remarks, "remarks", "", "new remarks")

	return cmd
}
