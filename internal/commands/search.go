package commands

import (
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/ledger"
)

func newSearchCommand(configPath, user *string, verbose *bool) *cobra.Command {
	var crit ledger.Criteria

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a user's ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			svc, _, err := a.serviceFor(*user)
			if err != nil {
				return err
			}

			matches, err := svc.Search(crit)
			if err != nil {
				return err
			}

			printRecords(matches)
			return nil
		},
	}

	cmd.Flags().StringVar(&crit.Category, "category", "", "category substring")
	cmd.Flags().StringVar(&crit.Counterparty, "counterparty", "", "counterparty substring")
	cmd.Flags().StringVar(&crit.Item, "item", "", "item substring")
	cmd.Flags().StringVar(&crit.Direction, "direction", "", "income or expense (synonyms accepted)")
	cmd.Flags().StringVar(&crit.PaymentMethod, "payment", "", "payment method substring")
	cmd.Flags().StringVar(&crit.Status, "status", "", "status substring")
	cmd.Flags().StringVar(&crit.OrderNo, "order-no", "", "order number substring")
	cmd.Flags().StringVar(&crit.MerchantNo, "merchant-no", "", "merchant number substring")
	cmd.Flags().StringVar(&crit.Remarks, "remarks", "", "remarks substring")

	return cmd
}
