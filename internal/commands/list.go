package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func newListCommand(configPath, user *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all transactions in a user's ledger",
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

			records, err := svc.GetAll()
			if err != nil {
				return err
			}

			printRecords(records)
			return nil
		},
	}
}

func printRecords(records []model.Record) {
	if len(records) == 0 {
		fmt.Println("No records.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCATEGORY\tCOUNTERPARTY\tITEM\tDIR\tAMOUNT\tSTATUS\tORDER NO")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Timestamp,
			rec.Category,
			rec.Counterparty,
			rec.Item,
			rec.Direction,
			ledger.FormatAmount(rec.Amount),
			rec.Status,
			rec.OrderNo,
		)
	}
	tw.Flush()
	fmt.Printf("%d record(s)\n", len(records))
}
