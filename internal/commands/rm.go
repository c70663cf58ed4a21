package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRmCommand(configPath, user *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <order-no>",
		Short: "Delete a transaction by order number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			svc, resolvedUser, err := a.serviceFor(*user)
			if err != nil {
				return err
			}

			orderNo := args[0]
			found, err := svc.Delete(orderNo)
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("No record with order number %s\n", orderNo)
				return nil
			}

			a.recordMutation(resolvedUser, "delete", orderNo, "")
			fmt.Printf("Deleted %s\n", orderNo)
			return nil
		},
	}
}
