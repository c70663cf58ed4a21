package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/importer"
	"github.com/tallybook-dev/tallybook/internal/ledger"
)

func newImportCommand(configPath, user *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file...]",
		Short: "Merge record files into a user's ledger",
		Long:  "Merge one or more record CSV files into the user's ledger. With no arguments, every CSV in <data_dir>/import is merged and then moved to import/processed. Records whose order number already exists are skipped, never overwritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			svc, resolvedUser, err := a.serviceFor(*user)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				for _, path := range args {
					if err := mergeOne(a, svc, resolvedUser, path); err != nil {
						return err
					}
				}
				return nil
			}

			files, err := importer.Scan(a.cfg.DataDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("Nothing to import.")
				return nil
			}
			for _, fi := range files {
				if err := mergeOne(a, svc, resolvedUser, fi.Path); err != nil {
					return err
				}
				if err := importer.MarkProcessed(a.cfg.DataDir, fi.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func mergeOne(a *app, svc *ledger.Service, user, path string) error {
	result, err := svc.ImportMerge(path)
	if err != nil {
		return fmt.Errorf("merging %s: %w", path, err)
	}

	if result.Merged > 0 {
		a.recordMutation(user, "merge", "", fmt.Sprintf("%s: %d merged", path, result.Merged))
	}

	fmt.Printf("%s: merged %d record(s)", path, result.Merged)
	if len(result.Skipped) > 0 {
		fmt.Printf(", skipped %d duplicate(s): %s", len(result.Skipped), strings.Join(result.Skipped, ", "))
	}
	fmt.Println()
	return nil
}
