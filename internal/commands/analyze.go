package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/analyze"
)

func newAnalyzeCommand(configPath, user *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <question...>",
		Short: "Ask a natural-language question about a user's transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			svc, _, err := a.serviceFor(*user)
			if err != nil {
				return err
			}

			timeout, err := a.cfg.Analyze.TimeoutDuration()
			if err != nil {
				return err
			}

			completer, err := analyze.NewGemini(cmd.Context(), a.cfg.Analyze.Model)
			if err != nil {
				return err
			}

			analyzer := analyze.New(svc, completer, timeout)
			answer, err := analyzer.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Println(answer)
			return nil
		},
	}
}
