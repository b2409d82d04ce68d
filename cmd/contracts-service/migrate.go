package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(true)
			if err != nil {
				return err
			}
			a.close()
			return nil
		},
	}
}
