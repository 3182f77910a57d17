package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brain2-canvas/interfaces/script"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate SCRIPT...",
		Short: "Parse scripts without playing them",
		Args:  cobra.MinimumNArgs(1),
		// no project is needed to check a script
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				s, err := script.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps ok\n", s.Name, len(s.Steps))
			}
			return nil
		},
	}
}
