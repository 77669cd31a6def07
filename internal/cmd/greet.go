package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGreetCommand creates the greet command
func NewGreetCommand() *cobra.Command {
	var (
		name  string
		count int
	)

	cmd := &cobra.Command{
		Use:   "greet",
		Short: "Greet a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < count; i++ {
				fmt.Fprintf(cmd.OutOrStdout(), "Hello %s!\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the person to greet")
	cmd.Flags().IntVarP(&count, "count", "c", 1, "Number of times to greet")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
