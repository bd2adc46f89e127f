package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-heat/internal/application"
)

func newTypesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the heat types the configured engine can rank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := application.NewStrategyRegistry()
			if err := registry.Apply(c.config.Strategies); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range registry.SupportedTypes() {
				fmt.Fprintln(out, t)
			}
			return nil
		},
	}
}
