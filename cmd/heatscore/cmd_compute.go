package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-heat/infrastructure/store"
)

func newComputeCmd(c *cli) *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:   "compute [heat-id...]",
		Short: "Compute preliminary results from a fixture file",
		Long: "compute loads heats, judge assignments, scores and published results\n" +
			"from a YAML or JSON fixture and prints the preliminary results.\n" +
			"With no heat IDs every heat in the fixture is computed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := store.LoadFixture(fixture)
			if err != nil {
				return err
			}
			ids, err := parseHeatIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				ids = mem.HeatIDs()
			}
			if len(ids) == 0 {
				return fmt.Errorf("fixture %s declares no heats", fixture)
			}
			return c.run(cmd.Context(), cmd, mem, ids)
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (required)")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}
