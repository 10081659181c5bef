package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"plasmaheat/simulation"
)

// TimestepCmd prints the stable explicit step for the configured case
var TimestepCmd = &cobra.Command{
	Use:   "timestep",
	Short: "Print the stable explicit time step and the default implicit step",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := simulation.New(cfg.Simulation)
		if err != nil {
			return err
		}
		dt, err := s.StableTimestep()
		if err != nil {
			return err
		}
		c := s.Config()
		fmt.Fprintf(cmd.OutOrStdout(), "mesh       %d x %d (dr = %g m, dz = %g m)\n", c.Mesh.Nr, c.Mesh.Nz, s.Mesh().Dr, s.Mesh().Dz)
		fmt.Fprintf(cmd.OutOrStdout(), "explicit   %g s\n", dt)
		fmt.Fprintf(cmd.OutOrStdout(), "implicit   %g s (x%g)\n", dt*c.Simulation.ImplicitStepFactor, c.Simulation.ImplicitStepFactor)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(TimestepCmd)
}
