package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"plasmaheat/simulation"
)

// RunCmd runs one simulation to completion
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and optionally write the results as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sim := cfg.Simulation
		if kind, _ := cmd.Flags().GetString("solver"); kind != "" {
			sim.Solver.Kind = kind
		}
		if total, _ := cmd.Flags().GetFloat64("total-time"); total > 0 {
			sim.Simulation.TotalTime = total
		}
		if dt, _ := cmd.Flags().GetFloat64("dt"); dt > 0 {
			sim.Simulation.TimeStep = dt
		}
		if cmd.Flags().Changed("accept-unstable") {
			sim.Simulation.AcceptUnstableTimeStep, _ = cmd.Flags().GetBool("accept-unstable")
		}

		s, err := simulation.New(sim)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := s.Start(ctx); err != nil {
			return err
		}

		every, _ := cmd.Flags().GetDuration("report")
		ticker := time.NewTicker(every)
		defer ticker.Stop()
	LOOP:
		for {
			select {
			case <-ticker.C:
				p := s.Progress()
				log.WithFields(log.Fields{
					"time":     p.CurrentTime,
					"step":     p.CurrentStep,
					"progress": fmt.Sprintf("%.1f%%", 100*p.Progress),
				}).Info("计算中")
			case <-s.Done():
				break LOOP
			}
		}
		runErr := s.Err()

		res := s.Results()
		log.WithFields(log.Fields{
			"status":      res.Status,
			"steps":       res.Steps,
			"min":         res.MinTemperature,
			"max":         res.MaxTemperature,
			"energyError": res.EnergyConservationError,
		}).Info("计算结束")

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := writeJSON(out, res); err != nil {
				return err
			}
		}
		return runErr
	},
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("solver", "s", "", "explicit | implicit, overrides [solver] kind")
	RunCmd.Flags().Float64P("total-time", "t", 0, "simulated time in seconds, overrides [simulation] total_time")
	RunCmd.Flags().Float64("dt", 0, "fixed time step in seconds, 0 picks the stable step")
	RunCmd.Flags().Bool("accept-unstable", false, "allow an explicit time step above the stable limit")
	RunCmd.Flags().StringP("out", "o", "", "write results JSON to this file")
	RunCmd.Flags().Duration("report", 2*time.Second, "progress report interval")
}
