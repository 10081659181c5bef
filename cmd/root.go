package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"plasmaheat/config"
)

var rootCmd = &cobra.Command{
	Use:   "plasmaheat",
	Short: "Transient temperature field of a cylinder heated by plasma torches",
	Long: `Transient heat conduction with phase change in an axisymmetric (r, z) cylinder,
heated by Gaussian plasma torches. Explicit and Crank-Nicolson/SOR solvers.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "ini config file, defaults are used when empty")
	rootCmd.PersistentFlags().String("log-level", "", "override [log] level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load([]byte{})
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if cfg.LogLevel, err = log.ParseLevel(level); err != nil {
			return nil, err
		}
	}
	cfg.SetupLogging()
	return cfg, nil
}
