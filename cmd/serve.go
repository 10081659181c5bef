package cmd

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"plasmaheat/server"
)

// ServeCmd exposes simulations over a websocket
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve start/pause/resume/cancel and progress push over websocket at /ws",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr := cfg.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}
		return server.NewServer(addr, upgrader, cfg.Simulation).Serve()
	},
}

func init() {
	rootCmd.AddCommand(ServeCmd)
	ServeCmd.Flags().String("addr", "", "listen address, overrides [server] addr")
}
