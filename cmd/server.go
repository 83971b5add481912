/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/userpanel/adminserver/config"
	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/internal/server"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the admin panel server",
	Long: `Starts the admin panel server. Usage:

	adminserver server
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()
		log := logging.Default()

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
