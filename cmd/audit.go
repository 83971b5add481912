/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/userpanel/adminserver/config"
	"github.com/userpanel/adminserver/internal/audit"
)

// auditCmd represents the audit command.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit-event stream",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print audit events as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		backend, err := audit.Open(cmd.Context(), cfg.Audit)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("AUDIT_BACKEND is not configured")
		}
		defer func() {
			_ = backend.Close()
		}()

		return backend.Subscribe(cmd.Context(), audit.Channel, func(ctx context.Context, msg audit.Message) error {
			fmt.Fprintf(os.Stdout, "%s\n", msg.Data)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditTailCmd)
}
