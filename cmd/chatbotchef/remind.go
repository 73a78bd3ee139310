package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var remindTimeout time.Duration

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send premium renewal reminders once and exit",
	Long: `Run a single renewal reminder sweep: every premium user whose access
ends on one of the REMINDER_DAYS_BEFORE lead days is notified in their
language. Useful from an external scheduler when the built-in cron is off.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), remindTimeout)
		defer cancel()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		n, err := a.reminders.DispatchRenewalReminders(ctx)
		if err != nil {
			return fmt.Errorf("reminder sweep: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reminders sent: %d\n", n)
		return nil
	},
}

func init() {
	remindCmd.Flags().DurationVar(&remindTimeout, "timeout", 5*time.Minute, "abort the sweep after this long")
}
