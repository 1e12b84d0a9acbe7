package cli

import (
	"fmt"

	"github.com/obligo/backend/internal/router"
	"github.com/obligo/backend/internal/scheduler"
	"github.com/spf13/cobra"
)

var statusPassCmd = &cobra.Command{
	Use:   "status-pass",
	Short: "Move overdue scheduled transactions to OVERDUE",
	Long: `Move every PENDING scheduled transaction that is due before today to
OVERDUE. Running it repeatedly is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd, scheduler.JobStatusPass)
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup of all data to BACKUP_DIR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd, scheduler.JobBackup)
	},
}

// runJob runs a single job once, the same way the scheduler of the server
// does.
func runJob(cmd *cobra.Command, name string) error {
	c, svc, err := setup()
	if err != nil {
		return err
	}

	s := scheduler.New(c.BackupHour, c.Location,
		scheduler.StatusPass(svc),
		scheduler.Backup(svc, c.BackupDir, router.Version()),
	)

	run, err := s.Trigger(cmd.Context(), name)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), run.Summary)
	return nil
}
