package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/obligo/backend/internal/backup"
	"github.com/obligo/backend/internal/obligations"
)

// Names of the built-in jobs.
const (
	JobStatusPass = "status-pass"
	JobBackup     = "backup"
)

// StatusPass moves overdue obligations of the service to OVERDUE.
func StatusPass(svc *obligations.Service) Job {
	return JobFunc{
		JobName: JobStatusPass,
		Fn: func(_ context.Context) (string, error) {
			moved, err := svc.StatusPass()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d scheduled transactions are now overdue", moved), nil
		},
	}
}

// Backup writes a backup of the database of the service into dir.
func Backup(svc *obligations.Service, dir, version string) Job {
	return JobFunc{
		JobName: JobBackup,
		Fn: func(_ context.Context) (string, error) {
			path, err := backup.Write(svc.DB(), dir, version, time.Now())
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("wrote %s", path), nil
		},
	}
}
