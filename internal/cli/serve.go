package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/obligo/backend/internal/controllers/v1"
	"github.com/obligo/backend/internal/router"
	"github.com/obligo/backend/internal/scheduler"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the daily jobs",
	Long: `Serve the HTTP API on PORT and run the daily jobs at BACKUP_HOUR.

The status pass runs once on startup so that obligations that became
overdue while obligo was not running are moved immediately.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	c, svc, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := scheduler.New(c.BackupHour, c.Location,
		scheduler.StatusPass(svc),
		scheduler.Backup(svc, c.BackupDir, router.Version()),
	)
	jobs.Start(ctx)
	defer jobs.Stop()

	r, teardown, err := router.Config(c.APIURL)
	if err != nil {
		return err
	}
	defer teardown()

	router.AttachRoutes(v1.Controller{Service: svc, Scheduler: jobs}, r.Group("/"))

	server := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", c.Port).Msg("backend startup complete")

	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		log.Info().Msg("server stopped")
		return nil
	}
	return err
}
