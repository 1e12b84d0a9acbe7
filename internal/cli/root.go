// Package cli implements the obligo command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/obligo/backend/internal/config"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "obligo",
	Short: "Scheduled obligations, transaction matching and balance reconciliation",
	Long: `obligo tracks scheduled payments such as rent, loan installments and
post-dated cheques, pairs them with the transactions that paid them and
warns when an account cannot cover what is due.

Without a command, obligo serves the HTTP API.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runServe,
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "file to load environment variables from (default is .env if it exists)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reassignCmd)
	rootCmd.AddCommand(statusPassCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// setupLogging configures gin and the global logger.
func setupLogging(_ *cobra.Command, _ []string) error {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	return nil
}

// setup loads the configuration, connects to the database and returns the
// service.
func setup() (*config.Config, *obligations.Service, error) {
	c, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	err = os.MkdirAll(filepath.Dir(c.DBPath), 0o750)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create data directory: %w", err)
	}

	err = models.Connect(c.DBPath)
	if err != nil {
		return nil, nil, err
	}

	svc := obligations.New(models.DB,
		obligations.WithLocation(c.Location),
		obligations.WithHorizon(c.HorizonDays),
	)

	return c, svc, nil
}
