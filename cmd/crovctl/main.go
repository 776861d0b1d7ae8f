// crovctl is the operations CLI of the CROV backend: password hashes,
// migrations, seed data and queue inspection.
package main

import (
	"os"

	"crovpos/internal/config"
	"crovpos/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "crovctl",
	Short:         "Operations CLI for the CROV backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	rootCmd.AddCommand(hashCmd, migrateCmd, seedCmd, colasCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("crovctl")
		os.Exit(1)
	}
}

// conectar opens the database named by DATABASE_URL without migrating.
func conectar() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
