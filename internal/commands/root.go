// Package commands implements kopilkactl, the operator CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"kopilka/internal/config"
	"kopilka/internal/database"
)

// env resolves configuration and the database on demand.
type env struct {
	loadConfig func() (*config.Config, error)
	openDB     func(cfg *config.Config) (*gorm.DB, func() error, error)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&env{loadConfig: config.Load, openDB: openDatabase})
}

func newRootCommand(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kopilkactl",
		Short: "Operator tooling for the Kopilka backend",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand(e))
	rootCmd.AddCommand(newCategoriesCommand(e))
	rootCmd.AddCommand(newRemindersCommand(e))
	rootCmd.AddCommand(newTokenCommand(e))

	return rootCmd
}

func openDatabase(cfg *config.Config) (*gorm.DB, func() error, error) {
	manager, err := database.NewManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	return manager.DB(), manager.Close, nil
}

// withDB loads config, opens the database and runs fn.
func (e *env) withDB(fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, closeDB, err := e.openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = closeDB() }()
	return fn(cfg, db)
}
