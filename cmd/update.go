package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mirrorlib/mirrorlib/internal/collection"
	"github.com/mirrorlib/mirrorlib/internal/library"
)

//nolint:gochecknoglobals // cobra CLI flags require package-level variables
var (
	createFlag   bool
	noCreateFlag bool
)

//nolint:gochecknoglobals // cobra requires package-level command variable
var updateCmd = &cobra.Command{
	Use:   "update <collection>",
	Short: "Synchronize an alternative collection with the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

//nolint:gochecknoinits // cobra requires init for command registration
func init() {
	updateCmd.Flags().BoolVar(&createFlag, "create", false, "create the collection directory without asking")
	updateCmd.Flags().BoolVar(&noCreateFlag, "no-create", false, "skip the update when the collection directory is missing")
	updateCmd.MarkFlagsMutuallyExclusive("create", "no-create")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := library.Open(appConfig.Library.Database)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close library store")
		}
	}()

	logger := log.With().Str("component", "update").Str("collection", name).Logger()
	coll, err := collection.FromConfig(&appConfig, name, store, logger,
		collection.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var create *bool
	switch {
	case createFlag:
		create = ptr(true)
	case noCreateFlag:
		create = ptr(false)
	}

	return coll.Update(ctx, create)
}

func ptr[T any](v T) *T {
	return &v
}
