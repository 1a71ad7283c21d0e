package syncperms

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appPermission "github.com/openfun/ashley-sub000/internal/application/permission"
	domainPermission "github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/infrastructure/config"
	"github.com/openfun/ashley-sub000/internal/infrastructure/database"
	infraPermission "github.com/openfun/ashley-sub000/internal/infrastructure/permission"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

var (
	env         string
	apply       bool
	removeExtra bool
)

// NewCommand builds the batch permission reconciliation command. By
// default it only reports drift; nothing is written without --apply.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-group-permissions",
		Short: "Reconcile group permissions with the expected per-forum sets",
		Long: `Walk every forum and compare each group's granted permissions against
the set its role implies. Missing grants are reported, and written with
--apply. Grants outside the expected set are only removed with
--remove-extra-permissions; locked courses are never re-opened.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write missing grants instead of only reporting them")
	cmd.Flags().BoolVar(&removeExtra, "remove-extra-permissions", false, "Remove grants outside the expected set")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	log := logger.NewLogger()
	db := database.Get()

	enforcer, err := infraPermission.NewEnforcer(db, log)
	if err != nil {
		return fmt.Errorf("failed to build enforcer: %w", err)
	}

	uc := appPermission.NewSyncGroupPermissionsUseCase(
		repository.NewForumRepository(db),
		repository.NewLTIContextRepository(db),
		enforcer,
		domainPermission.DefaultRolePermissions(),
		log,
	)

	result, err := uc.Execute(context.Background(), appPermission.SyncGroupPermissionsCommand{
		Apply:       apply,
		RemoveExtra: removeExtra,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	logger.Info("group permission sync finished",
		"forums_visited", result.ForumsVisited,
		"granted", result.Granted,
		"revoked", result.Revoked,
		"applied", apply)

	return nil
}
