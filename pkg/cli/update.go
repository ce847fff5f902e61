package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cvd-tools/cvdget/pkg/cli/config"
	"github.com/cvd-tools/cvdget/pkg/domain/model"
	"github.com/cvd-tools/cvdget/pkg/infra/mirror"
	"github.com/cvd-tools/cvdget/pkg/infra/storage"
	"github.com/cvd-tools/cvdget/pkg/usecase"
)

func cmdUpdate() *cli.Command {
	var (
		dbCfg     config.Database
		mirrorCfg config.Mirror
	)

	flags := append(dbCfg.Flags(), mirrorCfg.Flags()...)

	return &cli.Command{
		Name:    "update",
		Aliases: []string{"u"},
		Usage:   "Download the signature database files",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			mirrors, identities, err := mirrorCfg.Resolve()
			if err != nil {
				return err
			}

			plan := &model.UpdatePlan{
				DatabaseDir: dbCfg.Dir,
				Mirrors:     mirrors,
				Identities:  identities,
				Targets:     model.DefaultTargets(),
				Backup:      !dbCfg.NoBackup,
				BackupURL:   dbCfg.BackupTo,
			}

			logger.Debug("Resolved update plan", slog.Any("plan", plan))

			// Stop cleanly on Ctrl-C: the run we abandon must not be
			// mistaken for a verdict
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case sig := <-sigChan:
					logger.Info("Signal received, stopping...", slog.Any("signal", sig))
					cancel()
				case <-ctx.Done():
				}
			}()

			var opts []usecase.Option
			if plan.Backup {
				if store := openBackupStore(ctx, dbCfg); store != nil {
					defer store.Close()
					opts = append(opts, usecase.WithBackup(store))
				}
			}

			transport := mirror.New(mirror.WithTimeout(mirrorCfg.Timeout))
			uc := usecase.NewUpdate(transport, opts...)

			summary, err := uc.UpdateDatabase(ctx, plan)
			if err != nil {
				return err
			}

			renderSummary(os.Stdout, summary)

			if !summary.Succeeded() {
				return goerr.New("required database files are missing",
					goerr.V("missing", summary.MissingRequired))
			}
			return nil
		},
	}
}

// openBackupStore opens the bucket that receives pre-update copies.
// Failure only disables backups for this run, an update must never be
// blocked by its safety net.
func openBackupStore(ctx context.Context, dbCfg config.Database) *storage.Store {
	logger := ctxlog.From(ctx)

	if dbCfg.BackupTo != "" {
		store, err := storage.OpenURL(ctx, dbCfg.BackupTo)
		if err != nil {
			logger.Warn("Failed to open backup bucket, backups disabled for this run", "error", err)
			return nil
		}
		return store
	}

	store, err := storage.OpenDir(filepath.Join(dbCfg.Dir, "backup"))
	if err != nil {
		logger.Warn("Failed to open backup directory, backups disabled for this run", "error", err)
		return nil
	}
	return store
}
