package usecase

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cvd-tools/cvdget/pkg/domain/interfaces"
	"github.com/cvd-tools/cvdget/pkg/domain/model"
	"github.com/cvd-tools/cvdget/pkg/domain/types"
	"github.com/cvd-tools/cvdget/pkg/utils/bytefmt"
)

// errEmptyDownload marks an attempt that delivered a zero-byte body.
// Such a file is useless to the scanner, so the attempt counts as a
// failure and fallback continues.
var errEmptyDownload = errors.New("downloaded file is empty")

type updateUseCase struct {
	transport interfaces.Transport
	backup    interfaces.BackupStore
}

type Option func(*updateUseCase)

// WithBackup attaches a store that receives copies of existing
// database files before the run overwrites them
func WithBackup(store interfaces.BackupStore) Option {
	return func(uc *updateUseCase) {
		uc.backup = store
	}
}

// NewUpdate creates a new instance of UpdateUseCase
func NewUpdate(transport interfaces.Transport, opts ...Option) interfaces.UpdateUseCase {
	uc := &updateUseCase{
		transport: transport,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// UpdateDatabase downloads every target in the plan. Each target is
// independent: a failed file never aborts the others. The run fails as
// a whole only when the database directory cannot be prepared or the
// context is cancelled.
func (uc *updateUseCase) UpdateDatabase(ctx context.Context, plan *model.UpdatePlan) (*model.RunSummary, error) {
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting database update",
		"dir", plan.DatabaseDir,
		"mirrors", redactURLs(plan.Mirrors),
		"identities", len(plan.Identities),
		"targets", len(plan.Targets),
		"backup", plan.Backup,
	)

	if err := ensureDatabaseDir(plan.DatabaseDir); err != nil {
		return nil, err
	}

	if plan.Backup && uc.backup != nil {
		uc.backupExisting(ctx, plan, runID)
	}

	summary := &model.RunSummary{RunID: runID}
	for _, target := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "update interrupted")
		}

		outcome := uc.downloadTarget(ctx, plan, target)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Succeeded {
			summary.SuccessCount++
		} else {
			summary.FailCount++
		}
	}

	summary.MissingRequired = missingRequired(plan.DatabaseDir, plan.Targets)

	logger.Info("Database update finished",
		"succeeded", summary.SuccessCount,
		"failed", summary.FailCount,
		"missing_required", summary.MissingRequired,
	)
	return summary, nil
}

// ensureDatabaseDir creates the database directory if needed. Failure
// here is fatal: without the directory no download can land.
func ensureDatabaseDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		msg := "failed to create database directory"
		if errors.Is(err, fs.ErrPermission) {
			msg = "database directory is not writable"
		}
		return goerr.Wrap(err, msg, goerr.V("dir", dir), goerr.T(types.ErrTagFatal))
	}
	return nil
}

// backupExisting copies the database files already on disk into the
// backup store under a per-run prefix. Missing files are skipped; a
// failed copy is warned about and the next file is tried.
func (uc *updateUseCase) backupExisting(ctx context.Context, plan *model.UpdatePlan, runID string) {
	logger := ctxlog.From(ctx)
	prefix := time.Now().Format("20060102-150405") + "-" + runID[:8]

	var backed int
	for _, target := range plan.Targets {
		path := filepath.Join(plan.DatabaseDir, target.Name)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("Could not read database file for backup", "path", path, "error", err)
			continue
		}

		key := prefix + "/" + target.Name
		err = uc.backup.Save(ctx, key, f)
		f.Close()
		if err != nil {
			logger.Warn("Could not back up database file", "file", target.Name, "key", key, "error", err)
			continue
		}
		logger.Debug("Backed up database file", "file", target.Name, "key", key)
		backed++
	}

	if backed == 0 {
		logger.Info("No existing database files to back up")
	} else {
		logger.Info("Backed up existing database files", "count", backed, "prefix", prefix)
	}
}

// downloadTarget tries every (mirror, identity) pair in order until one
// delivers a usable file. Mirrors are the outer loop: a mirror that
// refuses one identity may accept another, so all identities are tried
// before moving on.
func (uc *updateUseCase) downloadTarget(ctx context.Context, plan *model.UpdatePlan, target model.DownloadTarget) model.Outcome {
	logger := ctxlog.From(ctx)
	dest := filepath.Join(plan.DatabaseDir, target.Name)

	for _, m := range plan.Mirrors {
		fileURL := strings.TrimSuffix(m, "/") + "/" + target.Name

		var lastErr error
		for i, identity := range plan.Identities {
			size, err := uc.attempt(ctx, fileURL, identity, dest)
			if err == nil {
				logger.Info("Downloaded database file",
					"file", target.Name,
					"size", bytefmt.FormatBytes(size),
					"mirror", redactURL(m),
					"identity", identity,
				)
				return model.Outcome{
					Target:    target,
					Succeeded: true,
					SizeBytes: size,
					Mirror:    m,
					Identity:  identity,
				}
			}

			lastErr = err
			if ctx.Err() != nil {
				break
			}
			if i < len(plan.Identities)-1 {
				logger.Debug("Attempt failed, trying next identity",
					"file", target.Name, "mirror", redactURL(m), "identity", identity, "error", err)
			}
		}

		if errors.Is(lastErr, interfaces.ErrBlocked) {
			logger.Warn("Mirror refused every identity, you may be blocked by its CDN",
				"file", target.Name, "mirror", redactURL(m), "error", lastErr,
				"hint", "wait an hour before trying again")
		} else {
			logger.Warn("Mirror exhausted",
				"file", target.Name, "mirror", redactURL(m), "error", lastErr)
		}

		if ctx.Err() != nil {
			break
		}
	}

	logger.Warn("File failed on all mirrors", "file", target.Name, "required", target.Required)
	return model.Outcome{Target: target}
}

// attempt downloads fileURL into a staging file next to dest and moves
// it into place once it is known to be non-empty. A failed attempt
// leaves whatever copy of dest was already on disk untouched.
func (uc *updateUseCase) attempt(ctx context.Context, fileURL, identity, dest string) (int64, error) {
	body, err := uc.transport.Fetch(ctx, fileURL, identity)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create staging file", goerr.V("path", part))
	}

	size, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(part)
		return 0, goerr.Wrap(err, "failed to write staging file", goerr.V("path", part))
	}
	if size == 0 {
		os.Remove(part)
		return 0, errEmptyDownload
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return 0, goerr.Wrap(err, "failed to move downloaded file into place", goerr.V("path", dest))
	}
	return size, nil
}

// redactURL strips any password from a URL before it reaches a log
// line. The URL handed to the transport keeps its credentials.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

func redactURLs(raws []string) []string {
	out := make([]string, len(raws))
	for i, raw := range raws {
		out[i] = redactURL(raw)
	}
	return out
}

// missingRequired re-checks the filesystem after the run: a required
// file that exists with nonzero size counts as present no matter how
// its download went. Zero-byte leftovers are removed on sight.
func missingRequired(dir string, targets []model.DownloadTarget) []string {
	var missing []string
	for _, target := range targets {
		if !target.Required {
			continue
		}
		path := filepath.Join(dir, target.Name)
		info, err := os.Stat(path)
		if err != nil {
			missing = append(missing, target.Name)
			continue
		}
		if info.Size() == 0 {
			os.Remove(path)
			missing = append(missing, target.Name)
		}
	}
	return missing
}
