package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v3"
)

// Database holds database directory configuration
type Database struct {
	Dir      string
	NoBackup bool
	BackupTo string
}

// Flags returns CLI flags for database configuration
func (c *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-dir",
			Usage:       "Directory the database files are written to",
			Value:       DefaultDatabaseDir(),
			Destination: &c.Dir,
			Sources:     cli.EnvVars("CVDGET_DB_DIR"),
		},
		&cli.BoolFlag{
			Name:        "no-backup",
			Usage:       "Skip backing up existing database files",
			Value:       false,
			Destination: &c.NoBackup,
			Sources:     cli.EnvVars("CVDGET_NO_BACKUP"),
		},
		&cli.StringFlag{
			Name:        "backup-to",
			Usage:       "Bucket URL for backups (default: backup/ inside the database directory)",
			Destination: &c.BackupTo,
			Sources:     cli.EnvVars("CVDGET_BACKUP_TO"),
		},
	}
}

// DefaultDatabaseDir returns the conventional database location:
// %ProgramData%\.clamwin\db on Windows, ~/.clamwin/db elsewhere.
func DefaultDatabaseDir() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("ProgramData")
		if base == "" {
			base = `C:\ProgramData`
		}
		return filepath.Join(base, ".clamwin", "db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".clamwin", "db")
	}
	return filepath.Join(home, ".clamwin", "db")
}
