package model

// UpdatePlan carries everything one update run needs. Mirror, identity
// and target lists are passed in explicitly rather than read from
// globals so tests can inject fakes.
type UpdatePlan struct {
	DatabaseDir string           // Directory the database files land in
	Mirrors     []string         // Mirror base URLs, tried in order
	Identities  []string         // User-Agent values, tried in order per mirror
	Targets     []DownloadTarget // Files to fetch, in order
	Backup      bool             // Copy pre-existing files aside before overwriting
	BackupURL   string           `masq:"secret"` // Backup bucket URL; may embed credentials
}
