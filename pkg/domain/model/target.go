package model

// DownloadTarget is a single signature database file to fetch.
type DownloadTarget struct {
	Name     string // File name, appended to the mirror base URL
	Required bool   // Absence after the run fails the whole update
}

// DefaultTargets returns the ClamAV database files cvdget maintains.
// The three .cvd files are mandatory for a working scanner; mirrors.dat
// is freshclam bookkeeping and nice to have at best.
func DefaultTargets() []DownloadTarget {
	return []DownloadTarget{
		{Name: "main.cvd", Required: true},
		{Name: "daily.cvd", Required: true},
		{Name: "bytecode.cvd", Required: true},
		{Name: "mirrors.dat", Required: false},
	}
}
