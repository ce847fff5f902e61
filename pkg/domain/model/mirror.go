package model

// DefaultMirrors returns the mirror base URLs tried in order. The
// official CDN comes first; the Microsoft package mirror serves the same
// files and tends to survive the CDN's rate limiting.
func DefaultMirrors() []string {
	return []string{
		"https://database.clamav.net",
		"https://packages.microsoft.com/clamav",
	}
}

// DefaultIdentities returns the User-Agent values tried in order for
// each mirror. The CDN filters on client identity, so after our own
// identity we fall back to agents the CDN is known to accept.
func DefaultIdentities() []string {
	return []string{
		"ClamWin-Updater/2.0",
		"CVDUPDATE/1.1.2",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	}
}
