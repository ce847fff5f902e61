package types

// Version is the release version of cvdget. Overridden at build time via
// -ldflags "-X github.com/cvd-tools/cvdget/pkg/domain/types.Version=...".
var Version = "2.0.0"
