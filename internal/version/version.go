// Package version holds the build version, overridden at link time with
// -ldflags "-X github.com/ndewijer/pocketprofit-ledger/internal/version.Version=...".
package version

// Version is the application version.
var Version = "dev"
