// Package version provides build version information embedding for
// fixturekit binaries.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/fixturekit/version.Version=1.0.0"
package version
