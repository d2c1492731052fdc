// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/comet-subscriber/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/comet-subscriber/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/comet-subscriber/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/subscriber
package version

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns a formatted version string, e.g. "1.0.0 (abc123) built 2026-01-02T03:04:05Z".
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
