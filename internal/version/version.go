package version

// Version is the release of the argo-ohlcv tools.
// Set at build time with
// -ldflags "-X github.com/rxtech-lab/argo-ohlcv/internal/version.Version=1.2.3".
// "main" marks a development build.
var Version = "v0.1.0"

// GetVersion returns the current version of the tools.
func GetVersion() string {
	return Version
}
