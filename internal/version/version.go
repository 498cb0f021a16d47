package version

import "strings"

// Version is set at build time with:
// -ldflags "-X github.com/newmd/newmd/internal/version.Version=X.Y.Z"
// It mirrors the bundle's short version string and is compared against the
// store listing as-is.
var Version = "dev"

func Current() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}
