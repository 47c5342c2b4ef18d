package loom

// Set at release time via -ldflags "-X github.com/r3n/loom.Version=...".
var (
	Version   = "0.3.0-dev"
	BuildDate = "unknown"
)
