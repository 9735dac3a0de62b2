package version

// Version is overridden at build time via -ldflags "-X".
var Version = "0.0.0"

func GetVersion() string {
	return Version
}
