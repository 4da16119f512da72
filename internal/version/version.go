package version

// Version is overridden at build time with
// -ldflags "-X github.com/lynnxiaofeng/parkyoga/internal/version.Version=...".
var Version = "dev"

func UserAgent() string {
	return "parkyoga/" + Version
}
