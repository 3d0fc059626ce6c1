package cmd

// version is set at build time using -ldflags "-X github.com/mozilla-ai/urlprobe/internal/cmd.version=...".
var version = "dev"

// AppName is the name of the application as presented to users.
const AppName = "urlprobe"

// Version returns the version of the application.
func Version() string {
	return version
}
