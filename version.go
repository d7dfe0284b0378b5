package conveyor

import (
	"runtime/debug"

	"github.com/indigo-web/conveyor/config"
)

// Version of the module the binary was built from, or "devel" if unknown.
var Version = readVersion()

// VersionString is the default Server response header value.
var VersionString = banner(config.Default())

func banner(cfg *config.Config) string {
	return cfg.HTTP.ServerName + " " + Version
}

func readVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}

	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}

	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "devel"
}

const modulePath = "github.com/indigo-web/conveyor"
