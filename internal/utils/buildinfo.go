package utils

import (
	"runtime/debug"
)

const (
	unknownVersion       = "unknown"
	develVersion         = "(devel)"
	revisionSettingKey   = "vcs.revision"
	modifiedSettingKey   = "vcs.modified"
	shortRevisionLength  = 12
	modifiedVersionLabel = "-dirty"
)

// Version is set at link time with -ldflags "-X github.com/temirov/sitemapper/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the linked version, then the module version
// recorded in the build info, then the VCS revision stamped by the Go toolchain.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	return revisionFromSettings(buildInfo.Settings)
}

func revisionFromSettings(settings []debug.BuildSetting) string {
	revision := ""
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case revisionSettingKey:
			revision = setting.Value
		case modifiedSettingKey:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	if modified {
		revision += modifiedVersionLabel
	}
	return revision
}
