package api

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Version and VersionCommit hold the version information
var (
	Version       = "0.1.0"
	VersionCommit = ""
	VersionDate   = ""
)

func init() {
	if i, ok := debug.ReadBuildInfo(); ok {
		settings := lo.SliceToMap(i.Settings, func(s debug.BuildSetting) (string, string) {
			return s.Key, s.Value
		})
		if v, ok := settings["vcs.revision"]; ok && VersionCommit == "" {
			VersionCommit = v
		}
		if v, ok := settings["vcs.time"]; ok && VersionDate == "" {
			VersionDate = v
		}
	}
}
