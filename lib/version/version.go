// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags -X at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/freqd/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Empty values fall back to the VCS stamp in the binary's build info.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	GitDirty  = ""
	BuildTime = ""
)

// Build describes the running binary.
type Build struct {
	Version string
	Commit  string
	Dirty   bool
	Time    string
	Go      string
}

// Current returns the running binary's build description.
func Current() Build {
	info, _ := debug.ReadBuildInfo()
	return resolve(info)
}

// resolve merges the injected variables over info, which may be nil.
func resolve(info *debug.BuildInfo) Build {
	build := Build{
		Version: Version,
		Commit:  GitCommit,
		Dirty:   GitDirty == "true",
		Time:    BuildTime,
		Go:      runtime.Version(),
	}
	if info == nil {
		return build.withUnknowns()
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if build.Commit == "" {
				build.Commit = setting.Value[:min(7, len(setting.Value))]
			}
		case "vcs.modified":
			if GitDirty == "" {
				build.Dirty = setting.Value == "true"
			}
		case "vcs.time":
			if build.Time == "" {
				build.Time = setting.Value
			}
		}
	}
	return build.withUnknowns()
}

func (b Build) withUnknowns() Build {
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Time == "" {
		b.Time = "unknown"
	}
	return b
}

// String formats b as "0.1.0 (abc1234-dirty, 2026-10-19T00:00:00Z)".
func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.Time)
}

func (b Build) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", b.Version),
		slog.String("commit", b.Commit),
		slog.Bool("dirty", b.Dirty),
		slog.String("go", b.Go),
	)
}

// Write prints the --version text for binary.
func Write(w io.Writer, binary string) {
	build := Current()
	fmt.Fprintf(w, "%s %s\n  Go: %s\n  Platform: %s/%s\n", binary, build, build.Go, runtime.GOOS, runtime.GOARCH)
}
