// Package version reports which ampwatch build is running.
//
// The version string reaches users in three places: `ampwatch version`, the
// /healthz endpoint and the mDNS TXT record, so all three read it from Get.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Release builds set these at link time:
//
//	go build -ldflags="-X github.com/muurk/ampwatch/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/ampwatch/internal/version.Commit=1a2b3c4" ./cmd/ampwatch
var (
	Version = ""
	Commit  = ""
)

const (
	devVersion    = "dev"
	unknownCommit = "unknown"
	shortHashLen  = 7
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	Modified  bool      // built from a dirty work tree
	BuildTime time.Time // commit time, zero when unknown
	GoVersion string
}

var (
	once    sync.Once
	current Info
)

// Get returns the build information, resolved once per process.
// Link-time values win over the module and VCS data embedded by the Go toolchain.
func Get() Info {
	once.Do(func() {
		bi, _ := debug.ReadBuildInfo()
		current = resolve(Version, Commit, bi)
	})
	return current
}

func resolve(version, commit string, bi *debug.BuildInfo) Info {
	info := Info{Version: version, Commit: commit}

	if bi != nil {
		info.GoVersion = bi.GoVersion
		// go install module@v0.3.0 records the module version
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = shortHash(s.Value)
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			case "vcs.time":
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildTime = t
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = devVersion
		if !info.BuildTime.IsZero() {
			info.Version += "-" + info.BuildTime.UTC().Format("20060102")
		}
	}
	if info.Commit == "" {
		info.Commit = unknownCommit
	}
	return info
}

func shortHash(rev string) string {
	if len(rev) > shortHashLen {
		return rev[:shortHashLen]
	}
	return rev
}

// String renders the version line printed by `ampwatch version`.
func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "-dirty"
	}
	parts := []string{"commit " + commit}
	if !i.BuildTime.IsZero() {
		parts = append(parts, "committed "+i.BuildTime.UTC().Format(time.DateOnly))
	}
	if i.GoVersion != "" {
		parts = append(parts, i.GoVersion)
	}
	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(parts, ", "))
}

// UserAgent identifies ampwatch to remote instances and in the mDNS TXT record.
func UserAgent() string {
	return "ampwatch/" + Get().Version
}
