package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func buildInfo(mainVersion string, settings ...string) *debug.BuildInfo {
	bi := &debug.BuildInfo{GoVersion: "go1.24.10", Main: debug.Module{Version: mainVersion}}
	for i := 0; i+1 < len(settings); i += 2 {
		bi.Settings = append(bi.Settings, debug.BuildSetting{Key: settings[i], Value: settings[i+1]})
	}
	return bi
}

func TestResolve(t *testing.T) {
	const rev = "1a2b3c4d5e6f7a8b9c0d"

	tests := []struct {
		name         string
		version      string
		commit       string
		bi           *debug.BuildInfo
		wantVersion  string
		wantCommit   string
		wantModified bool
	}{
		{
			name:        "no build info",
			wantVersion: "dev",
			wantCommit:  "unknown",
		},
		{
			name:        "link-time values win",
			version:     "v0.3.0",
			commit:      "abc1234",
			bi:          buildInfo("v0.2.0", "vcs.revision", rev),
			wantVersion: "v0.3.0",
			wantCommit:  "abc1234",
		},
		{
			name:        "go install records the module version",
			bi:          buildInfo("v0.2.1"),
			wantVersion: "v0.2.1",
			wantCommit:  "unknown",
		},
		{
			name:         "work tree build",
			bi:           buildInfo("(devel)", "vcs.revision", rev, "vcs.modified", "true", "vcs.time", "2026-10-16T09:30:00Z"),
			wantVersion:  "dev-20261016",
			wantCommit:   "1a2b3c4",
			wantModified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.bi)
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", got.Commit, tt.wantCommit)
			}
			if got.Modified != tt.wantModified {
				t.Errorf("Modified = %v, want %v", got.Modified, tt.wantModified)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "v0.3.0",
		Commit:    "1a2b3c4",
		Modified:  true,
		BuildTime: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		GoVersion: "go1.24.10",
	}
	want := "v0.3.0 (commit 1a2b3c4-dirty, committed 2026-10-16, go1.24.10)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if got := (Info{Version: "dev", Commit: "unknown"}).String(); got != "dev (commit unknown)" {
		t.Errorf("String() = %q", got)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" {
		t.Fatalf("Get() = %+v, want version and commit populated", info)
	}
	if !strings.HasPrefix(UserAgent(), "ampwatch/") || !strings.HasSuffix(UserAgent(), info.Version) {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
