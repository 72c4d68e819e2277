package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	buildInfo := Get()

	if buildInfo.Version == "" {
		t.Error("Expected Version to be populated")
	}
	if buildInfo.GoVersion != runtime.Version() {
		t.Errorf("Expected GoVersion '%s', got '%s'", runtime.Version(), buildInfo.GoVersion)
	}

	expectedPlatform := runtime.GOOS + "/" + runtime.GOARCH
	if buildInfo.Platform != expectedPlatform {
		t.Errorf("Expected Platform '%s', got '%s'", expectedPlatform, buildInfo.Platform)
	}
}

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name      string
		buildInfo BuildInfo
		expected  []string
		absent    []string
	}{
		{
			name: "full",
			buildInfo: BuildInfo{
				Version:   "v0.3.0",
				GitCommit: "abc1234",
				BuildDate: "2026-01-02",
				GoVersion: "go1.24.4",
				Platform:  "linux/amd64",
			},
			expected: []string{"bardo version v0.3.0", "(abc1234)", "built on 2026-01-02", "go1.24.4 linux/amd64"},
		},
		{
			name: "dev build",
			buildInfo: BuildInfo{
				Version:   "dev",
				GoVersion: "go1.24.4",
				Platform:  "darwin/arm64",
			},
			expected: []string{"bardo version dev", "go1.24.4 darwin/arm64"},
			absent:   []string{"(", "built on"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.buildInfo.String()
			for _, want := range tt.expected {
				if !strings.Contains(result, want) {
					t.Errorf("Expected %q in %q", want, result)
				}
			}
			for _, notWant := range tt.absent {
				if strings.Contains(result, notWant) {
					t.Errorf("Did not expect %q in %q", notWant, result)
				}
			}
		})
	}
}

func TestFillFromBuildSettings(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	b := BuildInfo{Version: "dev"}
	b.fill(info)
	if b.Version != "v1.4.0" || b.GitCommit != "0123456-dirty" || b.BuildDate != "2026-03-04T05:06:07Z" {
		t.Errorf("Unexpected build info %+v", b)
	}

	pinned := BuildInfo{Version: "v2.0.0", GitCommit: "abc", BuildDate: "today"}
	pinned.fill(info)
	if pinned.Version != "v2.0.0" || pinned.GitCommit != "abc" || pinned.BuildDate != "today" {
		t.Errorf("Expected ldflags values to win, got %+v", pinned)
	}

	devel := BuildInfo{Version: "dev"}
	devel.fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if devel.Version != "dev" || devel.GitCommit != "" {
		t.Errorf("Expected devel build to stay 'dev', got %+v", devel)
	}
}

func TestProduct(t *testing.T) {
	if Product != "bardo-confluence" {
		t.Errorf("Expected product id 'bardo-confluence', got %q", Product)
	}
}
