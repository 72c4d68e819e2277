package commands

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bardo/internal/config"
)

func TestConfigureNonInteractiveWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := runCmdForTest(t, "configure", "-c", path, "--non-interactive",
		"--set", "confluence.base_url=https://example.atlassian.net/wiki",
		"--set", "confluence.username=me@example.com",
		"--set", "confluence.api_token=secret",
		"--set", "confluence.space_key=DOCS",
		"--set", "client.timeout=45s",
		"--set", "client.rate_limit.rps=5",
		"--set", "client.rate_limit.burst=10",
		"--set", "images.supported_formats=png, svg",
	)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !strings.Contains(out, "Configuration saved to "+path) {
		t.Errorf("unexpected output: %q", out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Confluence.SpaceKey != "DOCS" || cfg.Client.Timeout != 45*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Client.RateLimit.RPS != 5 || cfg.Client.RateLimit.Burst != 10 {
		t.Errorf("unexpected rate limit: %+v", cfg.Client.RateLimit)
	}
	if strings.Join(cfg.Images.SupportedFormats, ",") != "png,svg" {
		t.Errorf("unexpected formats: %v", cfg.Images.SupportedFormats)
	}
}

func TestConfigureEditsExistingFile(t *testing.T) {
	path := writeTempConfig(t, testConfigYAML)

	if _, err := runCmdForTest(t, "configure", "-c", path, "--non-interactive", "--set", "confluence.parent_page=Home"); err != nil {
		t.Fatalf("configure: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Confluence.ParentPage != "Home" || cfg.Confluence.Username != "u" {
		t.Errorf("existing values not preserved: %+v", cfg.Confluence)
	}
}

func TestConfigurePrint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCmdForTest(t, "configure", "-c", path, "--non-interactive", "--print",
		"--set", "confluence.base_url=http://wiki.local",
		"--set", "confluence.username=u",
		"--set", "confluence.api_token=t",
	)
	if err != nil {
		t.Fatalf("configure --print: %v", err)
	}
	if !strings.Contains(out, "base_url: http://wiki.local") {
		t.Errorf("expected YAML output, got %q", out)
	}
	if _, err := config.LoadForListPages(path); err == nil {
		t.Error("--print must not write the file")
	}
}

func TestConfigureErrors(t *testing.T) {
	testCases := []struct {
		name string
		sets []string
		want string
	}{
		{"unknown key", []string{"mermaid.mode=preserve"}, "unsupported key 'mermaid.mode'"},
		{"no equals", []string{"confluence.base_url"}, "expected key=value"},
		{"bad duration", []string{"client.timeout=soon"}, "set client.timeout"},
		{"fails validation", []string{"confluence.base_url=http://x"}, "confluence.username is required"},
		{"burst without rps", []string{
			"confluence.base_url=http://x", "confluence.username=u", "confluence.api_token=t",
			"client.rate_limit.rps=2",
		}, "client.rate_limit.burst is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := []string{"configure", "-c", filepath.Join(t.TempDir(), "c.yaml"), "--non-interactive", "--yes"}
			for _, s := range tc.sets {
				args = append(args, "--set", s)
			}
			_, err := runCmdForTest(t, args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
