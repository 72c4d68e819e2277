package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"bardo/internal/config"
	"bardo/internal/confluence"
	"bardo/pkg/logger"
)

const testConfigYAML = `confluence:
  base_url: http://example
  username: u
  api_token: t
  space_key: DOCS
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// withMockClient routes newConfluenceClient to mc for the rest of the test.
func withMockClient(t *testing.T, mc *confluence.MockClient) {
	t.Helper()
	orig := newConfluenceClient
	newConfluenceClient = func(*config.Config, *logger.Logger) (confluence.ConfluenceClient, error) {
		return mc, nil
	}
	t.Cleanup(func() { newConfluenceClient = orig })
}

// resetFlags puts every package-level flag variable back to its default.
// Cobra keeps parsed values between Execute calls.
func resetFlags() {
	configFile, verbose, logFile = "", false, ""
	versionShort = false
	versionJSON = false
	getPageSpace, getPageIDOrTitle, getPageFormat = "", "", "storage"
	listSpace, listParent = "", ""
	uploadFile, uploadSpace, uploadParent, uploadNoImages = "", "", "", false
	attachPage, attachList = "", false
	syncDryRun, syncForce, syncDir, syncSpace = false, false, "", ""
	apiData, apiHeaders, apiJQ, apiInclude = "", nil, "", false
	configureSets, configureYes, configurePrint, configureNonInteractive = nil, false, false, false

	unmark := func(f *pflag.Flag) { f.Changed = false }
	rootCmd.PersistentFlags().VisitAll(unmark)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(unmark)
	}
}

// runCmdForTest executes the root command with args and returns everything
// written to the command's output.
func runCmdForTest(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
