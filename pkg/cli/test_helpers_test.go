package cli

import (
	"bytes"
	"strings"
	"testing"

	"aggcsv/internal/config"
)

// cliResult holds the streams and exit code of one CLI invocation.
type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI runs the CLI in-process with stdin set to input. It isolates HOME
// and clears AGGCSV_* variables so no real configuration is loaded.
func runCLI(t *testing.T, input string, args ...string) cliResult {
	t.Helper()
	isolateEnv(t)
	return runCLIKeepEnv(t, input, args...)
}

// runCLIKeepEnv runs the CLI without resetting HOME or the environment.
func runCLIKeepEnv(t *testing.T, input string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(input), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{config.EnvSeparator, config.EnvBanners, config.EnvStrictJSON, config.EnvLogLevel} {
		t.Setenv(k, "")
	}
}
