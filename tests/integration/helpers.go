//go:build integration

package integration

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// isCI returns true if running in a CI environment.
func isCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "TRAVIS", "JENKINS_URL"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// skipOrFailOnMissingKey skips locally and fails in CI unless
// COVERKIT_SKIP_INTEGRATION is set.
func skipOrFailOnMissingKey(t *testing.T, keyName string) {
	t.Helper()
	if isCI() && os.Getenv("COVERKIT_SKIP_INTEGRATION") == "" {
		t.Fatalf("%s not set (CI environment detected; set COVERKIT_SKIP_INTEGRATION=1 to skip)", keyName)
	}
	t.Skipf("%s not set", keyName)
}

func getGeminiKey(t *testing.T) string {
	t.Helper()
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		skipOrFailOnMissingKey(t, "GEMINI_API_KEY")
	}
	return key
}

type cliResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// cliEnv is an isolated home directory for one test's keystore and config.
type cliEnv struct {
	home string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{home: t.TempDir()}
}

// run executes the coverkit binary with an optional stdin.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	if cliBinary == "" {
		t.Fatal("CLI binary not built - TestMain may not have run")
	}

	cmd := exec.Command(cliBinary, args...)
	cmd.Dir = e.home
	cmd.Env = append(os.Environ(),
		"HOME="+e.home,
		"USERPROFILE="+e.home,
		"COVERKIT_MASTER_KEY=integration-test-master-key",
		"COVERKIT_OUTPUT_DIR="+filepath.Join(e.home, "covers"),
	)
	if stdin != "" {
		cmd.Stdin = bytes.NewBufferString(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run CLI: %v", err)
		}
	}

	return cliResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// writeSwatch writes a small solid-color PNG for use as a reference image.
func writeSwatch(t *testing.T, dir string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "swatch.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
