package integration

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runResult captures one invocation of the berth binary.
type runResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// runBerth executes the built binary in dir and returns captured output
// and the exit code. Line endings are normalized (Windows CRLF -> LF) so
// assertions and snapshots compare the same way on every platform. env
// entries are appended to the inherited environment.
func runBerth(t *testing.T, dir string, stdin io.Reader, env []string, args ...string) runResult {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	// NO_COLOR pins the summary to plain text so assertions do not depend
	// on the terminal capabilities of the machine running the tests.
	cmd.Env = append(os.Environ(), "GOCOVERDIR="+coverageDir, "NO_COLOR=1")
	cmd.Env = append(cmd.Env, env...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("command failed to start: %v", err)
		}
	}

	return runResult{
		stdout:   strings.ReplaceAll(stdoutBuf.String(), "\r\n", "\n"),
		stderr:   strings.ReplaceAll(stderrBuf.String(), "\r\n", "\n"),
		exitCode: exitCode,
	}
}

// writeBuildDir creates a service directory under root holding a build
// file and a .berth.toml. The service name is derived from the directory
// name, so dir keeps snapshots deterministic across temp directories.
// The config file is written even when empty so cascading discovery
// stops inside the test tree instead of picking up configs from the
// surrounding filesystem.
func writeBuildDir(t *testing.T, root, dir, filename, dockerfile, config string) string {
	t.Helper()

	serviceDir := filepath.Join(root, dir)
	if err := os.MkdirAll(serviceDir, 0o750); err != nil {
		t.Fatalf("create service directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(serviceDir, filename), []byte(dockerfile), 0o644); err != nil {
		t.Fatalf("write build file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(serviceDir, ".berth.toml"), []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return serviceDir
}

// readGenerated reads the compose document the binary wrote.
func readGenerated(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated document: %v", err)
	}
	return string(data)
}

// successLine is the message printed after a document is written to path.
func successLine(path string) string {
	return "Successfully generated docker-compose.yml at " + path + "\n"
}
