// Package testsupport builds the neptune binary for script tests and prepares
// their environment.
package testsupport

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/sandeepkv93/neptune/internal/model"
)

var (
	buildOnce   sync.Once
	neptunePath string
	buildErr    error
)

// BuildNeptune builds the neptune binary once and returns its path.
func BuildNeptune(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "neptune-bin-")
		if err != nil {
			buildErr = err
			return
		}

		neptunePath = filepath.Join(binDir, "neptune")
		cmd := exec.Command("go", "build", "-o", neptunePath, "./cmd/neptune")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build neptune: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return neptunePath
}

// SetupScriptEnv points NEPTUNE at the built binary and isolates the config,
// state and journal under the script's work directory.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("NEPTUNE", BuildNeptune(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	stateDir := filepath.Join(homeDir, ".local", "state", "neptune")
	configDir := filepath.Join(homeDir, ".config")
	for _, dir := range []string{stateDir, filepath.Join(configDir, "neptune")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("XDG_CONFIG_HOME", configDir)
	env.Setenv("NEPTUNE_STATE_DIR", stateDir)
	env.Setenv("NEPTUNE_CONFIG", filepath.Join(configDir, "neptune", "config.toml"))
	env.Setenv("NEPTUNE_FILE", filepath.Join(env.WorkDir, "tasks.todo"))
	return nil
}

// CmdTaskCount asserts how many tasks a collection of a document holds.
func CmdTaskCount(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 3 {
		ts.Fatalf("usage: taskcount FILE tasks|completed|skipped N")
	}
	want, err := strconv.Atoi(args[2])
	if err != nil {
		ts.Fatalf("bad count %q", args[2])
	}
	doc, err := model.Decode([]byte(ts.ReadFile(args[0])))
	if err != nil {
		ts.Fatalf("parse %s: %v", args[0], err)
	}
	var got int
	switch args[1] {
	case "tasks":
		got = len(doc.Tasks)
	case "completed":
		got = len(doc.Completed)
	case "skipped":
		got = len(doc.Skipped)
	default:
		ts.Fatalf("unknown collection %q", args[1])
	}
	if (got == want) == neg {
		ts.Fatalf("%s in %s: got %d, want %d", args[1], args[0], got, want)
	}
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
