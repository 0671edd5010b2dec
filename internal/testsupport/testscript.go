package testsupport

import (
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/rogpeppe/go-internal/testscript"

	"github.com/amonks/todosync/remote"
)

// ScriptAPIKey is the key the in-process remote service expects from scripts.
const ScriptAPIKey = "script-key"

var (
	buildOnce sync.Once
	tlPath    string
	buildErr  error
)

// BuildTL builds the tl binary once and returns its path.
func BuildTL(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "tl-bin-")
		if err != nil {
			buildErr = err
			return
		}

		tlPath = filepath.Join(binDir, "tl")
		cmd := exec.Command("go", "build", "-o", tlPath, "./cmd/tl")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build tl: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return tlPath
}

// SetupScriptEnv builds tl, gives the script a private HOME, and points it
// at a fresh in-process remote service.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TL", BuildTL(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	server := remote.NewServer(remote.ServerOptions{APIKey: ScriptAPIKey})
	ts := httptest.NewServer(server.Handler())
	env.Defer(ts.Close)

	env.Setenv("TL_ADDR", ts.URL)
	env.Setenv("TL_API_KEY", ScriptAPIKey)
	env.Setenv("TL_REDIS_URL", "")
	env.Setenv("TL_DEBUG", "")
	env.Setenv("NO_COLOR", "1")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTitleID finds an entry by title in a JSON array (the output of
// `tl todolist list --json` or `tl task list --json`) and stores its ID
// in an env var.
func CmdTitleID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("titleid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: titleid FILE TITLE VAR")
	}

	var items []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	data := ts.ReadFile(args[0])
	if err := sonic.UnmarshalString(data, &items); err != nil {
		ts.Fatalf("parse list: %v", err)
	}

	title := args[1]
	for _, item := range items {
		if item.Title == title {
			ts.Setenv(args[2], item.ID)
			return
		}
	}

	ts.Fatalf("entry with title %q not found", title)
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
