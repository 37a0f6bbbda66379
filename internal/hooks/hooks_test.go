package hooks

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts use sh")
	}
}

func TestInvokeEmptyCommand(t *testing.T) {
	for _, command := range []string{"", "   "} {
		result, err := Invoke(context.Background(), Options{Command: command, Event: "split"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Ran {
			t.Errorf("command %q should not run", command)
		}
	}
}

func TestInvokeReceivesSnapshotAndEnv(t *testing.T) {
	skipOnWindows(t)
	out := filepath.Join(t.TempDir(), "hook.out")
	t.Setenv("HOOK_OUT", out)

	result, err := Invoke(context.Background(), Options{
		Command:  `cat > "$HOOK_OUT"; echo "$TASKGRID_EVENT $TASKGRID_KEY" >> "$HOOK_OUT"`,
		Event:    "split",
		Key:      "taskGridV2",
		Snapshot: []byte(`{"root":{}}` + "\n"),
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Ran || result.ExitCode != 0 {
		t.Errorf("result: %+v", result)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\"root\":{}}\nsplit taskGridV2\n"
	if string(data) != want {
		t.Errorf("hook saw %q, want %q", data, want)
	}
}

func TestInvokeFailure(t *testing.T) {
	skipOnWindows(t)

	result, err := Invoke(context.Background(), Options{
		Command: "echo boom >&2; exit 42",
		Event:   "edit",
	})
	if err == nil {
		t.Fatal("expected error for failed hook")
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	if result.ExitCode != 42 {
		t.Errorf("ExitCode: got %d, want 42", result.ExitCode)
	}
	if result.Output != "boom" {
		t.Errorf("Output: got %q, want boom", result.Output)
	}
	if !strings.Contains(err.Error(), "42") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry code and output: %v", err)
	}
}

func TestInvokeWorkDir(t *testing.T) {
	skipOnWindows(t)
	workDir := t.TempDir()

	result, err := Invoke(context.Background(), Options{Command: "pwd -P", WorkDir: workDir})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want, err := filepath.EvalSymlinks(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if result.Output != want {
		t.Errorf("hook ran in %q, want %q", result.Output, want)
	}
}

func TestInvokeTimeout(t *testing.T) {
	skipOnWindows(t)

	start := time.Now()
	result, err := Invoke(context.Background(), Options{
		Command: "sleep 10",
		Event:   "clear",
		Timeout: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("hook was not stopped at the timeout")
	}
}

func TestExitCodeFromError(t *testing.T) {
	if code := exitCodeFromError(nil); code != 0 {
		t.Errorf("nil: got %d, want 0", code)
	}
	if code := exitCodeFromError(&os.PathError{Err: exec.ErrNotFound}); code != -1 {
		t.Errorf("non-exit error: got %d, want -1", code)
	}

	skipOnWindows(t)
	err := exec.Command("sh", "-c", "exit 7").Run()
	if code := exitCodeFromError(err); code != 7 {
		t.Errorf("exit error: got %d, want 7", code)
	}
}
