package builtin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

func enabledShellConfig() map[string]any {
	return map[string]any{
		"enabled":          true,
		"timeout_seconds":  float64(10),
		"max_output_bytes": float64(4096),
	}
}

func TestShellConnectDisabled(t *testing.T) {
	it := NewShell(map[string]any{"enabled": false})
	err := it.Connect(context.Background())
	if err == nil {
		t.Fatalf("expected connect to fail when disabled")
	}
	if !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("error = %v", err)
	}
}

func TestShellConnectUnsupportedPlatform(t *testing.T) {
	it := NewShell(enabledShellConfig())
	it.goos = "windows"

	err := it.Connect(context.Background())
	var cerr *integration.ConnectError
	if err == nil || !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if !strings.Contains(cerr.Reason, "unsupported platform") {
		t.Fatalf("reason = %q", cerr.Reason)
	}
}

func TestShellConnectMissingInterpreter(t *testing.T) {
	it := NewShell(enabledShellConfig())
	it.goos = "linux"
	it.lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}
	if err := it.Connect(context.Background()); err == nil {
		t.Fatalf("expected connect to fail without bash")
	}
}

func TestShellRun(t *testing.T) {
	it := NewShell(enabledShellConfig())
	if err := it.Connect(context.Background()); err != nil {
		t.Skipf("no usable shell on this host: %v", err)
	}

	res := it.ExecuteSkill(context.Background(), "shell_run", map[string]any{"cmd": "echo hello"})
	if !res.Success || res.Output != "hello" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestShellRunFailure(t *testing.T) {
	it := NewShell(enabledShellConfig())
	if err := it.Connect(context.Background()); err != nil {
		t.Skipf("no usable shell on this host: %v", err)
	}

	res := it.ExecuteSkill(context.Background(), "shell_run", map[string]any{"cmd": "false"})
	if res.Success {
		t.Fatalf("expected failure for non-zero exit")
	}
	if !strings.Contains(res.Output, "Command failed") {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestShellRunMissingCmd(t *testing.T) {
	it := NewShell(enabledShellConfig())
	res := it.ExecuteSkill(context.Background(), "shell_run", map[string]any{})
	if res.Success || !strings.Contains(res.Output, "Missing required parameter") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestShellNotifyUnsupported(t *testing.T) {
	it := NewShell(enabledShellConfig())
	it.goos = "plan9"
	res := it.ExecuteSkill(context.Background(), "shell_notify", map[string]any{"title": "t", "message": "m"})
	if res.Success || !strings.Contains(res.Output, "not supported") {
		t.Fatalf("unexpected result: %+v", res)
	}
}
