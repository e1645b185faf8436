package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

func ShellSchema() *capability.Schema {
	return &capability.Schema{
		ID:       "shell",
		Name:     "Local Shell",
		Category: capability.CategorySystem,
		ConfigFields: []capability.ConfigField{
			{Key: "enabled", Type: capability.FieldBoolean, Default: "false"},
			{Key: "timeout_seconds", Type: capability.FieldNumber, Default: "30"},
			{Key: "max_output_bytes", Type: capability.FieldNumber, Default: "262144"},
		},
		Skills: []capability.Skill{
			{
				ID:          "shell_run",
				Name:        "Run Command",
				Description: "Run a shell command locally and return stdout/stderr.",
				Params: []capability.Param{
					{Name: "cmd", Type: "string", Required: true, Description: "Command to execute."},
				},
			},
			{
				ID:          "shell_notify",
				Name:        "Desktop Notification",
				Description: "Show a desktop notification on the local machine.",
				Params: []capability.Param{
					{Name: "title", Type: "string", Required: true, Description: "Notification title."},
					{Name: "message", Type: "string", Required: true, Description: "Notification body."},
				},
			},
		},
	}
}

// ShellIntegration is the platform-capability integration: connect checks
// the current OS is supported and a shell interpreter is on PATH instead
// of probing a network upstream.
type ShellIntegration struct {
	*integration.Base

	enabled        bool
	timeout        time.Duration
	maxOutputBytes int

	// goos and lookPath are seams for tests forcing platform outcomes.
	goos     string
	lookPath func(string) (string, error)
}

func NewShell(cfg map[string]any) *ShellIntegration {
	enabled, _ := cfg["enabled"].(bool)
	timeoutSec, _ := cfg["timeout_seconds"].(float64)
	maxOut, _ := cfg["max_output_bytes"].(float64)

	it := &ShellIntegration{
		enabled:        enabled,
		timeout:        time.Duration(timeoutSec) * time.Second,
		maxOutputBytes: int(maxOut),
		goos:           runtime.GOOS,
		lookPath:       exec.LookPath,
	}
	if it.timeout <= 0 {
		it.timeout = 30 * time.Second
	}
	if it.maxOutputBytes <= 0 {
		it.maxOutputBytes = 256 * 1024
	}
	it.Base = integration.NewBase(ShellSchema(), it.checkPlatform)
	it.Handle("shell_run", it.run)
	it.Handle("shell_notify", it.notify)
	return it
}

func (it *ShellIntegration) checkPlatform(ctx context.Context) (string, error) {
	if !it.enabled {
		return "", integration.Connectf("shell", nil, "shell integration is disabled (set integrations.shell.enabled=true)")
	}
	switch it.goos {
	case "linux", "darwin":
	default:
		return "", integration.Connectf("shell", nil, "unsupported platform %s", it.goos)
	}
	if _, err := it.lookPath("bash"); err != nil {
		return "", integration.Connectf("shell", err, "bash not found on PATH")
	}
	return "", nil
}

func (it *ShellIntegration) run(ctx context.Context, args map[string]any) integration.Result {
	cmdStr := stringParam(args, "cmd")
	if cmdStr == "" {
		return integration.Failf("Missing required parameter: cmd")
	}

	runCtx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-lc", cmdStr)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return integration.Failf("Command timed out after %s", it.timeout)
	}

	out := strings.TrimSpace(clip(stdout.String(), it.maxOutputBytes))
	errOut := strings.TrimSpace(clip(stderr.String(), it.maxOutputBytes))
	if err != nil {
		diag := errOut
		if diag == "" {
			diag = err.Error()
		}
		return integration.Failf("Command failed: %s", diag)
	}
	if out == "" {
		out = "(no output)"
	}
	return integration.TextData(out, map[string]string{"stdout": out, "stderr": errOut})
}

func (it *ShellIntegration) notify(ctx context.Context, args map[string]any) integration.Result {
	title := stringParam(args, "title")
	message := stringParam(args, "message")
	if title == "" || message == "" {
		return integration.Failf("Missing required parameter: title and message are required")
	}

	runCtx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	var cmd *exec.Cmd
	switch it.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		cmd = exec.CommandContext(runCtx, "osascript", "-e", script)
	case "linux":
		cmd = exec.CommandContext(runCtx, "notify-send", title, message)
	default:
		return integration.Failf("Notifications are not supported on %s", it.goos)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return integration.Failf("Notification failed: %s", strings.TrimSpace(string(out)))
	}
	return integration.Text("Notification sent")
}

func clip(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
