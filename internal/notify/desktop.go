package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier delivers a fired reminder outside the terminal.
type Notifier interface {
	Send(title, body string) error
}

type NoopNotifier struct{}

func (NoopNotifier) Send(string, string) error { return nil }

// DesktopNotifier shells out to notify-send on Linux and osascript on macOS.
// Other platforms are silently skipped.
type DesktopNotifier struct{}

func (DesktopNotifier) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func NewNotifier(desktop bool) Notifier {
	if desktop {
		return DesktopNotifier{}
	}
	return NoopNotifier{}
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
