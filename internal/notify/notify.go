package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupported is returned on platforms without a known notifier.
var ErrUnsupported = errors.New("desktop notifications are not supported on this platform")

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Desktop shells out to notify-send (Linux) or osascript (macOS).
type Desktop struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, run: runCommand}
}

func (d *Desktop) Notify(ctx context.Context, title, message string) error {
	name, args, err := command(d.goos, title, message)
	if err != nil {
		return err
	}
	if err := d.run(ctx, name, args...); err != nil {
		return fmt.Errorf("sending notification with %s: %w", name, err)
	}
	return nil
}

// command returns the program and arguments that show a notification on goos.
func command(goos, title, message string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{"--app-name=todo", title, message}, nil
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleString(message), appleString(title))
		return "osascript", []string{"-e", script}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
}

// appleString quotes s as an AppleScript string literal.
func appleString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return err
}
