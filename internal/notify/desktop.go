package notify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/term"

	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	internalstrings "github.com/beemnet-bee/BeeSmartToDo/internal/strings"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

// PermissionKey is the kv key holding the desktop notification decision.
const PermissionKey = "notificationPermission"

// AppName is shown as the sender of desktop notifications.
const AppName = "BeeSmart"

// ErrNotInteractive is returned when permission must be asked but there is
// no terminal to ask on.
var ErrNotInteractive = errors.New("cannot ask for notification permission without a terminal")

// Prompter is used to ask the user for confirmation.
type Prompter interface {
	// Confirm asks the user a yes/no question and returns true if they say yes.
	Confirm(message string) (bool, error)
}

// StdioPrompter implements Prompter using stdin and stdout.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm asks the user a yes/no question.
func (p StdioPrompter) Confirm(message string) (bool, error) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "%s [y/n]: ", message)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false, err
	}
	switch internalstrings.NormalizeLowerTrimSpace(response) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// CommandRunner runs an external program.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// DesktopOptions configures a Desktop notifier.
type DesktopOptions struct {
	// KV persists the permission decision. Required.
	KV kv.Store

	// Prompter asks for permission. If nil, StdioPrompter is used and only
	// when stdin is a terminal.
	Prompter Prompter

	// GOOS selects the notification command. Empty uses runtime.GOOS.
	GOOS string

	// LookPath and Run are replaced in tests.
	LookPath func(file string) (string, error)
	Run      CommandRunner
}

// Desktop shows notifications through the host notification daemon:
// notify-send on Linux and osascript on macOS.
type Desktop struct {
	kv          kv.Store
	prompter    Prompter
	interactive bool
	goos        string
	lookPath    func(string) (string, error)
	run         CommandRunner
}

// NewDesktop returns a desktop notifier.
func NewDesktop(opts DesktopOptions) *Desktop {
	d := &Desktop{
		kv:          opts.KV,
		prompter:    opts.Prompter,
		interactive: true,
		goos:        opts.GOOS,
		lookPath:    opts.LookPath,
		run:         opts.Run,
	}
	if d.prompter == nil {
		d.prompter = StdioPrompter{}
		d.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	}
	if d.goos == "" {
		d.goos = runtime.GOOS
	}
	if d.lookPath == nil {
		d.lookPath = exec.LookPath
	}
	if d.run == nil {
		d.run = runCommand
	}
	return d
}

func (d *Desktop) command() string {
	switch d.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (d *Desktop) supported() bool {
	name := d.command()
	if name == "" {
		return false
	}
	_, err := d.lookPath(name)
	return err == nil
}

// Permission returns the stored decision, PermissionDefault if none was
// made, or PermissionUnsupported if no notification command is available.
func (d *Desktop) Permission() remind.Permission {
	if !d.supported() {
		return remind.PermissionUnsupported
	}
	value, ok, err := d.kv.Get(context.Background(), PermissionKey)
	if err != nil || !ok {
		return remind.PermissionDefault
	}
	permission := remind.Permission(value)
	if !permission.IsValid() || permission == remind.PermissionUnsupported {
		return remind.PermissionDefault
	}
	return permission
}

// RequestPermission asks the user and stores the answer.
func (d *Desktop) RequestPermission(ctx context.Context) (remind.Permission, error) {
	if !d.supported() {
		return remind.PermissionUnsupported, nil
	}
	if !d.interactive {
		return d.Permission(), ErrNotInteractive
	}

	allowed, err := d.prompter.Confirm("Allow BeeSmart to show desktop notifications for reminders?")
	if err != nil {
		return d.Permission(), fmt.Errorf("prompt: %w", err)
	}
	permission := remind.PermissionDenied
	if allowed {
		permission = remind.PermissionGranted
	}
	if err := d.kv.Put(ctx, PermissionKey, string(permission)); err != nil {
		return permission, fmt.Errorf("save notification permission: %w", err)
	}
	return permission, nil
}

// Reset forgets the stored decision so the next RequestPermission asks
// again.
func (d *Desktop) Reset(ctx context.Context) error {
	if err := d.kv.Put(ctx, PermissionKey, string(remind.PermissionDefault)); err != nil {
		return fmt.Errorf("reset notification permission: %w", err)
	}
	return nil
}

// Notify shows n on the desktop.
func (d *Desktop) Notify(ctx context.Context, n remind.Notification) error {
	switch name := d.command(); name {
	case "notify-send":
		args := []string{"--app-name=" + AppName}
		if n.Icon != "" {
			args = append(args, "--icon="+n.Icon)
		}
		args = append(args, "--", n.Title, n.Body)
		return d.run(ctx, name, args...)
	case "osascript":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptString(n.Body), appleScriptString(n.Title))
		return d.run(ctx, name, "-e", script)
	default:
		return remind.ErrUnsupported
	}
}

func appleScriptString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
