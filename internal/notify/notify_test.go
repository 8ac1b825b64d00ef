package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/beemnet-bee/BeeSmartToDo/internal/kv"
	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

type stubPrompter struct {
	answer bool
	err    error
	asked  int
}

func (p *stubPrompter) Confirm(string) (bool, error) {
	p.asked++
	return p.answer, p.err
}

type recordedCommand struct {
	name string
	args []string
}

func newTestDesktop(t *testing.T, goos string, prompter Prompter) (*Desktop, *[]recordedCommand) {
	t.Helper()
	var commands []recordedCommand
	d := NewDesktop(DesktopOptions{
		KV:       kv.NewMemory(),
		Prompter: prompter,
		GOOS:     goos,
		LookPath: func(file string) (string, error) { return "/usr/bin/" + file, nil },
		Run: func(ctx context.Context, name string, args ...string) error {
			commands = append(commands, recordedCommand{name: name, args: args})
			return nil
		},
	})
	return d, &commands
}

func TestTerminal_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminal(&buf)
	if n.Permission() != remind.PermissionGranted {
		t.Fatalf("expected terminal to be granted")
	}
	err := n.Notify(context.Background(), remind.Notification{Title: remind.ReminderTitle, Body: "Call doctor"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, remind.ReminderTitle) || !strings.Contains(out, "Call doctor") {
		t.Fatalf("expected title and body in output, got %q", out)
	}
}

func TestDesktop_UnsupportedWithoutCommand(t *testing.T) {
	d := NewDesktop(DesktopOptions{
		KV:       kv.NewMemory(),
		Prompter: &stubPrompter{answer: true},
		GOOS:     "linux",
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	})
	if got := d.Permission(); got != remind.PermissionUnsupported {
		t.Fatalf("expected unsupported, got %q", got)
	}
	if _, err := remind.Enable(context.Background(), d); !errors.Is(err, remind.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	d = NewDesktop(DesktopOptions{KV: kv.NewMemory(), Prompter: &stubPrompter{}, GOOS: "plan9"})
	if got := d.Permission(); got != remind.PermissionUnsupported {
		t.Fatalf("expected unsupported on plan9, got %q", got)
	}
}

func TestDesktop_RequestPermissionPersists(t *testing.T) {
	prompter := &stubPrompter{answer: true}
	d, _ := newTestDesktop(t, "linux", prompter)

	if got := d.Permission(); got != remind.PermissionDefault {
		t.Fatalf("expected default before asking, got %q", got)
	}
	got, err := d.RequestPermission(context.Background())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got != remind.PermissionGranted || d.Permission() != remind.PermissionGranted {
		t.Fatalf("expected granted, got %q / %q", got, d.Permission())
	}

	value, ok, err := d.kv.Get(context.Background(), PermissionKey)
	if err != nil || !ok || value != string(remind.PermissionGranted) {
		t.Fatalf("expected stored permission, got %q %v %v", value, ok, err)
	}
}

func TestDesktop_DeniedIsBlocked(t *testing.T) {
	prompter := &stubPrompter{answer: false}
	d, _ := newTestDesktop(t, "linux", prompter)

	if _, err := d.RequestPermission(context.Background()); err != nil {
		t.Fatalf("request: %v", err)
	}
	if d.Permission() != remind.PermissionDenied {
		t.Fatalf("expected denied, got %q", d.Permission())
	}
	if _, err := remind.Enable(context.Background(), d); !errors.Is(err, remind.ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if prompter.asked != 1 {
		t.Fatalf("expected no second prompt once denied, asked %d times", prompter.asked)
	}

	if err := d.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if d.Permission() != remind.PermissionDefault {
		t.Fatalf("expected default after reset, got %q", d.Permission())
	}
	prompter.answer = true
	if got, err := remind.Enable(context.Background(), d); err != nil || got != remind.PermissionGranted {
		t.Fatalf("expected granted after reset, got %q %v", got, err)
	}
}

func TestDesktop_NotifyLinux(t *testing.T) {
	d, commands := newTestDesktop(t, "linux", &stubPrompter{})
	err := d.Notify(context.Background(), remind.Notification{Title: "T", Body: "B", Icon: "bell"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(*commands) != 1 {
		t.Fatalf("expected one command, got %d", len(*commands))
	}
	cmd := (*commands)[0]
	want := []string{"--app-name=" + AppName, "--icon=bell", "--", "T", "B"}
	if cmd.name != "notify-send" || strings.Join(cmd.args, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected command %s %q", cmd.name, cmd.args)
	}
}

func TestDesktop_NotifyLinuxDashText(t *testing.T) {
	d, commands := newTestDesktop(t, "linux", &stubPrompter{})
	err := d.Notify(context.Background(), remind.Notification{Title: remind.ReminderTitle, Body: "-u critical"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	args := (*commands)[0].args
	if len(args) < 3 || args[len(args)-3] != "--" || args[len(args)-1] != "-u critical" {
		t.Fatalf("expected text after an end-of-options marker, got %q", args)
	}
	for _, arg := range args[:len(args)-3] {
		if arg == "-u critical" || arg == remind.ReminderTitle {
			t.Fatalf("expected title and body only after --, got %q", args)
		}
	}
}

func TestDesktop_NotifyDarwinEscapes(t *testing.T) {
	d, commands := newTestDesktop(t, "darwin", &stubPrompter{})
	err := d.Notify(context.Background(), remind.Notification{Title: "T", Body: `say "hi"`})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	cmd := (*commands)[0]
	if cmd.name != "osascript" || len(cmd.args) != 2 || cmd.args[0] != "-e" {
		t.Fatalf("unexpected command %s %q", cmd.name, cmd.args)
	}
	if want := `display notification "say \"hi\"" with title "T"`; cmd.args[1] != want {
		t.Fatalf("expected script %q, got %q", want, cmd.args[1])
	}
}

func TestStdioPrompter(t *testing.T) {
	var out bytes.Buffer
	ok, err := StdioPrompter{In: strings.NewReader("Yes\n"), Out: &out}.Confirm("Allow?")
	if err != nil || !ok {
		t.Fatalf("expected yes, got %v %v", ok, err)
	}
	if out.String() != "Allow? [y/n]: " {
		t.Fatalf("unexpected prompt %q", out.String())
	}

	ok, err = StdioPrompter{In: strings.NewReader("nope\n"), Out: &out}.Confirm("Allow?")
	if err != nil || ok {
		t.Fatalf("expected no, got %v %v", ok, err)
	}
}

type stubNotifier struct {
	permission remind.Permission
	sent       []remind.Notification
}

func (s *stubNotifier) Permission() remind.Permission { return s.permission }

func (s *stubNotifier) RequestPermission(context.Context) (remind.Permission, error) {
	s.permission = remind.PermissionGranted
	return s.permission, nil
}

func (s *stubNotifier) Notify(_ context.Context, n remind.Notification) error {
	s.sent = append(s.sent, n)
	return nil
}

func TestMulti(t *testing.T) {
	granted := &stubNotifier{permission: remind.PermissionGranted}
	pending := &stubNotifier{permission: remind.PermissionDefault}
	m := Multi{pending, granted}

	if m.Permission() != remind.PermissionGranted {
		t.Fatalf("expected granted when any notifier is granted")
	}
	if err := m.Notify(context.Background(), remind.Notification{Body: "x"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(granted.sent) != 1 || len(pending.sent) != 0 {
		t.Fatalf("expected only granted notifier to receive, got %d/%d", len(granted.sent), len(pending.sent))
	}

	if _, err := m.RequestPermission(context.Background()); err != nil {
		t.Fatalf("request: %v", err)
	}
	if pending.permission != remind.PermissionGranted {
		t.Fatalf("expected pending notifier to be asked")
	}

	if (Multi{}).Permission() != remind.PermissionUnsupported {
		t.Fatalf("expected empty multi to be unsupported")
	}
}
