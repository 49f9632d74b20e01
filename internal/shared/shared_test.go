package shared

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Errorf("expected unique IDs, got %s twice", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateID() = %q is not a UUID: %v", a, err)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "playster.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.Info("hello from test", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing entry, got %q", string(data))
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tt := []struct {
		name string
		in   string
		want string
	}{
		{name: "tilde prefix", in: "~/.playster/credentials.json", want: filepath.Join(home, ".playster/credentials.json")},
		{name: "bare tilde", in: "~", want: home},
		{name: "absolute", in: "/etc/playster", want: "/etc/playster"},
		{name: "relative", in: "./playster.db", want: "./playster.db"},
		{name: "tilde user form untouched", in: "~other/file", want: "~other/file"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExpandPath(tc.in); got != tc.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBrowserCommand(t *testing.T) {
	const url = "https://accounts.google.com/o/oauth2/auth"

	env := func(kv map[string]string) func(string) string {
		return func(k string) string { return kv[k] }
	}

	tt := []struct {
		name     string
		goos     string
		env      map[string]string
		wantName string
		wantArgs []string
		wantErr  error
	}{
		{name: "macOS", goos: "darwin", wantName: "open", wantArgs: []string{url}},
		{name: "windows", goos: "windows", wantName: "rundll32", wantArgs: []string{"url.dll,FileProtocolHandler", url}},
		{name: "linux with X11", goos: "linux", env: map[string]string{"DISPLAY": ":0"}, wantName: "xdg-open", wantArgs: []string{url}},
		{name: "linux with wayland", goos: "linux", env: map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, wantName: "xdg-open", wantArgs: []string{url}},
		{name: "linux headless", goos: "linux", wantErr: ErrNoDisplay},
		{name: "BROWSER wins", goos: "linux", env: map[string]string{"BROWSER": "firefox --new-tab"}, wantName: "firefox", wantArgs: []string{"--new-tab", url}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			name, args, err := browserCommand(tc.goos, env(tc.env), url)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("browserCommand() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("browserCommand() error = %v", err)
			}
			if name != tc.wantName || strings.Join(args, " ") != strings.Join(tc.wantArgs, " ") {
				t.Errorf("browserCommand() = %s %v, want %s %v", name, args, tc.wantName, tc.wantArgs)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		if _, _, err := browserCommand("plan9", env(nil), url); err == nil {
			t.Error("expected an error for plan9")
		}
	})
}

func TestSetDebug(t *testing.T) {
	logger := NewLogger(io.Discard)
	if logger.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level by default, got %v", logger.GetLevel())
	}

	SetDebug(logger, true)
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", logger.GetLevel())
	}

	SetDebug(logger, false)
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level after disabling debug, got %v", logger.GetLevel())
	}
}
