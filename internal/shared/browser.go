package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// BrowserOpener opens url in a browser. Sign-in flows take one so tests can replace it.
type BrowserOpener func(url string) error

// NoBrowser is a [BrowserOpener] that does nothing, for headless sessions.
func NoBrowser(string) error { return nil }

// OpenBrowser opens url with $BROWSER when set, otherwise with the platform's URL handler.
//
// A failure is not fatal to sign-in: callers still print the URL.
func OpenBrowser(url string) error {
	name, args, err := browserCommand(runtime.GOOS, os.Getenv, url)
	if err != nil {
		return err
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func browserCommand(goos string, getenv func(string) string, url string) (string, []string, error) {
	if fields := strings.Fields(getenv("BROWSER")); len(fields) > 0 {
		return fields[0], append(fields[1:], url), nil
	}

	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
			return "", nil, ErrNoDisplay
		}
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
