package exec

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// BrowserCommand returns the opener binary and arguments for url on goos.
func BrowserCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	}
	return "", nil, fmt.Errorf("don't know how to open a browser on %s", goos)
}

// OpenBrowser launches the system browser on url and waits at most timeout
// for the opener to exit.
func OpenBrowser(url string, timeout time.Duration) error {
	name, args, err := BrowserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s is not installed or not in PATH: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timed out after %v", name, timeout)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, output)
	}
	return nil
}
