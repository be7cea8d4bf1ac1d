package cart

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// Opener opens a URL for the user
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// SystemOpener hands URLs to the platform's default browser
type SystemOpener struct{}

func (SystemOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// OpenAll opens every cart link, waiting pace between opens so the browser
// is not flooded. It stops early when ctx is cancelled and returns how many
// links were opened.
func (c *Cart) OpenAll(ctx context.Context, opener Opener, pace time.Duration) (int, error) {
	links := c.Links()
	opened := 0
	for i, link := range links {
		if i > 0 && pace > 0 {
			select {
			case <-ctx.Done():
				return opened, ctx.Err()
			case <-time.After(pace):
			}
		}
		if err := opener.Open(link); err != nil {
			log.Warn("failed to open cart link", "url", link, "err", err)
			continue
		}
		opened++
	}
	return opened, nil
}
