package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// adiumScript sends item 2 of argv to the Adium chat named item 1 of argv.
const adiumScript = `on run argv
	tell application "Adium"
		send (first chat whose name is (item 1 of argv)) message (item 2 of argv)
	end tell
end run`

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// AdiumNotifier posts messages to an Adium chat through osascript.
type AdiumNotifier struct {
	destination string
	run         commandRunner
}

func NewAdiumNotifier(destination string) *AdiumNotifier {
	return &AdiumNotifier{
		destination: strings.TrimSpace(destination),
		run:         runCommand,
	}
}

func (n *AdiumNotifier) Send(ctx context.Context, message string) error {
	out, err := n.run(ctx, "osascript", "-e", adiumScript, n.destination, message)
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return fmt.Errorf("%w: send to adium chat %q: %w: %s", ErrDestinationUnavailable, n.destination, err, detail)
		}
		return fmt.Errorf("%w: send to adium chat %q: %w", ErrDestinationUnavailable, n.destination, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
