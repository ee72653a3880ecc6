package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"oss.nandlabs.io/regular/managers"
)

// Registry is a named collection of Notifiers resolved once at config
// load and held for the session's lifetime.
type Registry struct {
	items managers.ItemManager[Notifier]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: managers.NewItemManager[Notifier]()}
}

// Register adds a notifier under name, replacing any existing one with
// the same name.
func (r *Registry) Register(name string, n Notifier) {
	r.items.Register(name, n)
}

// All returns every registered notifier, in no particular order.
func (r *Registry) All() []Notifier {
	return r.items.Items()
}

// ConsoleNotifier writes title/body to a writer (typically os.Stdout),
// for a session run interactively.
type ConsoleNotifier struct {
	Out io.Writer
}

// Notify implements Notifier.
func (c ConsoleNotifier) Notify(title, body string) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out, "%s\n%s\n", title, body)
	return err
}

// CommandNotifier delivers a message by invoking an external program
// with the title and body as arguments, for wiring into a system mail
// or push-notification command.
type CommandNotifier struct {
	Path string
	Args []string
}

// Notify implements Notifier.
func (c CommandNotifier) Notify(title, body string) error {
	args := append(append([]string{}, c.Args...), title, body)
	cmd := exec.Command(c.Path, args...)
	return cmd.Run()
}
