package plugins

import (
	"fmt"
	"io"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/notify"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// notifyPlugin holds focus to show the notification target and send a
// test notification on demand.
type notifyPlugin struct {
	out    io.Writer
	sender *notify.Notifier
	ctl    watch.EnterControl
}

func newNotify(r *Resolver, _ string) (watch.Plugin, error) {
	return &notifyPlugin{out: r.Out, sender: r.Notifier}, nil
}

func (p *notifyPlugin) Keys() []string { return []string{"n"} }

func (p *notifyPlugin) Prompt() string { return "show the notification target" }

// Enter prints the target and takes focus. Without a configured URL
// there is nothing to show, so focus is released immediately.
func (p *notifyPlugin) Enter(_ watch.RunConfig, ctl watch.EnterControl) {
	if p.sender == nil {
		fmt.Fprintf(p.out, "\nNotifications are not configured. Set notifications.url in watchman.toml.\n")
		ctl.End()
		return
	}

	p.ctl = ctl
	fmt.Fprintf(p.out, "\nNotification Target\n")
	fmt.Fprintf(p.out, " › %s\n\n", p.sender.Target())
	fmt.Fprintf(p.out, " › Press t to send a test notification.\n")
	fmt.Fprintf(p.out, " › Press Esc to exit.\n")
}

func (p *notifyPlugin) OnKey(key string) {
	switch key {
	case "t":
		go p.sender.Send("Test notification from watchman.")
		fmt.Fprintf(p.out, " Test notification sent to %s.\n", p.sender.Target())
	case "esc", "enter":
		p.ctl.End()
	}
}
