// Package notify sends fire-and-forget HTTP notifications for run
// outcomes. The primary use case is ntfy.sh, but any HTTP webhook works.
package notify

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// Notifier posts plain-text HTTP notifications for selected run outcomes.
type Notifier struct {
	url       string
	title     string
	onFail    bool
	onRecover bool
	client    *http.Client

	mu         sync.Mutex
	lastFailed bool
}

// New creates a Notifier. projectName is used as the X-Title header; if
// empty, "Watchman" is used instead.
func New(notifURL, projectName string, onFail, onRecover bool) *Notifier {
	title := "Watchman"
	if projectName != "" {
		title = projectName
	}
	return &Notifier{
		url:       notifURL,
		title:     title,
		onFail:    onFail,
		onRecover: onRecover,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Hook consumes controller events. It fires asynchronous POSTs for
// finished runs that match the configured notification flags.
func (n *Notifier) Hook(ev watch.Event) {
	if ev.Kind != watch.EventRunFinished || ev.Result.Interrupted {
		return
	}

	n.mu.Lock()
	wasFailed := n.lastFailed
	n.lastFailed = !ev.Result.Passed
	n.mu.Unlock()

	switch {
	case !ev.Result.Passed && n.onFail:
		go n.post(failMessage(ev.Result))
	case ev.Result.Passed && wasFailed && n.onRecover:
		go n.post(fmt.Sprintf("Tests green again: %d passed.", ev.Result.Tests))
	}
}

// Target returns the configured webhook URL.
func (n *Notifier) Target() string { return n.url }

// Send posts message synchronously. Used for caller-triggered
// notifications such as the notify plugin's test message; run-outcome
// notifications go through Hook instead.
func (n *Notifier) Send(message string) { n.post(message) }

func failMessage(res watch.RunResult) string {
	if res.Err != nil {
		return fmt.Sprintf("Test run failed: %v", res.Err)
	}
	return fmt.Sprintf("%d of %d tests failed.", res.Failed, res.Tests)
}

// post sends a plain-text POST to the configured URL. Errors are silently
// discarded so notification failures never interrupt watch mode.
func (n *Notifier) post(message string) {
	req, err := http.NewRequest(http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Title", n.title)
	resp, err := n.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
