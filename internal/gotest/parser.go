package gotest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// ParseStream reads `go test -json` lines from r and sends decoded Events
// on the returned channel. The channel is closed when r reaches EOF or an
// error. Lines that are not JSON objects (the toolchain prints plain text
// when a package fails to load) are forwarded as output events with no
// package attribution.
func ParseStream(r io.Reader) <-chan Event {
	ch := make(chan Event, 64)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		// Allow up to 1MB lines for verbose test output.
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			if ev, ok := parseLine(line); ok {
				ch <- ev
			}
		}
	}()
	return ch
}

// parseLine decodes a single stream line into an Event.
func parseLine(line []byte) (Event, bool) {
	if !bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) {
		return Event{Action: ActionOutput, Output: string(line) + "\n"}, true
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{Action: ActionOutput, Output: string(line) + "\n"}, true
	}
	if ev.Action == "" {
		return Event{}, false
	}
	return ev, true
}
