package watch

import (
	"fmt"
	"io"
	"regexp"
)

// patternKind selects which filter a pattern prompt edits.
type patternKind int

const (
	pathPattern patternKind = iota
	namePattern
)

func (k patternKind) label() string {
	if k == namePattern {
		return "test name"
	}
	return "filename"
}

// patternPrompt is the built-in focus-holding prompt behind the
// path-pattern and name-pattern keys. It accumulates typed characters,
// validates the regexp on Enter, and triggers a run with the new
// filter. Esc cancels without changes; submitting an empty pattern
// clears the filter.
type patternPrompt struct {
	kind patternKind
	out  io.Writer

	buf []rune
	cfg RunConfig
	ctl EnterControl
}

// newPatternPrompt creates a prompt writing feedback to out.
func newPatternPrompt(kind patternKind, out io.Writer) *patternPrompt {
	return &patternPrompt{kind: kind, out: out}
}

func (p *patternPrompt) Keys() []string {
	if p.kind == namePattern {
		return []string{KeyNamePattern}
	}
	return []string{KeyPathPattern}
}

func (p *patternPrompt) Prompt() string {
	return fmt.Sprintf("filter by a %s regex pattern", p.kind.label())
}

// Enter takes focus and opens the prompt.
func (p *patternPrompt) Enter(cfg RunConfig, ctl EnterControl) {
	p.cfg = cfg
	p.ctl = ctl
	p.buf = p.buf[:0]

	fmt.Fprintf(p.out, "\nPattern Mode Usage\n")
	fmt.Fprintf(p.out, " %s Press Esc to exit pattern mode.\n", usageBullet)
	fmt.Fprintf(p.out, " %s Press Enter to filter by a %s regex pattern.\n\n", usageBullet, p.kind.label())
	p.redraw()
}

// OnKey handles keys while the prompt holds focus.
func (p *patternPrompt) OnKey(key string) {
	switch key {
	case "esc":
		p.ctl.End()
	case "enter":
		p.submit()
	case "backspace":
		if len(p.buf) > 0 {
			p.buf = p.buf[:len(p.buf)-1]
		}
		p.redraw()
	default:
		// Only printable single-rune keys extend the pattern; control
		// sequences ("up", "tab", …) are ignored.
		runes := []rune(key)
		if len(runes) == 1 {
			p.buf = append(p.buf, runes[0])
			p.redraw()
		}
	}
}

func (p *patternPrompt) submit() {
	pattern := string(p.buf)
	if pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			fmt.Fprintf(p.out, "\n Pattern is not a valid regexp: %v\n", err)
			p.buf = p.buf[:0]
			p.redraw()
			return
		}
	}

	next := p.cfg
	if p.kind == namePattern {
		next = next.WithTestNamePattern(pattern)
	} else {
		next = next.WithTestPathPattern(pattern)
	}
	fmt.Fprintln(p.out)
	p.ctl.UpdateAndRun(next)
	p.ctl.End()
}

// redraw rewrites the prompt line in place.
func (p *patternPrompt) redraw() {
	fmt.Fprintf(p.out, "\r pattern %s %s", usageBullet, string(p.buf))
}
