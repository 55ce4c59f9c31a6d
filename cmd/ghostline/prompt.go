package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ghostline-dev/ghostline/internal/console"
	"github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

// prompter reads answers from the terminal line by line.
type prompter struct {
	in   *bufio.Reader
	fd   int // terminal fd for hidden input, -1 if not a terminal
	cons *console.Console
}

func newPrompter(in io.Reader, cons *console.Console) *prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), fd: fd, cons: cons}
}

// line reads one trimmed line. EOF with no input becomes G401.
func (p *prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		if err == io.EOF {
			return "", errors.New("G401").Wrap(err)
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Ask prints label and returns the answer, or def when it is empty.
func (p *prompter) Ask(label, def string) (string, error) {
	if def != "" {
		p.cons.Print(fmt.Sprintf("%s [%s]: ", label, def))
	} else {
		p.cons.Print(label + ": ")
	}
	s, err := p.line()
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// AskRequired repeats the question until the answer is non-empty.
func (p *prompter) AskRequired(label string) (string, error) {
	for {
		s, err := p.Ask(label, "")
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
}

// AskSecret reads a line without echo when attached to a terminal.
func (p *prompter) AskSecret(label string) (string, error) {
	p.cons.Print(label + ": ")
	if p.fd < 0 {
		return p.line()
	}
	b, err := term.ReadPassword(p.fd)
	p.cons.Print("\n")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// AskPresence walks through status, activity type, name and stream URL.
// Skipping the activity type yields a presence without activity.
func (p *prompter) AskPresence() (protocol.PresenceConfig, error) {
	p.cons.Heading("Presence Setup")

	var cfg protocol.PresenceConfig
	for {
		s, err := p.Ask("Status (online, idle, dnd, invisible)", string(protocol.StatusOnline))
		if err != nil {
			return cfg, err
		}
		if st, err := protocol.ParseStatus(s); err == nil {
			cfg.Status = st
			break
		}
		p.cons.Warning("Unknown status %q", s)
	}

	p.cons.Print("\nSelect Activity Type (press ENTER to skip):\n")
	for t := protocol.ActivityWatching; t >= protocol.ActivityPlaying; t-- {
		p.cons.Print(fmt.Sprintf("  %d - %s\n", t, t))
	}
	p.cons.Print("\n")

	var activity protocol.ActivityType
	for {
		s, err := p.Ask("Enter choice [default: skip]", "")
		if err != nil {
			return cfg, err
		}
		if s == "" {
			return cfg, nil
		}
		if t, err := protocol.ParseActivityType(s); err == nil {
			activity = t
			break
		}
		p.cons.Warning("Unknown activity type %q", s)
	}
	cfg.ActivityType = protocol.Activity(activity)

	p.cons.Print("\n")
	name, err := p.AskRequired("Activity Name (required)")
	if err != nil {
		return cfg, err
	}
	cfg.ActivityName = name

	if activity == protocol.ActivityStreaming {
		p.cons.Print("\n")
		url, err := p.Ask("Stream URL", protocol.DefaultStreamURL)
		if err != nil {
			return cfg, err
		}
		cfg.StreamURL = url
	}
	p.cons.Print("\n")
	return cfg, nil
}
