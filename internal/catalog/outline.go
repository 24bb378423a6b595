package catalog

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/cmdbar/internal/command"
)

// OutlineSource offers the Markdown headings of a document.
// Each heading's path is its enclosing headings followed by itself.
type OutlineSource struct {
	Path string

	// Out receives the "file:line" location of a chosen heading.
	// Defaults to os.Stdout.
	Out io.Writer
}

// Name returns the source name.
func (s *OutlineSource) Name() string {
	return "outline"
}

// Heading is an ATX heading found in a document.
type Heading struct {
	Level int
	Text  string
	Line  int
}

// Load parses the document. A missing document yields no commands.
func (s *OutlineSource) Load(ctx context.Context) ([]*command.Command, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading outline %s: %w", s.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	var cmds []*command.Command
	var stack []Heading
	for _, h := range ParseHeadings(data) {
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, h)

		path := make([]string, len(stack))
		for i, sh := range stack {
			path[i] = sh.Text
		}
		cmds = append(cmds, command.New(command.KindOutline, path, &locationAction{
			out:  out,
			path: s.Path,
			line: h.Line,
		}))
	}
	return cmds, nil
}

// ParseHeadings returns the ATX headings of a Markdown document, skipping
// fenced code blocks.
func ParseHeadings(data []byte) []Heading {
	var headings []Heading
	var fence string

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimLeft(text, " ")
		if len(text)-len(trimmed) > 3 {
			continue
		}

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}

		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level == 0 || level > 6 {
			continue
		}
		rest := trimmed[level:]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}

		title := strings.TrimSpace(rest)
		if closed := strings.TrimRight(title, "#"); closed == "" || strings.HasSuffix(closed, " ") {
			title = strings.TrimSpace(closed)
		}
		if title == "" {
			continue
		}
		headings = append(headings, Heading{Level: level, Text: title, Line: line})
	}
	return headings
}

// locationAction reports a document location.
type locationAction struct {
	out  io.Writer
	path string
	line int
}

func (a *locationAction) Perform(context.Context) error {
	_, err := fmt.Fprintf(a.out, "%s:%d\n", a.path, a.line)
	return err
}
