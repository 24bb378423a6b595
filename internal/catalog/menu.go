package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/cmdbar/internal/command"
)

// MenuFile is the top level of a YAML menu definition.
type MenuFile struct {
	Menu []MenuItem `yaml:"menu"`
}

// MenuItem is a submenu, a leaf command or a separator.
//
//	menu:
//	  - title: Build
//	    items:
//	      - title: Test
//	        shortcut: "⌃T"
//	        run: go test ./...
//	      - "-"
//	      - title: Lint
//	        run: [golangci-lint, run]
type MenuItem struct {
	Title    string            `yaml:"title"`
	Shortcut string            `yaml:"shortcut"`
	Run      Argv              `yaml:"run"`
	Dir      string            `yaml:"dir"`
	Env      map[string]string `yaml:"env"`
	Disabled bool              `yaml:"disabled"`
	Items    []MenuItem        `yaml:"items"`

	// Separator is set for "-" entries.
	Separator bool `yaml:"-"`

	line int
}

// UnmarshalYAML accepts either a mapping or a separator scalar.
func (m *MenuItem) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value != "" && strings.Trim(value.Value, "-") == "" {
			*m = MenuItem{Separator: true, line: value.Line}
			return nil
		}
		return fmt.Errorf("line %d: menu item must be a mapping or \"-\", got %q", value.Line, value.Value)
	}

	type plain MenuItem
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = MenuItem(p)
	m.line = value.Line
	return nil
}

// Argv is a program and its arguments. In YAML it is either a list or a
// single string split on whitespace.
type Argv []string

// UnmarshalYAML accepts a string or a sequence of strings.
func (a *Argv) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*a = strings.Fields(value.Value)
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}

// MenuSource reads commands from a YAML menu file.
type MenuSource struct {
	Path string
}

// Name returns the source name.
func (s *MenuSource) Name() string {
	return "menu"
}

// Load reads and parses the menu file. A missing file yields no commands.
func (s *MenuSource) Load(ctx context.Context) ([]*command.Command, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading menu %s: %w", s.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseMenu(s.Path, data)
}

// ParseMenu converts a YAML menu into commands in document order.
// path is used for error messages only.
func ParseMenu(path string, data []byte) ([]*command.Command, error) {
	var file MenuFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	var cmds []*command.Command
	var walk func(items []MenuItem, crumbs []string) error
	walk = func(items []MenuItem, crumbs []string) error {
		for _, item := range items {
			if item.Separator || item.Disabled {
				continue
			}
			if strings.TrimSpace(item.Title) == "" {
				return menuError(path, item.line, "menu item has no title")
			}

			segments := append(crumbs[:len(crumbs):len(crumbs)], item.Title)
			switch {
			case len(item.Items) > 0 && len(item.Run) > 0:
				return menuError(path, item.line, fmt.Sprintf("menu item %q has both items and run", item.Title))
			case len(item.Items) > 0:
				if err := walk(item.Items, segments); err != nil {
					return err
				}
			case len(item.Run) > 0:
				action := &ExecAction{Argv: item.Run, Dir: item.Dir, Env: item.Env}
				cmds = append(cmds, command.New(command.KindCommand, segments, action).WithShortcut(item.Shortcut))
			default:
				return menuError(path, item.line, fmt.Sprintf("menu item %q has nothing to run", item.Title))
			}
		}
		return nil
	}

	if err := walk(file.Menu, nil); err != nil {
		return nil, err
	}
	return cmds, nil
}

func menuError(path string, line int, msg string) error {
	return &ParseError{Path: path, Line: line, Message: msg, Err: ErrInvalidMenu}
}
