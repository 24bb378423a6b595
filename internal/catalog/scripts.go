package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/cmdbar/internal/command"
	"github.com/dshills/cmdbar/internal/script"
)

// ScriptsSection is the first path segment of every script command.
const ScriptsSection = "Scripts"

// ScriptSource offers the Lua scripts below a directory.
//
// A script's path is ScriptsSection, its subdirectories and its file name
// without extension. Leading comments may override the title and set a
// shortcut:
//
//	-- title: Reformat JSON
//	-- shortcut: ⌃⌥J
type ScriptSource struct {
	Dir     string
	Runtime *script.Runtime
}

// Name returns the source name.
func (s *ScriptSource) Name() string {
	return "scripts"
}

// Load walks the directory in lexical order. A missing directory yields
// no commands.
func (s *ScriptSource) Load(ctx context.Context) ([]*command.Command, error) {
	if _, err := os.Stat(s.Dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading scripts %s: %w", s.Dir, err)
	}

	rt := s.Runtime
	if rt == nil {
		rt = script.New()
	}

	var cmds []*command.Command
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".lua" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(s.Dir, path)
		if err != nil {
			return err
		}
		segments := append([]string{ScriptsSection}, strings.Split(filepath.ToSlash(rel), "/")...)
		segments[len(segments)-1] = strings.TrimSuffix(d.Name(), ".lua")

		header, err := readScriptHeader(path)
		if err != nil {
			return err
		}
		if header.title != "" {
			segments[len(segments)-1] = header.title
		}

		action := &script.Action{Runtime: rt, Path: path}
		cmds = append(cmds, command.New(command.KindScript, segments, action).WithShortcut(header.shortcut))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking scripts %s: %w", s.Dir, err)
	}
	return cmds, nil
}

type scriptHeader struct {
	title    string
	shortcut string
}

// readScriptHeader reads "-- key: value" lines at the top of a script.
func readScriptHeader(path string) (scriptHeader, error) {
	var h scriptHeader

	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "--")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			h.title = value
		case "shortcut":
			h.shortcut = value
		}
	}
	return h, sc.Err()
}
