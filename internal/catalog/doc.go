// Package catalog builds the list of commands offered by the command bar.
//
// A Catalog combines Sources in a fixed order:
//
//   - MenuSource reads a YAML menu tree; submenus become breadcrumb
//     segments and leaves run external programs.
//   - OutlineSource turns the Markdown headings of a document into outline
//     entries that report their location.
//   - ScriptSource offers every Lua script below a directory.
//
// The Catalog caches the last build until it is invalidated, typically by a
// Watcher reacting to file system changes.
package catalog
