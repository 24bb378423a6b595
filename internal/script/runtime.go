// Package script runs user scripts offered by the command bar.
//
// Scripts are Lua files executed by gopher-lua in a restricted state: only
// the base, table, string and math libraries are opened, file loading
// functions are removed, and every run is bounded by a timeout. Scripts
// talk to the host through the global "cmdbar" table:
//
//	cmdbar.print(...)   -- write a line to the runtime's output
//	cmdbar.env(name)    -- read an environment variable
//	cmdbar.args         -- arguments passed to the script
//	cmdbar.script       -- path of the running script
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cmdbar/internal/logging"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Runtime executes scripts. Each run gets a fresh Lua state, so a Runtime
// may be shared between commands.
type Runtime struct {
	out     io.Writer
	timeout time.Duration
	lookup  func(string) (string, bool)
	logger  *logging.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput sets where scripts print.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// WithTimeout sets the per-run time budget.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithEnv sets how cmdbar.env resolves variables.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(r *Runtime) {
		r.lookup = lookup
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// New creates a runtime printing to stdout.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		out:     os.Stdout,
		timeout: DefaultTimeout,
		lookup:  os.LookupEnv,
		logger:  logging.Nop,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	r.logger = r.logger.WithComponent("script")
	return r
}

// Run executes the script at path with args.
func (r *Runtime) Run(ctx context.Context, path string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	L := newState()
	defer L.Close()
	L.SetContext(ctx)
	r.installHost(L, path, args)

	start := time.Now()
	err := r.exec(L, path)
	r.logger.Debug("ran %s in %s", path, time.Since(start))
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = ErrTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		err = ErrCancelled
	}
	return &Error{Path: path, Err: err}
}

func (r *Runtime) exec(L *lua.LState, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()

	fn, err := L.LoadFile(path)
	if err != nil {
		return err
	}
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// newState creates a Lua state with only safe libraries opened.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// installHost exposes the cmdbar table and routes print to the runtime output.
func (r *Runtime) installHost(L *lua.LState, path string, args []string) {
	printFn := L.NewFunction(r.luaPrint)
	L.SetGlobal("print", printFn)

	host := L.NewTable()
	L.SetField(host, "print", printFn)
	L.SetField(host, "env", L.NewFunction(r.luaEnv))
	L.SetField(host, "script", lua.LString(path))

	argTable := L.NewTable()
	for _, a := range args {
		argTable.Append(lua.LString(a))
	}
	L.SetField(host, "args", argTable)

	L.SetGlobal("cmdbar", host)
}

func (r *Runtime) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if _, err := fmt.Fprintln(r.out, strings.Join(parts, "\t")); err != nil {
		L.RaiseError("print: %v", err)
	}
	return 0
}

func (r *Runtime) luaEnv(L *lua.LState) int {
	name := L.CheckString(1)
	if v, ok := r.lookup(name); ok {
		L.Push(lua.LString(v))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

// Action runs a script as a command action.
type Action struct {
	Runtime *Runtime
	Path    string
	Args    []string
}

// Perform runs the script.
func (a *Action) Perform(ctx context.Context) error {
	return a.Runtime.Run(ctx, a.Path, a.Args...)
}
