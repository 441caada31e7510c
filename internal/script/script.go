// Package script compiles small Lua expressions into data view filters and
// cell formatters.
//
// An expression sees the fields of the current item as globals, so a
// filter over sales records can be written as
//
//	amount > 100 and region == "east"
//
// Formatters additionally see value, row and cell. A source containing a
// return statement is used as a function body; anything else is wrapped
// in "return (...)".
//
// Scripts run in a sandbox: only the base, table, string and math
// libraries are opened and the loaders (dofile, loadfile, load,
// loadstring, require) are removed. Every run has a time limit.
package script

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
)

// DefaultTimeout bounds a single run.
const DefaultTimeout = 100 * time.Millisecond

var (
	// ErrClosed is returned when running on a closed engine.
	ErrClosed = errors.New("script engine closed")

	// ErrCompile wraps Lua syntax errors.
	ErrCompile = errors.New("script compile error")
)

var hasReturn = regexp.MustCompile(`\breturn\b`)

// Options configures an Engine.
type Options struct {
	Timeout time.Duration
	Logger  *logging.Logger
}

// DefaultOptions returns the default limits.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout}
}

// Engine owns one Lua state. It is safe for concurrent use; runs are
// serialized.
type Engine struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	log     *logging.Logger
	closed  bool

	// current and vars are the globals of the run in progress.
	current item.Item
	vars    map[string]any

	runs   int
	errors int
}

// New creates a sandboxed engine.
func New(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return &Engine{
		L:       L,
		timeout: opts.Timeout,
		log:     logging.OrDefault(opts.Logger).WithComponent("script"),
	}
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		e.L.Close()
	}
}

// Stats returns the number of runs and of failed runs.
func (e *Engine) Stats() (runs, failed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs, e.errors
}

// Program is a compiled expression.
type Program struct {
	e   *Engine
	fn  *lua.LFunction
	src string
}

// Source returns the expression the program was compiled from.
func (p *Program) Source() string {
	return p.src
}

// Compile parses src and binds it to an environment that resolves names
// through the current item, then the run's variables, then the Lua
// globals.
func (e *Engine) Compile(src string) (*Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	body := src
	if !hasReturn.MatchString(src) {
		body = "return (" + src + ")"
	}
	fn, err := e.L.LoadString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	env := e.L.NewTable()
	mt := e.L.NewTable()
	e.L.SetField(mt, "__index", e.L.NewFunction(e.lookup))
	e.L.SetMetatable(env, mt)
	e.L.SetFEnv(fn, env)
	return &Program{e: e, fn: fn, src: src}, nil
}

// lookup is the __index metamethod of program environments.
func (e *Engine) lookup(L *lua.LState) int {
	name, ok := L.Get(2).(lua.LString)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	key := string(name)
	if e.current != nil {
		if v := e.current.Get(key); v != nil {
			L.Push(toLua(L, v))
			return 1
		}
	}
	if v, ok := e.vars[key]; ok {
		L.Push(toLua(L, v))
		return 1
	}
	L.Push(L.GetGlobal(key))
	return 1
}

// Run evaluates the program against it with extra variables and returns
// the result as a Go value.
func (p *Program) Run(it item.Item, vars map[string]any) (any, error) {
	lv, err := p.run(it, vars)
	if err != nil {
		return nil, err
	}
	return fromLua(lv), nil
}

func (p *Program) run(it item.Item, vars map[string]any) (lua.LValue, error) {
	e := p.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return lua.LNil, ErrClosed
	}

	e.runs++
	e.current, e.vars = it, vars
	defer func() { e.current, e.vars = nil, nil }()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	if err := e.L.CallByParam(lua.P{Fn: p.fn, NRet: 1, Protect: true}); err != nil {
		e.errors++
		return lua.LNil, fmt.Errorf("script %q: %w", p.src, err)
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	return ret, nil
}

// Eval compiles and runs src once.
func (e *Engine) Eval(src string, it item.Item, vars map[string]any) (any, error) {
	p, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	return p.Run(it, vars)
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case lua.LValue:
		return v
	case []any:
		t := L.CreateTable(len(v), 0)
		for _, x := range v {
			t.Append(toLua(L, x))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(v))
		for k, x := range v {
			t.RawSetString(k, toLua(L, x))
		}
		return t
	}
	if f, ok := item.ToFloat(v); ok {
		return lua.LNumber(f)
	}
	return lua.LString(fmt.Sprint(v))
}

func fromLua(lv lua.LValue) any {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case *lua.LTable:
		if n := v.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(v.RawGetInt(i)))
			}
			return out
		}
		out := map[string]any{}
		v.ForEach(func(k, x lua.LValue) { out[k.String()] = fromLua(x) })
		return out
	}
	return lv.String()
}
