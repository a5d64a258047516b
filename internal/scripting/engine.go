package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running entity behaviour scripts.
// Single-goroutine access only (frame loop).
//
// A script is a .lua file that returns a table of hooks:
//
//	local M = {}
//	function M:on_init() end
//	function M:on_update(elapsed, delta) end
//	function M:on_render(frame) end
//	function M:on_destroy() end
//	return M
//
// Every hook is optional.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	scripts map[string]*lua.LTable
	closed  bool
}

// NewEngine creates a Lua engine and loads every script in scriptsDir. A
// missing directory yields an engine with no scripts.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, scripts: make(map[string]*lua.LTable)}
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), ".lua")
		if err := e.load(name, path); err != nil {
			return err
		}
		e.log.Debug("loaded lua script", zap.String("file", path), zap.String("script", name))
	}
	return nil
}

func (e *Engine) load(name, path string) error {
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	e.vm.Push(fn)
	if err := e.vm.PCall(0, 1, nil); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return fmt.Errorf("script %s returned %s, want a table of hooks", path, ret.Type())
	}
	e.scripts[name] = tbl
	return nil
}

// Scripts returns the loaded script names, sorted.
func (e *Engine) Scripts() []string {
	var names []string
	for name := range e.scripts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Instance creates the per-entity "self" table of a script. Fields missing
// on self fall back to the script table, so hooks are reachable as methods.
func (e *Engine) Instance(script, id, class string, props map[string]string) (*lua.LTable, error) {
	hooks, ok := e.scripts[script]
	if !ok {
		return nil, fmt.Errorf("unknown script %q", script)
	}
	self := e.vm.NewTable()
	self.RawSetString("id", lua.LString(id))
	self.RawSetString("class", lua.LString(class))
	p := e.vm.NewTable()
	for k, v := range props {
		p.RawSetString(k, lua.LString(v))
	}
	self.RawSetString("props", p)

	mt := e.vm.NewTable()
	mt.RawSetString("__index", hooks)
	e.vm.SetMetatable(self, mt)
	return self, nil
}

// Bind exposes fn to the script as the method self:<name>().
func (e *Engine) Bind(self *lua.LTable, name string, fn func()) {
	self.RawSetString(name, e.vm.NewFunction(func(*lua.LState) int {
		fn()
		return 0
	}))
}

// Call runs self:<hook>(args...) if the script defines it.
func (e *Engine) Call(self *lua.LTable, hook string, args ...lua.LValue) error {
	fn := e.vm.GetField(self, hook)
	if fn == lua.LNil {
		return nil
	}
	return e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, append([]lua.LValue{self}, args...)...)
}

// Global reads a global variable of the VM.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info(L.CheckString(1), zap.String("source", "lua"))
	return 0
}

// Close shuts down the Lua VM. Calling it again is a no-op.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.vm.Close()
}

func (e *Engine) Closed() bool { return e.closed }
