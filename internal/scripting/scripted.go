package scripting

import (
	"fmt"
	"time"

	"github.com/l1jgo/scenert/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ClassName is the registered name of Scripted in scene manifests.
const ClassName = "Scripted"

// Scripted is an entity whose behaviour lives in a Lua script. The script is
// chosen by the "script" property; every property is visible to the script
// as self.props.
type Scripted struct {
	ecs.Entity
	engine *Engine
	script string
	self   *lua.LTable
}

// Register declares Scripted and ScriptView on w. The Engine service must be
// provided by the caller.
func Register(w *ecs.World) error {
	if err := ecs.RegisterClass[*Scripted](w, ecs.ClassOptions{Name: ClassName}); err != nil {
		return err
	}
	return ecs.RegisterView(w, NewScriptView)
}

func (s *Scripted) Configure(w *ecs.World, props map[string]string) error {
	if err := ecs.Inject(w, s, &s.engine); err != nil {
		return err
	}
	name := props["script"]
	if name == "" {
		return fmt.Errorf("%s: missing script property", s.ID())
	}
	self, err := s.engine.Instance(name, s.ID(), s.Class(), props)
	if err != nil {
		return fmt.Errorf("%s: %w", s.ID(), err)
	}
	s.engine.Bind(self, "destroy", s.Destroy)
	s.script = name
	s.self = self
	return nil
}

// Script returns the name of the script driving the entity.
func (s *Scripted) Script() string { return s.script }

// Self returns the script-side state table.
func (s *Scripted) Self() *lua.LTable { return s.self }

func (s *Scripted) Init() { s.call("on_init") }

func (s *Scripted) Update(elapsed, delta time.Duration) {
	s.call("on_update", lua.LNumber(elapsed.Seconds()), lua.LNumber(delta.Seconds()))
}

func (s *Scripted) OnDestroy() { s.call("on_destroy") }

func (s *Scripted) call(hook string, args ...lua.LValue) {
	if s.self == nil {
		return
	}
	if err := s.engine.Call(s.self, hook, args...); err != nil {
		s.engine.log.Error("lua hook failed",
			zap.String("id", s.ID()),
			zap.String("script", s.script),
			zap.String("hook", hook),
			zap.Error(err))
	}
}

// ScriptView forwards frames to the script's on_render hook.
type ScriptView struct {
	ecs.View
	owner  *Scripted
	engine *Engine
	frames int
}

func NewScriptView(owner *Scripted, engine *Engine) *ScriptView {
	return &ScriptView{owner: owner, engine: engine}
}

// Frames returns the number of frames rendered.
func (v *ScriptView) Frames() int { return v.frames }

func (v *ScriptView) Update(_, _ time.Duration) {
	if v.owner.self == nil {
		return
	}
	v.frames++
	if err := v.engine.Call(v.owner.self, "on_render", lua.LNumber(v.frames)); err != nil {
		v.engine.log.Error("lua hook failed",
			zap.String("id", v.owner.ID()),
			zap.String("hook", "on_render"),
			zap.Error(err))
	}
}
