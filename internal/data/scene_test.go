package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/scenert/internal/core/ecs"
	"go.uber.org/zap/zaptest"
)

const demoScene = `
scene:
  name: demo
  entities:
    - class: Crate
      props:
        label: north
      children:
        - class: Crate
          props:
            label: lid
    - class: Crate
      props:
        label: south
`

type stage struct{ ecs.Entity }

type crate struct {
	ecs.Entity
	label     string
	destroyed bool
}

func (c *crate) Configure(_ *ecs.World, props map[string]string) error {
	if props["label"] == "" {
		return errors.New("label is required")
	}
	c.label = props["label"]
	return nil
}

func (c *crate) OnDestroy() { c.destroyed = true }

func newSceneWorld(t *testing.T) (*ecs.World, *stage) {
	t.Helper()
	w := ecs.NewWorld(zaptest.NewLogger(t))
	if err := ecs.RegisterClass[*stage](w, ecs.ClassOptions{Root: true}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.RegisterClass[*crate](w, ecs.ClassOptions{Name: "Crate"}); err != nil {
		t.Fatal(err)
	}
	root := &stage{}
	if err := w.Spawn(root); err != nil {
		t.Fatal(err)
	}
	return w, root
}

func TestLoadSceneSpawnsTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(demoScene), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	if s.Name != "demo" || s.Count() != 3 {
		t.Fatalf("scene %q with %d entities", s.Name, s.Count())
	}

	w, root := newSceneWorld(t)
	objs, err := s.Spawn(w, root)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if len(objs) != 3 {
		t.Fatalf("spawned %d entities", len(objs))
	}
	north, lid, south := objs[0].(*crate), objs[1].(*crate), objs[2].(*crate)
	if north.label != "north" || lid.label != "lid" || south.label != "south" {
		t.Fatalf("labels %q %q %q", north.label, lid.label, south.label)
	}
	if lid.Parent() != ecs.Owner(north) || north.Parent() != ecs.Owner(root) {
		t.Fatal("tree not attached as declared")
	}
	for i := 0; i < 2; i++ {
		if err := w.Drain(); err != nil {
			t.Fatalf("drain: %v", err)
		}
	}

	north.Destroy()
	if !lid.destroyed || south.destroyed {
		t.Fatal("destroying a scene node did not cascade to exactly its children")
	}
}

func TestSceneSpawnFailureRollsBack(t *testing.T) {
	s, err := ParseScene([]byte(`
scene:
  name: broken
  entities:
    - class: Crate
      props: {label: ok}
    - class: Crate
      children:
        - class: Crate
          props: {label: never}
`))
	if err != nil {
		t.Fatal(err)
	}
	w, root := newSceneWorld(t)
	if _, err := s.Spawn(w, root); err == nil || !strings.Contains(err.Error(), "label is required") {
		t.Fatalf("Spawn() = %v", err)
	}
	if n := len(ecs.SelectEntities[*crate](w)); n != 0 {
		t.Fatalf("%d crates left after failed spawn", n)
	}
	if root.Attached() != 0 {
		t.Fatal("root still owns rolled back entities")
	}
}

func TestParseSceneRejects(t *testing.T) {
	tests := []struct{ name, raw, want string }{
		{"yaml", "scene: [", "parse"},
		{"missing class", "scene:\n  entities:\n    - props: {a: b}\n", "entities[0]: class is required"},
		{"nested missing class", "scene:\n  entities:\n    - class: A\n      children:\n        - {}\n", "entities[0].children[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScene([]byte(tt.raw)); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("ParseScene() = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSceneUnknownClass(t *testing.T) {
	s := &Scene{Name: "x", Entities: []SceneNode{{Class: "Ghost"}}}
	w, root := newSceneWorld(t)
	var unreg ecs.UnregisteredClassError
	if _, err := s.Spawn(w, root); !errors.As(err, &unreg) {
		t.Fatalf("Spawn() = %v, want UnregisteredClassError", err)
	}
}
