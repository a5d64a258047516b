package data

import (
	"fmt"
	"os"

	"github.com/l1jgo/scenert/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// Scene is a tree of entities to spawn under the root entity.
type Scene struct {
	Name     string      `yaml:"name"`
	Entities []SceneNode `yaml:"entities"`
}

// SceneNode is one entity of a scene: its class name, the properties passed
// to Configure, and the entities it owns.
type SceneNode struct {
	Class    string            `yaml:"class"`
	Props    map[string]string `yaml:"props"`
	Children []SceneNode       `yaml:"children"`
}

// Count returns the number of entities in the scene.
func (s *Scene) Count() int {
	return countNodes(s.Entities)
}

func countNodes(nodes []SceneNode) int {
	n := len(nodes)
	for i := range nodes {
		n += countNodes(nodes[i].Children)
	}
	return n
}

// --- YAML loading ---

type sceneFile struct {
	Scene Scene `yaml:"scene"`
}

// LoadScene loads a scene manifest from YAML.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	s, err := ParseScene(raw)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

// ParseScene decodes and validates a scene manifest.
func ParseScene(raw []byte) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := validateNodes(f.Scene.Entities, "entities"); err != nil {
		return nil, err
	}
	return &f.Scene, nil
}

func validateNodes(nodes []SceneNode, path string) error {
	for i := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		if nodes[i].Class == "" {
			return fmt.Errorf("%s: class is required", p)
		}
		if err := validateNodes(nodes[i].Children, p+".children"); err != nil {
			return err
		}
	}
	return nil
}

// Spawn creates every entity of the scene, attaching top-level entities to
// parent and children to the entity above them. On failure the entities
// spawned so far are destroyed.
func (s *Scene) Spawn(w *ecs.World, parent ecs.Owner) ([]ecs.Object, error) {
	var spawned []ecs.Object
	if err := spawnNodes(w, parent, s.Entities, &spawned); err != nil {
		for i := len(spawned) - 1; i >= 0; i-- {
			spawned[i].Destroy()
		}
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	return spawned, nil
}

func spawnNodes(w *ecs.World, parent ecs.Owner, nodes []SceneNode, out *[]ecs.Object) error {
	for i := range nodes {
		n := &nodes[i]
		obj, err := w.New(n.Class, n.Props)
		if err != nil {
			return err
		}
		*out = append(*out, obj)
		if err := obj.AttachTo(parent); err != nil {
			return err
		}
		if err := spawnNodes(w, obj, n.Children, out); err != nil {
			return err
		}
	}
	return nil
}
