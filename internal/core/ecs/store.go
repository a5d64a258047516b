package ecs

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type bucket map[uint64]Object

// Store indexes live entities by class name and per-class sequence number.
// Sequence numbers start at 1 and are never reused until Reset.
type Store struct {
	next    map[string]uint64
	classes map[string]bucket
	live    int
}

func NewStore() *Store {
	return &Store{
		next:    make(map[string]uint64, 16),
		classes: make(map[string]bucket, 16),
	}
}

func formatID(class string, seq uint64) string {
	return class + ":" + strconv.FormatUint(seq, 10)
}

// ParseID splits an entity id into class name and sequence number.
func ParseID(id string) (class string, seq uint64, err error) {
	i := strings.LastIndexByte(id, ':')
	if i <= 0 {
		return "", 0, fmt.Errorf("malformed entity id %q", id)
	}
	seq, err = strconv.ParseUint(id[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed entity id %q: %w", id, err)
	}
	return id[:i], seq, nil
}

func (s *Store) register(obj Object, class string) (string, uint64) {
	seq := s.next[class] + 1
	s.next[class] = seq
	b := s.classes[class]
	if b == nil {
		b = make(bucket)
		s.classes[class] = b
	}
	b[seq] = obj
	s.live++
	return formatID(class, seq), seq
}

func (s *Store) unregister(class string, seq uint64) {
	b := s.classes[class]
	if _, ok := b[seq]; !ok {
		return
	}
	delete(b, seq)
	s.live--
}

// EntityByID returns the live entity with the given id.
func (s *Store) EntityByID(id string) (Object, bool) {
	class, seq, err := ParseID(id)
	if err != nil {
		return nil, false
	}
	obj, ok := s.classes[class][seq]
	return obj, ok
}

// entities returns the live entities of class in creation order.
func (s *Store) entities(class string) []Object {
	b := s.classes[class]
	if len(b) == 0 {
		return nil
	}
	out := make([]Object, 0, len(b))
	for _, seq := range sortedKeys(b) {
		out = append(out, b[seq])
	}
	return out
}

func (s *Store) snapshot() []Object {
	out := make([]Object, 0, s.live)
	for _, class := range sortedKeys(s.classes) {
		out = append(out, s.entities(class)...)
	}
	return out
}

// Len returns the number of live entities.
func (s *Store) Len() int { return s.live }

// reset destroys every registered entity, then forgets all counters. The
// destroy pass runs over a snapshot because each destroy unregisters itself
// and may cascade into entities later in the list.
func (s *Store) reset() {
	var failures []error
	for _, obj := range s.snapshot() {
		failures = append(failures, guard(obj, obj.Destroy)...)
	}
	clear(s.next)
	clear(s.classes)
	s.live = 0
	if len(failures) > 0 {
		panic(&DisposalError{Failures: failures})
	}
}

// sortedKeys returns the keys of m in ascending order (nil if m is empty).
func sortedKeys[K interface{ ~string | ~uint64 }, V any](m map[K]V) []K {
	var keys []K
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
