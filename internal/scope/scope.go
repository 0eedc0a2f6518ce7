// Package scope implements the lexical scope chain used while lowering a
// program: name registration with duplicate detection, resolution through
// enclosing scopes, and collision-free synthetic names.
//
// Scopes come in two kinds. An owning scope (the root, each function body,
// each lambda) holds a namespace: the set of identifiers that end up in one
// flat IR mapping, plus the counter for synthetic names. A transparent scope
// (constants and let continuations) shares the namespace of its nearest
// owning ancestor, so whatever it declares is renamed into that namespace,
// while still limiting visibility of the source name to itself.
package scope

import (
	"fmt"
	"strings"

	"github.com/funvibe/asc/internal/config"
)

type Kind int

const (
	Owning Kind = iota
	Transparent
)

func (k Kind) String() string {
	switch k {
	case Owning:
		return "owning"
	case Transparent:
		return "transparent"
	default:
		return "unknown"
	}
}

// namespace is the set of identifiers emitted into one IR mapping.
type namespace struct {
	names   map[string]struct{}
	counter int
}

func newNamespace() *namespace {
	return &namespace{names: make(map[string]struct{})}
}

func (ns *namespace) has(name string) bool {
	_, ok := ns.names[name]
	return ok
}

func (ns *namespace) add(name string) {
	ns.names[name] = struct{}{}
}

// fresh registers and returns the first free _<counter><hint>. A candidate
// is taken when the namespace holds it or when visible reports it as an
// identifier an enclosing table already defines. The counter only advances
// past taken candidates.
func (ns *namespace) fresh(hint string, visible func(string) bool) string {
	for {
		candidate := fmt.Sprintf("%s%d%s", config.TempPrefix, ns.counter, hint)
		if !ns.has(candidate) && !visible(candidate) {
			ns.add(candidate)
			return candidate
		}
		ns.counter++
	}
}

// Scope is one node of the chain. Children never outlive the lowering call
// that created them; nothing but the child points at its parent.
type Scope struct {
	parent *Scope
	kind   Kind
	ns     *namespace
	// bindings maps source names declared here to the identifiers emitted for them.
	bindings map[string]string
	// ids is the set of values of bindings.
	ids map[string]struct{}
}

func (s *Scope) bind(name, id string) {
	s.bindings[name] = id
	s.ids[id] = struct{}{}
}

// binds reports whether some scope from s outwards emitted id for a source
// name. A body that refers to an outer binding mentions its identifier, so
// a nested table must not define the same identifier.
func (s *Scope) binds(id string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.ids[id]; ok {
			return true
		}
	}
	return false
}

// NewGlobal returns a root scope with names pre-registered as builtins.
func NewGlobal(names ...string) *Scope {
	s := &Scope{kind: Owning, ns: newNamespace(), bindings: make(map[string]string, len(names)), ids: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.ns.add(name)
		s.bind(name, name)
	}
	return s
}

// NewChild opens an owning scope with its own namespace.
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, kind: Owning, ns: newNamespace(), bindings: make(map[string]string), ids: make(map[string]struct{})}
}

// NewTransparentChild opens a scope that emits into s's namespace.
func (s *Scope) NewTransparentChild() *Scope {
	return &Scope{parent: s, kind: Transparent, ns: s.ns, bindings: make(map[string]string), ids: make(map[string]struct{})}
}

func (s *Scope) Kind() Kind     { return s.kind }
func (s *Scope) Parent() *Scope { return s.parent }

// Register declares name in s and returns the identifier to emit for it.
// Owning scopes keep the source name; transparent scopes allocate a fresh
// name in the shared namespace so equal names in sibling or nested lets
// stay distinct in the output.
func (s *Scope) Register(name string) (string, error) {
	switch s.kind {
	case Owning:
		if s.ns.has(name) {
			return "", &DuplicateNameError{Name: name}
		}
		s.ns.add(name)
		s.bind(name, name)
		return name, nil
	case Transparent:
		if _, ok := s.bindings[name]; ok {
			return "", &DuplicateNameError{Name: name}
		}
		id := s.ns.fresh(name, s.binds)
		s.bind(name, id)
		return id, nil
	}
	panic(fmt.Sprintf("scope: unknown kind %d", s.kind))
}

// Resolve returns the identifier bound to name in the innermost scope that
// declares it. Names with the global prefix resolve to themselves.
func (s *Scope) Resolve(name string) (string, error) {
	if strings.HasPrefix(name, config.GlobalPrefix) {
		return name, nil
	}
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.bindings[name]; ok {
			return id, nil
		}
	}
	return "", &UnresolvedNameError{Name: name}
}

// Fresh allocates a synthetic identifier in the namespace s emits into,
// skipping identifiers that outer bindings visible from s already use.
func (s *Scope) Fresh(hint string) string {
	return s.ns.fresh(hint, s.binds)
}
