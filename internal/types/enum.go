package types

import (
	"fmt"
	"sync"
)

// EnumRegistry resolves an (namespace, id) ENUM pair to its display TEXT and
// back. kushdb keeps this as a process-wide singleton (spec.md §5); per the
// DESIGN NOTES §9 guidance ("singleton enum registry with process-wide
// lifetime → explicit registry object passed into queries"), this package
// exposes the registry as an explicit value that ENUM columns hold and
// resolve through (table.NewEnumColumn). No process-wide instance exists,
// in this package or in cmd/adaptql: each registry is created with
// NewEnumRegistry by whoever builds the ENUM columns.
type EnumRegistry struct {
	mu         sync.RWMutex
	namespaces map[int32]*enumNamespace
	nextNS     int32
}

type enumNamespace struct {
	name     string
	byID     map[int32]string
	byString map[string]int32
	nextID   int32
}

// NewEnumRegistry returns an empty registry.
func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{namespaces: make(map[int32]*enumNamespace)}
}

// DeclareNamespace registers a new enum namespace (one per ENUM column
// definition) and returns its namespace id.
func (r *EnumRegistry) DeclareNamespace(name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns := r.nextNS
	r.nextNS++
	r.namespaces[ns] = &enumNamespace{
		name:     name,
		byID:     make(map[int32]string),
		byString: make(map[string]int32),
	}
	return ns
}

// Intern returns the id for s within namespace ns, allocating a new id the
// first time s is seen in that namespace.
func (r *EnumRegistry) Intern(ns int32, s string) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.namespaces[ns]
	if !ok {
		return 0, fmt.Errorf("enum namespace %d is not declared", ns)
	}
	if id, ok := n.byString[s]; ok {
		return id, nil
	}
	id := n.nextID
	n.nextID++
	n.byID[id] = s
	n.byString[s] = id
	return id, nil
}

// Resolve returns the display string for (ns, id).
func (r *EnumRegistry) Resolve(ns, id int32) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.namespaces[ns]
	if !ok {
		return "", fmt.Errorf("enum namespace %d is not declared", ns)
	}
	s, ok := n.byID[id]
	if !ok {
		return "", fmt.Errorf("enum namespace %d has no member with id %d", ns, id)
	}
	return s, nil
}

// ResolveValue fills v.Str from the registry when v.Kind == Enum.
func (r *EnumRegistry) ResolveValue(v Value) (Value, error) {
	if v.Kind != Enum || v.Null {
		return v, nil
	}
	s, err := r.Resolve(v.EnumNamespace, v.EnumID)
	if err != nil {
		return Value{}, err
	}
	v.Str = NewString(s)
	return v, nil
}
